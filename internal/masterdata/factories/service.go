package factories

import (
	"context"
	"fmt"

	"github.com/gudam-erp/gudam-erp/internal/authz"
	"github.com/gudam-erp/gudam-erp/internal/masterdata/shared"
)

// The factory dimension points at this row's own id, so factory-pair
// grants narrow the list to exactly the granted sites.
var dimensionPaths = authz.DimensionPaths{
	Company:       "factories.company_id",
	BusinessType:  "factories.business_type_id",
	Factory:       "factories.id",
	ScopeRequired: true,
}

type Service struct {
	repo   Repository
	scoper *authz.Scoper
}

func NewService(repo Repository, scoper *authz.Scoper) *Service {
	return &Service{repo: repo, scoper: scoper}
}

func (s *Service) List(ctx context.Context, user authz.Principal, filters shared.ListFilters) ([]Factory, int, error) {
	q, err := s.scoper.AuthorizedQuery(ctx, user, authz.ModuleCompany, "factory", authz.ActionView, s.repo.Base(), dimensionPaths)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, q, filters)
}

func (s *Service) Get(ctx context.Context, user authz.Principal, id int64) (*Factory, error) {
	if id <= 0 {
		return nil, shared.ErrInvalidID
	}
	f, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRow(ctx, user, authz.ActionView, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Service) Create(ctx context.Context, user authz.Principal, f Factory) (*Factory, error) {
	if err := validate(f); err != nil {
		return nil, err
	}
	if err := s.authorizeRow(ctx, user, authz.ActionCreate, &f); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, f)
}

func (s *Service) Update(ctx context.Context, user authz.Principal, id int64, f Factory) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if err := validate(f); err != nil {
		return err
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizeRow(ctx, user, authz.ActionEdit, existing); err != nil {
		return err
	}
	if err := s.authorizeRow(ctx, user, authz.ActionEdit, &f); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, f)
}

func (s *Service) Delete(ctx context.Context, user authz.Principal, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizeRow(ctx, user, authz.ActionDelete, existing); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) authorizeRow(ctx context.Context, user authz.Principal, action authz.Action, f *Factory) error {
	row := authz.RowScope{CompanyID: f.CompanyID, BusinessTypeID: f.BusinessTypeID}
	if f.ID > 0 {
		row.FactoryID = &f.ID
	}
	return s.scoper.AuthorizeRow(ctx, user, authz.ModuleCompany, "factory", action, row, dimensionPaths)
}

func validate(f Factory) error {
	if f.Name == "" {
		return fmt.Errorf("%w: name", shared.ErrRequiredField)
	}
	return nil
}
