package businesstypes

import (
	"context"
	"fmt"

	"github.com/gudam-erp/gudam-erp/internal/authz"
	"github.com/gudam-erp/gudam-erp/internal/masterdata/shared"
)

// Visibility narrows on the owning company and, when the grant pins
// business types, on this row's own primary key.
var dimensionPaths = authz.DimensionPaths{
	Company:       "business_types.company_id",
	BusinessType:  "business_types.id",
	ScopeRequired: true,
}

type Service struct {
	repo   Repository
	scoper *authz.Scoper
}

func NewService(repo Repository, scoper *authz.Scoper) *Service {
	return &Service{repo: repo, scoper: scoper}
}

func (s *Service) List(ctx context.Context, user authz.Principal, filters shared.ListFilters) ([]BusinessType, int, error) {
	q, err := s.scoper.AuthorizedQuery(ctx, user, authz.ModuleCompany, "business_type", authz.ActionView, s.repo.Base(), dimensionPaths)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, q, filters)
}

func (s *Service) Get(ctx context.Context, user authz.Principal, id int64) (*BusinessType, error) {
	if id <= 0 {
		return nil, shared.ErrInvalidID
	}
	bt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRow(ctx, user, authz.ActionView, bt); err != nil {
		return nil, err
	}
	return bt, nil
}

func (s *Service) Create(ctx context.Context, user authz.Principal, bt BusinessType) (*BusinessType, error) {
	if err := validate(bt); err != nil {
		return nil, err
	}
	if err := s.authorizeRow(ctx, user, authz.ActionCreate, &bt); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, bt)
}

func (s *Service) Update(ctx context.Context, user authz.Principal, id int64, bt BusinessType) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if err := validate(bt); err != nil {
		return err
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizeRow(ctx, user, authz.ActionEdit, existing); err != nil {
		return err
	}
	if err := s.authorizeRow(ctx, user, authz.ActionEdit, &bt); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, bt)
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

func (s *Service) authorizeRow(ctx context.Context, user authz.Principal, action authz.Action, bt *BusinessType) error {
	row := authz.RowScope{CompanyID: bt.CompanyID}
	if bt.ID > 0 {
		row.BusinessTypeID = &bt.ID
	}
	return s.scoper.AuthorizeRow(ctx, user, authz.ModuleCompany, "business_type", action, row, dimensionPaths)
}

func validate(bt BusinessType) error {
	if bt.Name == "" {
		return fmt.Errorf("%w: name", shared.ErrRequiredField)
	}
	return nil
}
