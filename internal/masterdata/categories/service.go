package categories

import (
	"context"
	"fmt"

	"github.com/gudam-erp/gudam-erp/internal/authz"
	"github.com/gudam-erp/gudam-erp/internal/masterdata/shared"
)

// dimensionPaths declares where categories carry their tenant columns.
var dimensionPaths = authz.DimensionPaths{
	Company:       "categories.company_id",
	BusinessType:  "categories.business_type_id",
	Factory:       "categories.factory_id",
	ScopeRequired: true,
}

type Service struct {
	repo   Repository
	scoper *authz.Scoper
}

func NewService(repo Repository, scoper *authz.Scoper) *Service {
	return &Service{repo: repo, scoper: scoper}
}

func (s *Service) List(ctx context.Context, user authz.Principal, filters shared.ListFilters) ([]Category, int, error) {
	q, err := s.scoper.AuthorizedQuery(ctx, user, authz.ModuleProduct, "category", authz.ActionView, s.repo.Base(), dimensionPaths)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, q, filters)
}

func (s *Service) Get(ctx context.Context, user authz.Principal, id int64) (*Category, error) {
	if id <= 0 {
		return nil, shared.ErrInvalidID
	}
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRow(ctx, user, authz.ActionView, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Create(ctx context.Context, user authz.Principal, c Category) (*Category, error) {
	if err := validate(c); err != nil {
		return nil, err
	}
	if err := s.authorizeRow(ctx, user, authz.ActionCreate, &c); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, c)
}

func (s *Service) Update(ctx context.Context, user authz.Principal, id int64, c Category) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if err := validate(c); err != nil {
		return err
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizeRow(ctx, user, authz.ActionEdit, existing); err != nil {
		return err
	}
	// The replacement values must stay inside the user's scope as well.
	if err := s.authorizeRow(ctx, user, authz.ActionEdit, &c); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, c)
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

func (s *Service) authorizeRow(ctx context.Context, user authz.Principal, action authz.Action, c *Category) error {
	row := authz.RowScope{CompanyID: c.CompanyID, BusinessTypeID: c.BusinessTypeID, FactoryID: c.FactoryID}
	return s.scoper.AuthorizeRow(ctx, user, authz.ModuleProduct, "category", action, row, dimensionPaths)
}

func validate(c Category) error {
	if c.Name == "" {
		return fmt.Errorf("%w: name", shared.ErrRequiredField)
	}
	return nil
}
