package products

import (
	"context"
	"fmt"

	"github.com/gudam-erp/gudam-erp/internal/authz"
	"github.com/gudam-erp/gudam-erp/internal/masterdata/shared"
)

var dimensionPaths = authz.DimensionPaths{
	Company:       "products.company_id",
	BusinessType:  "products.business_type_id",
	Factory:       "products.factory_id",
	ScopeRequired: true,
}

type Service struct {
	repo   Repository
	scoper *authz.Scoper
}

func NewService(repo Repository, scoper *authz.Scoper) *Service {
	return &Service{repo: repo, scoper: scoper}
}

func (s *Service) List(ctx context.Context, user authz.Principal, filters shared.ListFilters) ([]Product, int, error) {
	q, err := s.scoper.AuthorizedQuery(ctx, user, authz.ModuleProduct, "product", authz.ActionView, s.repo.Base(), dimensionPaths)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, q, filters)
}

func (s *Service) Get(ctx context.Context, user authz.Principal, id int64) (*Product, error) {
	if id <= 0 {
		return nil, shared.ErrInvalidID
	}
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRow(ctx, user, authz.ActionView, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Create(ctx context.Context, user authz.Principal, p Product) (*Product, error) {
	if err := validate(p); err != nil {
		return nil, err
	}
	if err := s.authorizeRow(ctx, user, authz.ActionCreate, &p); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) Update(ctx context.Context, user authz.Principal, id int64, p Product) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if err := validate(p); err != nil {
		return err
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizeRow(ctx, user, authz.ActionEdit, existing); err != nil {
		return err
	}
	if err := s.authorizeRow(ctx, user, authz.ActionEdit, &p); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, p)
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

func (s *Service) authorizeRow(ctx context.Context, user authz.Principal, action authz.Action, p *Product) error {
	row := authz.RowScope{CompanyID: p.CompanyID, BusinessTypeID: p.BusinessTypeID, FactoryID: p.FactoryID}
	return s.scoper.AuthorizeRow(ctx, user, authz.ModuleProduct, "product", action, row, dimensionPaths)
}

func validate(p Product) error {
	if p.Name == "" {
		return fmt.Errorf("%w: name", shared.ErrRequiredField)
	}
	return nil
}
