package accounts

import (
	"context"
	"fmt"

	"github.com/gudam-erp/gudam-erp/internal/authz"
	"github.com/gudam-erp/gudam-erp/internal/masterdata/shared"
)

var dimensionPaths = authz.DimensionPaths{
	Company:       "account_heads.company_id",
	ScopeRequired: true,
}

type Service struct {
	repo   Repository
	scoper *authz.Scoper
}

func NewService(repo Repository, scoper *authz.Scoper) *Service {
	return &Service{repo: repo, scoper: scoper}
}

func (s *Service) List(ctx context.Context, user authz.Principal, filters shared.ListFilters) ([]AccountHead, int, error) {
	q, err := s.scoper.AuthorizedQuery(ctx, user, authz.ModuleAccounts, "account_head", authz.ActionView, s.repo.Base(), dimensionPaths)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, q, filters)
}

func (s *Service) Get(ctx context.Context, user authz.Principal, id int64) (*AccountHead, error) {
	if id <= 0 {
		return nil, shared.ErrInvalidID
	}
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRow(ctx, user, authz.ActionView, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Create(ctx context.Context, user authz.Principal, a AccountHead) (*AccountHead, error) {
	if err := validate(a); err != nil {
		return nil, err
	}
	if err := s.authorizeRow(ctx, user, authz.ActionCreate, &a); err != nil {
		return nil, err
	}
	// A parent head must belong to the same company.
	if a.ParentID != nil {
		parent, err := s.repo.Get(ctx, *a.ParentID)
		if err != nil {
			return nil, err
		}
		if !sameCompany(parent.CompanyID, a.CompanyID) {
			return nil, shared.ErrValidation
		}
	}
	return s.repo.Create(ctx, a)
}

func (s *Service) Update(ctx context.Context, user authz.Principal, id int64, a AccountHead) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if err := validate(a); err != nil {
		return err
	}
	if a.ParentID != nil && *a.ParentID == id {
		return shared.ErrValidation
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizeRow(ctx, user, authz.ActionEdit, existing); err != nil {
		return err
	}
	if err := s.authorizeRow(ctx, user, authz.ActionEdit, &a); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, a)
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

func (s *Service) authorizeRow(ctx context.Context, user authz.Principal, action authz.Action, a *AccountHead) error {
	row := authz.RowScope{CompanyID: a.CompanyID}
	return s.scoper.AuthorizeRow(ctx, user, authz.ModuleAccounts, "account_head", action, row, dimensionPaths)
}

func sameCompany(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func validate(a AccountHead) error {
	if a.Name == "" {
		return fmt.Errorf("%w: name", shared.ErrRequiredField)
	}
	return nil
}
