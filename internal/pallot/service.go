package pallot

import (
	"context"
	"fmt"

	"github.com/gudam-erp/gudam-erp/internal/authz"
	"github.com/gudam-erp/gudam-erp/internal/masterdata/shared"
)

var dimensionPaths = authz.DimensionPaths{
	Company:       "pallot_types.company_id",
	ScopeRequired: true,
}

type Service struct {
	repo   Repository
	scoper *authz.Scoper
}

func NewService(repo Repository, scoper *authz.Scoper) *Service {
	return &Service{repo: repo, scoper: scoper}
}

func (s *Service) List(ctx context.Context, user authz.Principal, filters shared.ListFilters) ([]PallotType, int, error) {
	q, err := s.scoper.AuthorizedQuery(ctx, user, authz.ModulePallot, "pallot_type", authz.ActionView, s.repo.Base(), dimensionPaths)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, q, filters)
}

func (s *Service) Get(ctx context.Context, user authz.Principal, id int64) (*PallotType, error) {
	if id <= 0 {
		return nil, shared.ErrInvalidID
	}
	pt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRow(ctx, user, authz.ActionView, pt); err != nil {
		return nil, err
	}
	return pt, nil
}

func (s *Service) Create(ctx context.Context, user authz.Principal, pt PallotType) (*PallotType, error) {
	if pt.Name == "" {
		return nil, fmt.Errorf("%w: name", shared.ErrRequiredField)
	}
	if err := s.authorizeRow(ctx, user, authz.ActionCreate, &pt); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, pt)
}

func (s *Service) Update(ctx context.Context, user authz.Principal, id int64, pt PallotType) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if pt.Name == "" {
		return fmt.Errorf("%w: name", shared.ErrRequiredField)
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizeRow(ctx, user, authz.ActionEdit, existing); err != nil {
		return err
	}
	if err := s.authorizeRow(ctx, user, authz.ActionEdit, &pt); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, pt)
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

func (s *Service) authorizeRow(ctx context.Context, user authz.Principal, action authz.Action, pt *PallotType) error {
	row := authz.RowScope{CompanyID: pt.CompanyID}
	return s.scoper.AuthorizeRow(ctx, user, authz.ModulePallot, "pallot_type", action, row, dimensionPaths)
}
