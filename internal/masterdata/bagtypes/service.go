package bagtypes

import (
	"context"
	"fmt"

	"github.com/gudam-erp/gudam-erp/internal/authz"
	"github.com/gudam-erp/gudam-erp/internal/masterdata/shared"
)

// Bag types are global settings rows: no tenant columns, so the zero paths
// skip row scoping and the module grant is the whole decision.
var dimensionPaths = authz.DimensionPaths{}

type Service struct {
	repo   Repository
	scoper *authz.Scoper
}

func NewService(repo Repository, scoper *authz.Scoper) *Service {
	return &Service{repo: repo, scoper: scoper}
}

func (s *Service) List(ctx context.Context, user authz.Principal, filters shared.ListFilters) ([]BagType, int, error) {
	q, err := s.scoper.AuthorizedQuery(ctx, user, authz.ModuleSettings, "bag_type", authz.ActionView, s.repo.Base(), dimensionPaths)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, q, filters)
}

func (s *Service) Get(ctx context.Context, user authz.Principal, id int64) (*BagType, error) {
	if id <= 0 {
		return nil, shared.ErrInvalidID
	}
	if err := s.authorize(ctx, user, authz.ActionView); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, user authz.Principal, bt BagType) (*BagType, error) {
	if err := validate(bt); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, user, authz.ActionCreate); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, bt)
}

func (s *Service) Update(ctx context.Context, user authz.Principal, id int64, bt BagType) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if err := validate(bt); err != nil {
		return err
	}
	if err := s.authorize(ctx, user, authz.ActionEdit); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, bt)
}

func (s *Service) Delete(ctx context.Context, user authz.Principal, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if err := s.authorize(ctx, user, authz.ActionDelete); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) authorize(ctx context.Context, user authz.Principal, action authz.Action) error {
	return s.scoper.AuthorizeRow(ctx, user, authz.ModuleSettings, "bag_type", action, authz.RowScope{}, dimensionPaths)
}

func validate(bt BagType) error {
	if bt.Name == "" {
		return fmt.Errorf("%w: name", shared.ErrRequiredField)
	}
	if bt.Session <= 0 {
		return fmt.Errorf("%w: session", shared.ErrRequiredField)
	}
	return nil
}
