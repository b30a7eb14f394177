package party

import (
	"context"
	"fmt"

	"github.com/gudam-erp/gudam-erp/internal/authz"
	"github.com/gudam-erp/gudam-erp/internal/masterdata/shared"
)

var (
	typePaths  = authz.DimensionPaths{Company: "party_types.company_id", ScopeRequired: true}
	partyPaths = authz.DimensionPaths{Company: "parties.company_id", ScopeRequired: true}
)

// TypeService handles party type CRUD under the party_type submodule.
type TypeService struct {
	repo   TypeRepository
	scoper *authz.Scoper
}

func NewTypeService(repo TypeRepository, scoper *authz.Scoper) *TypeService {
	return &TypeService{repo: repo, scoper: scoper}
}

func (s *TypeService) List(ctx context.Context, user authz.Principal, filters shared.ListFilters) ([]PartyType, int, error) {
	q, err := s.scoper.AuthorizedQuery(ctx, user, authz.ModulePartyType, "party_type", authz.ActionView, s.repo.Base(), typePaths)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, q, filters)
}

func (s *TypeService) Get(ctx context.Context, user authz.Principal, id int64) (*PartyType, error) {
	if id <= 0 {
		return nil, shared.ErrInvalidID
	}
	pt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeType(ctx, user, authz.ActionView, pt); err != nil {
		return nil, err
	}
	return pt, nil
}

func (s *TypeService) Create(ctx context.Context, user authz.Principal, pt PartyType) (*PartyType, error) {
	if pt.Name == "" {
		return nil, fmt.Errorf("%w: name", shared.ErrRequiredField)
	}
	if err := s.authorizeType(ctx, user, authz.ActionCreate, &pt); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, pt)
}

func (s *TypeService) Update(ctx context.Context, user authz.Principal, id int64, pt PartyType) error {
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
	if err := s.authorizeType(ctx, user, authz.ActionEdit, existing); err != nil {
		return err
	}
	if err := s.authorizeType(ctx, user, authz.ActionEdit, &pt); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, pt)
}

func (s *TypeService) Delete(ctx context.Context, user authz.Principal, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizeType(ctx, user, authz.ActionDelete, existing); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *TypeService) authorizeType(ctx context.Context, user authz.Principal, action authz.Action, pt *PartyType) error {
	row := authz.RowScope{CompanyID: pt.CompanyID}
	return s.scoper.AuthorizeRow(ctx, user, authz.ModulePartyType, "party_type", action, row, typePaths)
}

// PartyService handles party CRUD under the party submodule.
type PartyService struct {
	repo   PartyRepository
	scoper *authz.Scoper
}

func NewPartyService(repo PartyRepository, scoper *authz.Scoper) *PartyService {
	return &PartyService{repo: repo, scoper: scoper}
}

func (s *PartyService) List(ctx context.Context, user authz.Principal, filters shared.ListFilters) ([]Party, int, error) {
	q, err := s.scoper.AuthorizedQuery(ctx, user, authz.ModulePartyType, "party", authz.ActionView, s.repo.Base(), partyPaths)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, q, filters)
}

func (s *PartyService) Get(ctx context.Context, user authz.Principal, id int64) (*Party, error) {
	if id <= 0 {
		return nil, shared.ErrInvalidID
	}
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeParty(ctx, user, authz.ActionView, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PartyService) Create(ctx context.Context, user authz.Principal, p Party) (*Party, error) {
	if p.Name == "" {
		return nil, fmt.Errorf("%w: name", shared.ErrRequiredField)
	}
	if err := s.authorizeParty(ctx, user, authz.ActionCreate, &p); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, p)
}

func (s *PartyService) Update(ctx context.Context, user authz.Principal, id int64, p Party) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if p.Name == "" {
		return fmt.Errorf("%w: name", shared.ErrRequiredField)
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizeParty(ctx, user, authz.ActionEdit, existing); err != nil {
		return err
	}
	if err := s.authorizeParty(ctx, user, authz.ActionEdit, &p); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, p)
}

func (s *PartyService) Delete(ctx context.Context, user authz.Principal, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizeParty(ctx, user, authz.ActionDelete, existing); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *PartyService) authorizeParty(ctx context.Context, user authz.Principal, action authz.Action, p *Party) error {
	row := authz.RowScope{CompanyID: p.CompanyID}
	return s.scoper.AuthorizeRow(ctx, user, authz.ModulePartyType, "party", action, row, partyPaths)
}
