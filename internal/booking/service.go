package booking

import (
	"context"
	"fmt"

	"github.com/gudam-erp/gudam-erp/internal/authz"
	"github.com/gudam-erp/gudam-erp/internal/masterdata/shared"
)

// Bookings are scoped one hop away: the tenant column lives on the joined
// parties table.
var dimensionPaths = authz.DimensionPaths{
	Company:       "parties.company_id",
	ScopeRequired: true,
}

type Service struct {
	repo   Repository
	scoper *authz.Scoper
}

func NewService(repo Repository, scoper *authz.Scoper) *Service {
	return &Service{repo: repo, scoper: scoper}
}

func (s *Service) List(ctx context.Context, user authz.Principal, filters shared.ListFilters) ([]Booking, int, error) {
	q, err := s.scoper.AuthorizedQuery(ctx, user, authz.ModuleBooking, "booking", authz.ActionView, s.repo.Base(), dimensionPaths)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, q, filters)
}

func (s *Service) Get(ctx context.Context, user authz.Principal, id int64) (*Booking, error) {
	if id <= 0 {
		return nil, shared.ErrInvalidID
	}
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRow(ctx, user, authz.ActionView, b.CompanyID); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) Create(ctx context.Context, user authz.Principal, b Booking) (*Booking, error) {
	if err := validate(b); err != nil {
		return nil, err
	}
	companyID, err := s.repo.PartyCompany(ctx, *b.PartyID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRow(ctx, user, authz.ActionCreate, companyID); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, b)
}

func (s *Service) Update(ctx context.Context, user authz.Principal, id int64, b Booking) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if err := validate(b); err != nil {
		return err
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizeRow(ctx, user, authz.ActionEdit, existing.CompanyID); err != nil {
		return err
	}
	// Re-pointing the booking at another party must stay in scope too.
	if b.PartyID != nil && (existing.PartyID == nil || *b.PartyID != *existing.PartyID) {
		companyID, err := s.repo.PartyCompany(ctx, *b.PartyID)
		if err != nil {
			return err
		}
		if err := s.authorizeRow(ctx, user, authz.ActionEdit, companyID); err != nil {
			return err
		}
	}
	return s.repo.Update(ctx, id, b)
}

func (s *Service) Delete(ctx context.Context, user authz.Principal, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizeRow(ctx, user, authz.ActionDelete, existing.CompanyID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) authorizeRow(ctx context.Context, user authz.Principal, action authz.Action, companyID *int64) error {
	row := authz.RowScope{CompanyID: companyID}
	return s.scoper.AuthorizeRow(ctx, user, authz.ModuleBooking, "booking", action, row, dimensionPaths)
}

func validate(b Booking) error {
	if b.PartyID == nil || *b.PartyID <= 0 {
		return fmt.Errorf("%w: party_id", shared.ErrRequiredField)
	}
	if b.BookingNo == "" {
		return fmt.Errorf("%w: booking_no", shared.ErrRequiredField)
	}
	if b.Quantity <= 0 {
		return fmt.Errorf("%w: quantity", shared.ErrRequiredField)
	}
	return nil
}
