package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrForbidden = errors.New("record belongs to another user")
)

type Service struct {
	records Repository
}

func NewService(records Repository) *Service {
	return &Service{records: records}
}

// Create persists a finished assessment. Callers are expected to have stamped
// the owner and outcome already.
func (s *Service) Create(ctx context.Context, rec *Record) error {
	return s.records.Create(ctx, rec)
}

// Get returns a record if the requester owns it or is an admin.
func (s *Service) Get(ctx context.Context, id, requesterID uuid.UUID, isAdmin bool) (*Record, error) {
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && rec.OwnerUserID != requesterID {
		return nil, ErrForbidden
	}
	return rec, nil
}

// ListMine returns the requester's own records, newest first.
func (s *Service) ListMine(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*Record, int, error) {
	return s.records.ListByOwner(ctx, ownerID, limit, offset)
}

// ListAll is for admin use.
func (s *Service) ListAll(ctx context.Context, limit, offset int) ([]*Record, int, error) {
	return s.records.ListAll(ctx, limit, offset)
}

// Delete removes a record. Only admin surfaces call this; records are
// otherwise immutable.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.records.Delete(ctx, id)
}

func (s *Service) CountByRiskLevel(ctx context.Context) (map[string]int, error) {
	return s.records.CountByRiskLevel(ctx)
}
