package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, r *Record) error
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*Record, int, error)
	ListAll(ctx context.Context, limit, offset int) ([]*Record, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountByRiskLevel(ctx context.Context) (map[string]int, error)
}
