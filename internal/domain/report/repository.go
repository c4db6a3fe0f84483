package report

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the persistence boundary for the report archive.
type Repository interface {
	Create(ctx context.Context, report *Report) error
	GetByID(ctx context.Context, id uuid.UUID) (*Report, error)
	List(ctx context.Context, filter Filter) ([]Report, int, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
