package repository

import (
	"context"
	"errors"

	"github.com/Nzyazin/payouts/internal/core/models"
	"github.com/google/uuid"
)

var ErrPayoutNotFound = errors.New("payout not found")

type PayoutRepository interface {
	Create(ctx context.Context, payout *models.Payout) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Payout, error)
	List(ctx context.Context, limit, offset int) ([]models.Payout, error)
	Update(ctx context.Context, payout *models.Payout) error
	// UpdateStatus is the worker's conditional write: the transition is
	// applied only while the record has not been manually cancelled.
	// Returns false when the guard (or the record itself) is gone.
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.Status) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
