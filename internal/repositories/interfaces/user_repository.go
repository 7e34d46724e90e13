package interfaces

import (
	"context"

	"roadside-rescue/internal/models"
)

type UserRepository interface {
	// Create assigns the user's ID. A taken email yields ErrDuplicate.
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*models.User, error)

	SetAvailability(ctx context.Context, id int64, available bool) error
	UpdateLocation(ctx context.Context, id int64, lat, lng float64) error
	CountAvailableMechanics(ctx context.Context) (int64, error)
}
