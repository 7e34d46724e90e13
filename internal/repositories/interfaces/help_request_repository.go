package interfaces

import (
	"context"

	"roadside-rescue/internal/models"
)

// Transition is a conditional status change. It applies only while the
// request is in one of From and, when MechanicID is set, assigned to that
// mechanic.
type Transition struct {
	ID         int64
	From       []models.RequestStatus
	To         models.RequestStatus
	MechanicID *int64
	Assign     *int64
}

type HelpRequestRepository interface {
	Create(ctx context.Context, request *models.HelpRequest) error
	GetByID(ctx context.Context, id int64) (*models.HelpRequest, error)
	GetByIDs(ctx context.Context, ids []int64) ([]models.HelpRequest, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]models.HelpRequest, error)
	ListByStatus(ctx context.Context, status models.RequestStatus) ([]models.HelpRequest, error)
	FindActiveByMechanic(ctx context.Context, mechanicID int64) (*models.HelpRequest, error)
	SetAddress(ctx context.Context, id int64, address string) error

	// Apply returns the updated request, or ErrStale if the condition failed.
	Apply(ctx context.Context, t Transition) (*models.HelpRequest, error)
	// Decline records a mechanic passing on a request that is still Pending.
	Decline(ctx context.Context, id, mechanicID int64) error
}
