package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roadside-rescue/internal/models"
	"roadside-rescue/internal/repositories/interfaces"
)

func TestUserRepositoryDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	require.NoError(t, repo.Create(ctx, &models.User{Email: "a@b.c", Role: models.UserRoleDriver}))
	err := repo.Create(ctx, &models.User{Email: "a@b.c"})
	assert.ErrorIs(t, err, interfaces.ErrDuplicate)
}

func TestUserRepositoryAvailability(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	m := &models.User{Email: "m@b.c", Role: models.UserRoleMechanic, IsAvailable: true}
	require.NoError(t, repo.Create(ctx, m))
	require.NoError(t, repo.Create(ctx, &models.User{Email: "d@b.c", Role: models.UserRoleDriver, IsAvailable: true}))

	n, err := repo.CountAvailableMechanics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, repo.SetAvailability(ctx, m.ID, false))
	require.NoError(t, repo.UpdateLocation(ctx, m.ID, 30.1, 78.2))

	got, err := repo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.False(t, got.IsAvailable)
	loc, ok := got.Location()
	require.True(t, ok)
	assert.Equal(t, 30.1, loc.Lat)

	assert.ErrorIs(t, repo.SetAvailability(ctx, 999, true), interfaces.ErrNotFound)
}

func TestHelpRequestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewHelpRequestRepository()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &models.HelpRequest{CustomerID: 1, Status: models.RequestStatusPending}))
	}
	require.NoError(t, repo.Create(ctx, &models.HelpRequest{CustomerID: 2, Status: models.RequestStatusPending}))

	list, err := repo.ListByCustomer(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, int64(3), list[0].ID)
	assert.Equal(t, int64(1), list[2].ID)
}

func TestHelpRequestApplyIsConditional(t *testing.T) {
	ctx := context.Background()
	repo := NewHelpRequestRepository()

	req := &models.HelpRequest{CustomerID: 1, Status: models.RequestStatusPending}
	require.NoError(t, repo.Create(ctx, req))

	mechanic := int64(7)
	accept := interfaces.Transition{
		ID:     req.ID,
		From:   []models.RequestStatus{models.RequestStatusPending},
		To:     models.RequestStatusAccepted,
		Assign: &mechanic,
	}

	got, err := repo.Apply(ctx, accept)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusAccepted, got.Status)
	assert.True(t, got.AssignedTo(7))

	_, err = repo.Apply(ctx, accept)
	assert.ErrorIs(t, err, interfaces.ErrStale)

	other := int64(8)
	_, err = repo.Apply(ctx, interfaces.Transition{
		ID:         req.ID,
		From:       []models.RequestStatus{models.RequestStatusAccepted},
		To:         models.RequestStatusEnRoute,
		MechanicID: &other,
	})
	assert.ErrorIs(t, err, interfaces.ErrStale)

	active, err := repo.FindActiveByMechanic(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, req.ID, active.ID)
}

func TestHelpRequestConcurrentAcceptHasOneWinner(t *testing.T) {
	ctx := context.Background()
	repo := NewHelpRequestRepository()

	req := &models.HelpRequest{CustomerID: 1, Status: models.RequestStatusPending}
	require.NoError(t, repo.Create(ctx, req))

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := int64(1); i <= 10; i++ {
		wg.Add(1)
		go func(m int64) {
			defer wg.Done()
			_, err := repo.Apply(ctx, interfaces.Transition{
				ID:     req.ID,
				From:   []models.RequestStatus{models.RequestStatusPending},
				To:     models.RequestStatusAccepted,
				Assign: &m,
			})
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestHelpRequestDecline(t *testing.T) {
	ctx := context.Background()
	repo := NewHelpRequestRepository()

	req := &models.HelpRequest{CustomerID: 1, Status: models.RequestStatusPending}
	require.NoError(t, repo.Create(ctx, req))

	require.NoError(t, repo.Decline(ctx, req.ID, 4))
	require.NoError(t, repo.Decline(ctx, req.ID, 4))

	got, err := repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{4}, got.DeclinedBy)
	assert.Equal(t, models.RequestStatusPending, got.Status)

	assert.ErrorIs(t, repo.Decline(ctx, 404, 4), interfaces.ErrStale)
}
