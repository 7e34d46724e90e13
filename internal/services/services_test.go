package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"roadside-rescue/internal/models"
	"roadside-rescue/internal/repositories/memory"
	"roadside-rescue/internal/utils"
	"roadside-rescue/pkg/cache"
	"roadside-rescue/pkg/events"
	"roadside-rescue/pkg/logger"
)

type recordedEvent struct {
	Type    events.Type
	Request models.HelpRequest
	Actor   int64
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (f *fakeNotifier) RequestChanged(_ context.Context, t events.Type, r *models.HelpRequest, actor int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{Type: t, Request: *r, Actor: actor})
}

func (f *fakeNotifier) types() []events.Type {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]events.Type, len(f.events))
	for i, e := range f.events {
		out[i] = e.Type
	}
	return out
}

type fakeGeocoder struct{ address string }

func (g fakeGeocoder) ReverseGeocode(context.Context, float64, float64) (string, error) {
	return g.address, nil
}

type fixture struct {
	auth     AuthService
	requests RequestService
	mechanic MechanicService
	notifier *fakeNotifier
	geo      *cache.MemoryGeo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	users := memory.NewUserRepository()
	reqs := memory.NewHelpRequestRepository()
	notifier := &fakeNotifier{}
	geo := cache.NewMemoryGeo()
	log := logger.NewNop()

	auth := NewAuthService(users, "test-secret", time.Hour, log)
	auth.(*authService).bcryptCost = bcrypt.MinCost

	return &fixture{
		auth:     auth,
		requests: NewRequestService(reqs, users, geo, fakeGeocoder{address: "Rajpur Rd"}, notifier, 50, log),
		mechanic: NewMechanicService(users, log),
		notifier: notifier,
		geo:      geo,
	}
}

func (f *fixture) register(t *testing.T, email, role string) *models.User {
	t.Helper()
	u, err := f.auth.Register(context.Background(), &models.RegisterInput{
		Name:     "User " + email,
		Email:    email,
		Phone:    "98765 43210",
		Password: "secret123",
		Role:     role,
	})
	require.NoError(t, err)
	return u
}

// online puts a mechanic on duty at the test location and returns the fresh record.
func (f *fixture) online(t *testing.T, m *models.User) *models.User {
	t.Helper()
	require.NoError(t, f.mechanic.UpdateLocation(context.Background(), m, models.TestLocation.Lat, models.TestLocation.Lng))
	u, err := f.auth.(*authService).userRepo.GetByID(context.Background(), m.ID)
	require.NoError(t, err)
	return u
}

func (f *fixture) create(t *testing.T, driver *models.User) *models.HelpRequest {
	t.Helper()
	r, err := f.requests.Create(context.Background(), driver, &models.CreateRequestInput{
		VehicleType: "Car",
		ProblemDesc: "Flat tyre on the highway",
		Lat:         30.3200,
		Lng:         78.0300,
	})
	require.NoError(t, err)
	return r
}

func assertKind(t *testing.T, err error, kind error, detail string) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, kind)
	var se *Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, detail, se.Detail)
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m := f.register(t, "Mech@Example.com", "MECHANIC")
	assert.Equal(t, models.UserRoleMechanic, m.Role)
	assert.True(t, m.IsAvailable, "mechanics start available")
	assert.Equal(t, "mech@example.com", m.Email)
	assert.Equal(t, "9876543210", m.Phone)

	d := f.register(t, "driver@example.com", "driver")
	assert.False(t, d.IsAvailable)

	_, err := f.auth.Register(ctx, &models.RegisterInput{Name: "Dup", Email: "driver@example.com", Phone: "9876543210", Password: "secret123", Role: "driver"})
	assertKind(t, err, ErrInvalidState, utils.ErrEmailRegistered)

	res, err := f.auth.Login(ctx, "MECH@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "bearer", res.TokenType)
	assert.Equal(t, models.UserRoleMechanic, res.Role)

	claims, err := utils.ValidateToken(res.AccessToken, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, "mechanic", claims.Role)

	user, err := f.auth.Authenticate(ctx, res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, m.ID, user.ID)

	_, err = f.auth.Login(ctx, "mech@example.com", "wrong-pass1")
	assertKind(t, err, ErrUnauthorized, utils.ErrInvalidCredentials)

	_, err = f.auth.Authenticate(ctx, "garbage")
	assertKind(t, err, ErrUnauthorized, utils.ErrInvalidTokenDetail)

	orphan, err := utils.GenerateAccessToken(999, "driver", "ghost", "test-secret", time.Hour)
	require.NoError(t, err)
	_, err = f.auth.Authenticate(ctx, orphan)
	assertKind(t, err, ErrUnauthorized, utils.ErrUserNotFound)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.auth.Register(context.Background(), &models.RegisterInput{Name: "Al", Email: "a@b.co", Phone: "123", Password: "secret123", Role: "driver"})
	assertKind(t, err, ErrValidation, "Phone number must have at least 10 digits")
}

func TestCreateRequest(t *testing.T) {
	f := newFixture(t)
	d := f.register(t, "d@x.io", "driver")

	r := f.create(t, d)
	assert.Equal(t, models.RequestStatusPending, r.Status)
	assert.Equal(t, models.VehicleTypeCar, r.VehicleType)
	assert.Equal(t, "Rajpur Rd", r.Address)
	assert.Equal(t, []events.Type{events.RequestCreated}, f.notifier.types())

	hits, _ := f.geo.Within(context.Background(), 30.32, 78.03, 1)
	require.Len(t, hits, 1)
	assert.Equal(t, r.ID, hits[0].ID)

	_, err := f.requests.Create(context.Background(), d, &models.CreateRequestInput{VehicleType: "car", ProblemDesc: "help", Lat: 1, Lng: 1})
	assertKind(t, err, ErrValidation, "problem_desc must be at least 5 characters")
}

func TestFullLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.register(t, "d@x.io", "driver")
	m := f.online(t, f.register(t, "m@x.io", "mechanic"))
	r := f.create(t, d)

	nearby, err := f.requests.Nearby(ctx, m)
	require.NoError(t, err)
	require.Len(t, nearby, 1)

	res, err := f.requests.Accept(ctx, m, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "assigned", res.Status)

	nearby, err = f.requests.Nearby(ctx, m)
	require.NoError(t, err)
	assert.Empty(t, nearby, "accepted requests leave the queue")

	job, err := f.requests.ActiveJob(ctx, m)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, r.ID, job.ID)
	require.NotNil(t, job.Customer)
	assert.Equal(t, d.Name, job.Customer.Name)

	mine, err := f.requests.ListMine(ctx, d)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.NotNil(t, mine[0].Mechanic)
	assert.Equal(t, m.ID, mine[0].Mechanic.ID)

	_, err = f.requests.Complete(ctx, m, r.ID)
	assertKind(t, err, ErrInvalidState, "Cannot complete. Current status: Accepted")

	res, err = f.requests.Start(ctx, m, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "en_route", res.Status)

	res, err = f.requests.Complete(ctx, m, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "completed", res.Status)

	job, err = f.requests.ActiveJob(ctx, m)
	require.NoError(t, err)
	assert.Nil(t, job)

	assert.Equal(t, []events.Type{
		events.RequestCreated, events.RequestAccepted, events.RequestEnRoute, events.RequestCompleted,
	}, f.notifier.types())
}

func TestAcceptRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.register(t, "d@x.io", "driver")
	m1 := f.online(t, f.register(t, "m1@x.io", "mechanic"))
	m2 := f.online(t, f.register(t, "m2@x.io", "mechanic"))
	r1 := f.create(t, d)
	r2 := f.create(t, d)

	_, err := f.requests.Accept(ctx, m1, r1.ID)
	require.NoError(t, err)

	_, err = f.requests.Accept(ctx, m2, r1.ID)
	assertKind(t, err, ErrInvalidState, utils.ErrAlreadyTaken)

	_, err = f.requests.Accept(ctx, m1, r2.ID)
	assertKind(t, err, ErrConflict, utils.ErrActiveJobExists)

	_, err = f.requests.Accept(ctx, m1, 12345)
	assertKind(t, err, ErrNotFound, "Request not found")

	_, err = f.requests.Start(ctx, m2, r1.ID)
	assertKind(t, err, ErrForbidden, utils.ErrNotAssigned)
}

func TestCancelRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.register(t, "d@x.io", "driver")
	other := f.register(t, "o@x.io", "driver")
	m := f.online(t, f.register(t, "m@x.io", "mechanic"))

	r := f.create(t, d)
	_, err := f.requests.Cancel(ctx, other, r.ID)
	assertKind(t, err, ErrForbidden, utils.ErrNotCancelOwner)

	res, err := f.requests.Cancel(ctx, d, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cancelled", res.Status)

	nearby, err := f.requests.Nearby(ctx, m)
	require.NoError(t, err)
	assert.Empty(t, nearby)

	r2 := f.create(t, d)
	_, err = f.requests.Accept(ctx, m, r2.ID)
	require.NoError(t, err)
	_, err = f.requests.Cancel(ctx, d, r2.ID)
	assertKind(t, err, ErrInvalidState, utils.ErrCannotCancel)
}

func TestRejectPendingHidesFromMechanicOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.register(t, "d@x.io", "driver")
	m1 := f.online(t, f.register(t, "m1@x.io", "mechanic"))
	m2 := f.online(t, f.register(t, "m2@x.io", "mechanic"))
	r := f.create(t, d)

	res, err := f.requests.Reject(ctx, m1, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "declined", res.Status)

	n1, _ := f.requests.Nearby(ctx, m1)
	n2, _ := f.requests.Nearby(ctx, m2)
	assert.Empty(t, n1)
	assert.Len(t, n2, 1)

	got, err := f.requests.Get(ctx, d, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, got.Status)
}

func TestRejectAcceptedReleasesMechanic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.register(t, "d@x.io", "driver")
	m := f.online(t, f.register(t, "m@x.io", "mechanic"))
	other := f.online(t, f.register(t, "o@x.io", "mechanic"))
	r := f.create(t, d)

	_, err := f.requests.Accept(ctx, m, r.ID)
	require.NoError(t, err)

	_, err = f.requests.Reject(ctx, other, r.ID)
	assertKind(t, err, ErrInvalidState, "Cannot reject. Current status: Accepted")

	res, err := f.requests.Reject(ctx, m, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rejected", res.Status)

	fresh, err := f.auth.(*authService).userRepo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, fresh.IsAvailable)

	_, err = f.requests.Reject(ctx, m, r.ID)
	assertKind(t, err, ErrInvalidState, "Cannot reject. Current status: Rejected")
}

func TestGetRequestOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.register(t, "d@x.io", "driver")
	stranger := f.register(t, "s@x.io", "driver")
	r := f.create(t, d)

	_, err := f.requests.Get(ctx, stranger, r.ID)
	assertKind(t, err, ErrForbidden, utils.ErrNotAuthorized)

	_, err = f.requests.Get(ctx, d, 999)
	assertKind(t, err, ErrNotFound, "Request not found")
}

func TestNearbyRespectsRadiusAndLocation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.register(t, "d@x.io", "driver")
	m := f.register(t, "m@x.io", "mechanic")

	f.create(t, d)
	_, err := f.requests.Create(ctx, d, &models.CreateRequestInput{VehicleType: "truck", ProblemDesc: "engine seized", Lat: 28.6139, Lng: 77.2090})
	require.NoError(t, err)

	nearby, err := f.requests.Nearby(ctx, m)
	require.NoError(t, err)
	assert.Empty(t, nearby, "no stored location")

	nearby, err = f.requests.Nearby(ctx, f.online(t, m))
	require.NoError(t, err)
	assert.Len(t, nearby, 1, "Delhi is outside the radius")
}

func TestToggleAvailability(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.register(t, "m@x.io", "mechanic")

	av, err := f.mechanic.ToggleAvailability(ctx, m, 30.1, 78.1)
	require.NoError(t, err)
	assert.False(t, av.IsAvailable)

	fresh := f.online(t, m)
	av, err = f.mechanic.ToggleAvailability(ctx, fresh, 30.1, 78.1)
	require.NoError(t, err)
	assert.True(t, av.IsAvailable)

	_, err = f.mechanic.ToggleAvailability(ctx, fresh, 95, 78.1)
	assertKind(t, err, ErrValidation, "Invalid latitude")
}

func TestRebuildGeoIndex(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.register(t, "d@x.io", "driver")
	r := f.create(t, d)

	require.NoError(t, f.geo.Remove(ctx, r.ID))
	require.NoError(t, f.requests.RebuildGeoIndex(ctx))

	hits, _ := f.geo.Within(ctx, r.Lat, r.Lng, 1)
	assert.Len(t, hits, 1)
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "a***@example.com", maskEmail(" asha@example.com "))
	assert.Equal(t, "***", maskEmail("not-an-email"))
	assert.Equal(t, "***", maskEmail("@example.com"))
}
