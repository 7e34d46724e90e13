package driver

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"roadside-rescue/internal/client/api"
	"roadside-rescue/internal/client/geo"
	"roadside-rescue/internal/client/notify"
	"roadside-rescue/internal/client/poller"
	"roadside-rescue/internal/models"
	"roadside-rescue/internal/utils"
	"roadside-rescue/pkg/logger"
)

var (
	ErrLocationRequired = errors.New("location required")
	ErrProblemTooShort  = errors.New("problem description too short")
	ErrNotCancellable   = errors.New("only pending requests can be cancelled")
	ErrCancelAborted    = errors.New("cancel aborted")
	ErrUnknownVehicle   = errors.New("vehicle type must be car, bike, or truck")
)

const (
	CancelPrompt = "Are you sure you want to cancel this request?"

	msgWaitingForLocation = "Waiting for location..."
	msgDescribeProblem    = "Please describe your problem in detail"
	msgSubmitted          = "🚨 Help request sent! Finding nearby mechanics..."
	msgSubmitFailed       = "Failed to send request"
	msgCancelled          = "Request cancelled"
	msgCancelFailed       = "Failed to cancel request"
)

// Gateway is the part of the API the driver view uses.
type Gateway interface {
	CreateRequest(ctx context.Context, in api.CreateRequest) (*models.HelpRequest, error)
	MyRequests(ctx context.Context) ([]models.HelpRequest, error)
	Cancel(ctx context.Context, id int64) (*models.ActionResult, error)
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

// View is the driver dashboard: the new-request form plus the request list.
type View struct {
	api      Gateway
	tracker  *geo.Tracker
	notifier notify.Notifier
	confirm  Confirmer
	interval time.Duration
	logger   *logger.Logger

	mu          sync.Mutex
	vehicleType models.VehicleType
	problem     string
	requests    []models.HelpRequest

	poller      *poller.Poller
	expired     chan struct{}
	expiredOnce sync.Once
}

func New(gw Gateway, tracker *geo.Tracker, n notify.Notifier, confirm Confirmer, interval time.Duration, log *logger.Logger) *View {
	if interval <= 0 {
		interval = utils.DriverPollInterval
	}
	v := &View{
		api:         gw,
		tracker:     tracker,
		notifier:    n,
		confirm:     confirm,
		interval:    interval,
		logger:      log,
		vehicleType: models.VehicleTypeCar,
		expired:     make(chan struct{}),
	}
	v.poller = poller.New("driver-requests", interval, v.Refresh, log, poller.OnError(v.pollFailed))
	return v
}

func (v *View) SetVehicleType(s string) error {
	vt, ok := models.ParseVehicleType(s)
	if !ok {
		return ErrUnknownVehicle
	}
	v.mu.Lock()
	v.vehicleType = vt
	v.mu.Unlock()
	return nil
}

func (v *View) SetProblem(s string) {
	v.mu.Lock()
	v.problem = s
	v.mu.Unlock()
}

// Form returns the current form fields. ok is false while no location is set.
func (v *View) Form() (vehicle models.VehicleType, problem string, loc models.Coordinates, ok bool) {
	v.mu.Lock()
	vehicle, problem = v.vehicleType, v.problem
	v.mu.Unlock()
	loc, ok = v.tracker.Location()
	return vehicle, problem, loc, ok
}

// Locate acquires the device position and reports a failure with its hint.
func (v *View) Locate(ctx context.Context) (models.Coordinates, error) {
	c, err := v.tracker.Acquire(ctx)
	if err != nil {
		le := geo.Classify(err)
		v.notifier.Error(le.Message() + " " + le.Hint())
		return c, err
	}
	return c, nil
}

func (v *View) UseTestLocation() models.Coordinates {
	c := v.tracker.UseTestLocation()
	v.notifier.Info("Test location set to Dehradun city center")
	return c
}

// Submit sends the form. Nothing reaches the backend unless a location is
// set and the trimmed problem has at least five characters.
func (v *View) Submit(ctx context.Context) (*models.HelpRequest, error) {
	vehicle, problem, loc, ok := v.Form()
	if !ok {
		v.notifier.Error(msgWaitingForLocation)
		return nil, ErrLocationRequired
	}
	problem = strings.TrimSpace(problem)
	if utf8.RuneCountInString(problem) < utils.ProblemDescMinLength {
		v.notifier.Error(msgDescribeProblem)
		return nil, ErrProblemTooShort
	}

	created, err := v.api.CreateRequest(ctx, api.CreateRequest{
		VehicleType: string(vehicle),
		ProblemDesc: problem,
		Lat:         loc.Lat,
		Lng:         loc.Lng,
	})
	if err != nil {
		notify.APIError(v.notifier, err, msgSubmitFailed)
		return nil, err
	}

	v.mu.Lock()
	v.problem = ""
	v.mu.Unlock()
	v.tracker.Clear()

	v.notifier.Success(msgSubmitted)
	v.refreshQuietly(ctx)
	return created, nil
}

// Refresh replaces the list with the server's. On failure the last list stays.
func (v *View) Refresh(ctx context.Context) error {
	requests, err := v.api.MyRequests(ctx)
	if err != nil {
		return err
	}
	sortNewestFirst(requests)

	v.mu.Lock()
	v.requests = requests
	v.mu.Unlock()
	return nil
}

func (v *View) refreshQuietly(ctx context.Context) {
	if err := v.Refresh(ctx); err != nil {
		v.logger.WithError(err).Warn("Failed to refresh requests")
	}
}

// Requests splits the list into active and history, newest first.
func (v *View) Requests() (active, history []models.HelpRequest) {
	v.mu.Lock()
	snapshot := append([]models.HelpRequest(nil), v.requests...)
	v.mu.Unlock()
	return models.PartitionRequests(snapshot)
}

func (v *View) find(id int64) (models.HelpRequest, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, r := range v.requests {
		if r.ID == id {
			return r, true
		}
	}
	return models.HelpRequest{}, false
}

// Cancel asks for confirmation and cancels a Pending request.
func (v *View) Cancel(ctx context.Context, id int64) error {
	r, ok := v.find(id)
	if !ok || r.Status != models.RequestStatusPending {
		return ErrNotCancellable
	}
	if !v.confirm.Confirm(CancelPrompt) {
		return ErrCancelAborted
	}

	if _, err := v.api.Cancel(ctx, id); err != nil {
		notify.APIError(v.notifier, err, msgCancelFailed)
		return err
	}
	v.notifier.Success(msgCancelled)
	v.refreshQuietly(ctx)
	return nil
}

// Run polls the request list until ctx ends or Stop is called.
func (v *View) Run(ctx context.Context) {
	v.poller.Start(ctx)
}

func (v *View) Stop() {
	v.poller.Stop()
}

// Nudge refreshes ahead of the next tick.
func (v *View) Nudge() {
	v.poller.Trigger()
}

// Expired is closed the first time a poll finds the session gone.
func (v *View) Expired() <-chan struct{} {
	return v.expired
}

func (v *View) pollFailed(err error) {
	if errors.Is(err, api.ErrSessionExpired) {
		v.expiredOnce.Do(func() {
			v.notifier.Error(err.Error())
			close(v.expired)
		})
	}
}

func sortNewestFirst(requests []models.HelpRequest) {
	sort.SliceStable(requests, func(i, j int) bool {
		if !requests[i].CreatedAt.Equal(requests[j].CreatedAt) {
			return requests[i].CreatedAt.After(requests[j].CreatedAt)
		}
		return requests[i].ID > requests[j].ID
	})
}
