package mechanic

import (
	"context"
	"errors"
	"sync"
	"time"

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
	ErrNoActiveJob      = errors.New("no active job")
)

// Gateway is the part of the API the mechanic view uses.
type Gateway interface {
	ToggleAvailability(ctx context.Context, lat, lng float64) (bool, error)
	UpdateLocation(ctx context.Context, lat, lng float64) error
	NearbyRequests(ctx context.Context) ([]models.HelpRequest, error)
	ActiveJob(ctx context.Context) (*models.HelpRequest, error)
	Accept(ctx context.Context, id int64) (*models.ActionResult, error)
	Reject(ctx context.Context, id int64) (*models.ActionResult, error)
	Start(ctx context.Context, id int64) (*models.ActionResult, error)
	Complete(ctx context.Context, id int64) (*models.ActionResult, error)
}

// Snapshot is a consistent copy of the dashboard. Nearby is always empty
// while ActiveJob is set.
type Snapshot struct {
	Online    bool
	Location  *models.Coordinates
	Nearby    []models.HelpRequest
	ActiveJob *models.HelpRequest
}

type Config struct {
	PollInterval time.Duration
	PingInterval time.Duration
}

// View is the mechanic dashboard. While online it polls nearby requests and
// the active job, and reports its position on a slower ping.
type View struct {
	api      Gateway
	tracker  *geo.Tracker
	notifier notify.Notifier
	logger   *logger.Logger

	mu        sync.Mutex
	base      context.Context
	online    bool
	nearby    []models.HelpRequest
	activeJob *models.HelpRequest

	requests   *poller.Poller
	ping       *poller.Poller
	pollCancel context.CancelFunc

	expired     chan struct{}
	expiredOnce sync.Once
}

func New(gw Gateway, tracker *geo.Tracker, n notify.Notifier, cfg Config, log *logger.Logger) *View {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = utils.MechanicPollInterval
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = utils.LocationPingInterval
	}
	v := &View{
		api:      gw,
		tracker:  tracker,
		notifier: n,
		logger:   log,
		base:     context.Background(),
		expired:  make(chan struct{}),
	}
	v.requests = poller.New("mechanic-requests", cfg.PollInterval, v.Refresh, log, poller.OnError(v.pollFailed))
	v.ping = poller.New("mechanic-location", cfg.PingInterval, v.pingLocation, log, poller.OnError(v.pollFailed))
	return v
}

// Open binds the view to ctx and loads any job already in progress.
// Background tasks end with ctx.
func (v *View) Open(ctx context.Context) error {
	v.mu.Lock()
	v.base = ctx
	v.mu.Unlock()
	return v.Refresh(ctx)
}

// Toggle flips availability at the current position. The server's answer
// decides the new state.
func (v *View) Toggle(ctx context.Context) (bool, error) {
	loc, err := v.currentLocation(ctx)
	if err != nil {
		v.notifier.Info("Waiting for location...")
		return v.Online(), ErrLocationRequired
	}

	online, err := v.api.ToggleAvailability(ctx, loc.Lat, loc.Lng)
	if err != nil {
		notify.APIError(v.notifier, err, "Failed to update availability")
		return v.Online(), err
	}

	v.mu.Lock()
	v.online = online
	var pollCtx context.Context
	if online {
		if v.pollCancel == nil {
			pollCtx, v.pollCancel = context.WithCancel(v.base)
		}
	} else {
		v.nearby = nil
	}
	v.mu.Unlock()

	if online {
		v.notifier.Success("🟢 You are now ONLINE and visible to customers")
		if pollCtx != nil {
			v.requests.Start(pollCtx)
			v.ping.Start(pollCtx)
		}
	} else {
		v.notifier.Info("🔴 You are now OFFLINE")
		v.stopPolling()
	}
	return online, nil
}

func (v *View) stopPolling() {
	v.mu.Lock()
	cancel := v.pollCancel
	v.pollCancel = nil
	v.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	v.requests.Stop()
	v.ping.Stop()
}

// Expired is closed the first time a poll finds the session gone. The view
// is offline from then on.
func (v *View) Expired() <-chan struct{} {
	return v.expired
}

// pollFailed runs on a poller goroutine, so it cancels the poll context
// instead of waiting for the pollers to stop.
func (v *View) pollFailed(err error) {
	if !errors.Is(err, api.ErrSessionExpired) {
		return
	}
	v.expiredOnce.Do(func() {
		v.mu.Lock()
		v.online = false
		v.nearby = nil
		v.activeJob = nil
		cancel := v.pollCancel
		v.pollCancel = nil
		v.mu.Unlock()
		if cancel != nil {
			cancel()
		}
		v.notifier.Error(err.Error())
		close(v.expired)
	})
}

func (v *View) currentLocation(ctx context.Context) (models.Coordinates, error) {
	c, err := v.tracker.Acquire(ctx)
	if err == nil {
		return c, nil
	}
	if last, ok := v.tracker.Location(); ok {
		return last, nil
	}
	return models.Coordinates{}, err
}

func (v *View) pingLocation(ctx context.Context) error {
	loc, err := v.currentLocation(ctx)
	if err != nil {
		return err
	}
	return v.api.UpdateLocation(ctx, loc.Lat, loc.Lng)
}

// Refresh reloads the active job and, while online, the nearby list.
func (v *View) Refresh(ctx context.Context) error {
	job, err := v.api.ActiveJob(ctx)
	if err != nil {
		return err
	}

	var nearby []models.HelpRequest
	if job == nil && v.Online() {
		nearby, err = v.api.NearbyRequests(ctx)
		if err != nil {
			return err
		}
	}

	v.mu.Lock()
	v.activeJob = job
	if v.online {
		v.nearby = nearby
	} else {
		v.nearby = nil
	}
	v.mu.Unlock()
	return nil
}

func (v *View) Online() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.online
}

func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	s := Snapshot{Online: v.online}
	if loc, ok := v.tracker.Location(); ok {
		s.Location = &loc
	}
	if v.activeJob != nil {
		job := *v.activeJob
		s.ActiveJob = &job
		return s
	}
	s.Nearby = append([]models.HelpRequest(nil), v.nearby...)
	return s
}

func (v *View) Accept(ctx context.Context, id int64) error {
	return v.act(ctx, func() error {
		_, err := v.api.Accept(ctx, id)
		return err
	}, "🎯 Job accepted! Customer notified.", "Failed to accept job")
}

func (v *View) Reject(ctx context.Context, id int64) error {
	return v.act(ctx, func() error {
		_, err := v.api.Reject(ctx, id)
		return err
	}, "Job rejected", "Failed to reject job")
}

// Start moves the active job to En Route.
func (v *View) Start(ctx context.Context) error {
	job := v.Snapshot().ActiveJob
	if job == nil {
		return ErrNoActiveJob
	}
	return v.act(ctx, func() error {
		_, err := v.api.Start(ctx, job.ID)
		return err
	}, "🚗 Trip started! Navigate to customer location.", "Failed to start trip")
}

func (v *View) Complete(ctx context.Context) error {
	job := v.Snapshot().ActiveJob
	if job == nil {
		return ErrNoActiveJob
	}
	return v.act(ctx, func() error {
		_, err := v.api.Complete(ctx, job.ID)
		return err
	}, "🎉 Job completed successfully!", "Failed to complete job")
}

// act runs one backend call and always re-fetches afterwards, so local
// state only ever reflects the server.
func (v *View) act(ctx context.Context, call func() error, success, fallback string) error {
	err := call()
	if err != nil {
		notify.APIError(v.notifier, err, fallback)
	} else {
		v.notifier.Success(success)
	}
	if rerr := v.Refresh(ctx); rerr != nil {
		v.logger.WithError(rerr).Warn("Failed to refresh after action")
	}
	return err
}

// Nudge polls ahead of schedule when the view is online.
func (v *View) Nudge() {
	v.requests.Trigger()
}

// Close stops every background task.
func (v *View) Close() {
	v.stopPolling()
}
