package geo

import (
	"context"
	"errors"
	"sync"
	"time"

	"roadside-rescue/internal/models"
)

type State int

const (
	Idle State = iota
	Loading
	Error
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Error:
		return "error"
	}
	return "idle"
}

type ErrorKind int

const (
	Unknown ErrorKind = iota
	PermissionDenied
	PositionUnavailable
	Timeout
)

var kindText = map[ErrorKind]struct{ message, hint string }{
	PermissionDenied: {
		"Location permission denied.",
		"Allow location access for this client, or pass --lat and --lng.",
	},
	PositionUnavailable: {
		"Location information is unavailable.",
		"Make sure a location source is configured (ROADSIDE_LOCATION_URL) or use the test location.",
	},
	Timeout: {
		"Location request timed out.",
		"Check your connection and retry, or use the test location.",
	},
	Unknown: {
		"An unknown error occurred.",
		"Try using the test location.",
	},
}

// LocationError is a classified failure to get a position.
type LocationError struct {
	Kind ErrorKind
	Err  error
}

func (e *LocationError) Error() string { return e.Message() }
func (e *LocationError) Unwrap() error { return e.Err }

func (e *LocationError) Message() string { return kindText[e.Kind].message }
func (e *LocationError) Hint() string    { return kindText[e.Kind].hint }

// Classify wraps any locator error in a LocationError.
func Classify(err error) *LocationError {
	var le *LocationError
	if errors.As(err, &le) {
		return le
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &LocationError{Kind: Timeout, Err: err}
	}
	return &LocationError{Kind: Unknown, Err: err}
}

// Locator produces the device's current position.
type Locator interface {
	Locate(ctx context.Context) (models.Coordinates, error)
}

// Tracker holds the last acquired position and the acquisition state.
type Tracker struct {
	locator Locator
	timeout time.Duration

	mu       sync.RWMutex
	state    State
	err      *LocationError
	location *models.Coordinates
}

func NewTracker(locator Locator, timeout time.Duration) *Tracker {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Tracker{locator: locator, timeout: timeout}
}

// Acquire asks the locator for a fresh position.
func (t *Tracker) Acquire(ctx context.Context) (models.Coordinates, error) {
	t.mu.Lock()
	t.state = Loading
	t.err = nil
	t.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	coords, err := t.locator.Locate(ctx)
	if err == nil && !coords.Valid() {
		err = &LocationError{Kind: PositionUnavailable, Err: errors.New("coordinates out of range")}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		t.state = Error
		t.err = Classify(err)
		return models.Coordinates{}, t.err
	}
	t.state = Idle
	t.location = &coords
	return coords, nil
}

// UseTestLocation sets the fixed fallback position and clears any error.
func (t *Tracker) UseTestLocation() models.Coordinates {
	t.Set(models.TestLocation)
	return models.TestLocation
}

func (t *Tracker) Set(c models.Coordinates) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.location = &c
	t.state = Idle
	t.err = nil
}

func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.location = nil
}

func (t *Tracker) Location() (models.Coordinates, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.location == nil {
		return models.Coordinates{}, false
	}
	return *t.location, true
}

func (t *Tracker) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// Err is the last acquisition error, nil unless State is Error.
func (t *Tracker) Err() *LocationError {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.err
}
