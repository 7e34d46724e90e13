package geo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roadside-rescue/internal/models"
)

func TestTrackerAcquire(t *testing.T) {
	tr := NewTracker(StaticLocator{Coords: models.Coordinates{Lat: 12.9, Lng: 77.6}}, time.Second)
	assert.Equal(t, Idle, tr.State())
	_, ok := tr.Location()
	assert.False(t, ok)

	c, err := tr.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12.9, c.Lat)
	assert.Equal(t, Idle, tr.State())
	got, ok := tr.Location()
	assert.True(t, ok)
	assert.Equal(t, c, got)
}

func TestTrackerErrorStateAndTestLocation(t *testing.T) {
	tr := NewTracker(Unavailable, time.Second)

	_, err := tr.Acquire(context.Background())
	require.Error(t, err)
	assert.Equal(t, Error, tr.State())
	require.NotNil(t, tr.Err())
	assert.Equal(t, PositionUnavailable, tr.Err().Kind)
	assert.Equal(t, "Location information is unavailable.", tr.Err().Message())
	assert.NotEmpty(t, tr.Err().Hint())

	c := tr.UseTestLocation()
	assert.Equal(t, models.Coordinates{Lat: 30.3165, Lng: 78.0322}, c)
	assert.Equal(t, Idle, tr.State())
	assert.Nil(t, tr.Err())

	tr.Clear()
	_, ok := tr.Location()
	assert.False(t, ok)
}

type blockingLocator struct{}

func (blockingLocator) Locate(ctx context.Context) (models.Coordinates, error) {
	<-ctx.Done()
	return models.Coordinates{}, ctx.Err()
}

func TestTrackerTimeout(t *testing.T) {
	tr := NewTracker(blockingLocator{}, 10*time.Millisecond)
	_, err := tr.Acquire(context.Background())

	var le *LocationError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, Timeout, le.Kind)
	assert.Equal(t, "Location request timed out.", le.Message())
}

func TestTrackerRejectsOutOfRange(t *testing.T) {
	tr := NewTracker(StaticLocator{Coords: models.Coordinates{Lat: 123, Lng: 0}}, time.Second)
	_, err := tr.Acquire(context.Background())
	require.Error(t, err)
	assert.Equal(t, PositionUnavailable, tr.Err().Kind)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, Unknown, Classify(errors.New("weird")).Kind)
	assert.Equal(t, Timeout, Classify(context.DeadlineExceeded).Kind)
	assert.Equal(t, PermissionDenied, Classify(&LocationError{Kind: PermissionDenied}).Kind)
}

func TestHTTPLocator(t *testing.T) {
	status := http.StatusOK
	body := `{"latitude": 30.1, "longitude": 78.2}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	defer srv.Close()
	loc := NewHTTPLocator(srv.URL)

	c, err := loc.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.Coordinates{Lat: 30.1, Lng: 78.2}, c)

	body = `{"lat": 1.5, "lng": 2.5}`
	c, err = loc.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1.5, c.Lat)

	status = http.StatusForbidden
	_, err = loc.Locate(context.Background())
	assert.Equal(t, PermissionDenied, Classify(err).Kind)

	status = http.StatusOK
	body = `{"city":"Dehradun"}`
	_, err = loc.Locate(context.Background())
	assert.Equal(t, PositionUnavailable, Classify(err).Kind)
}
