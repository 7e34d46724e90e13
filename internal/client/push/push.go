package push

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"roadside-rescue/internal/client/api"
	"roadside-rescue/pkg/logger"
)

// Event is one server push. Only its arrival matters to the client; the
// next poll fetches the actual state.
type Event struct {
	Type   string                 `json:"type"`
	RoomID string                 `json:"room_id,omitempty"`
	Data   map[string]interface{} `json:"data,omitempty"`
}

// Subscriber keeps a websocket open to the server and calls back on every
// event, reconnecting with backoff when the socket drops.
type Subscriber struct {
	url        string
	token      func() string
	dialer     *websocket.Dialer
	logger     *logger.Logger
	minBackoff time.Duration
	maxBackoff time.Duration
}

func NewSubscriber(baseURL string, token func() string, log *logger.Logger) (*Subscriber, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/ws")
	if err != nil {
		return nil, fmt.Errorf("invalid api url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	}

	return &Subscriber{
		url:        u.String(),
		token:      token,
		dialer:     &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		logger:     log,
		minBackoff: time.Second,
		maxBackoff: 30 * time.Second,
	}, nil
}

// Run blocks until ctx ends or the server refuses the session.
func (s *Subscriber) Run(ctx context.Context, onEvent func(Event)) error {
	backoff := s.minBackoff
	for {
		err := s.session(ctx, onEvent)
		if ctx.Err() != nil {
			return nil
		}
		if errors.Is(err, api.ErrSessionExpired) {
			return err
		}
		if err == nil {
			backoff = s.minBackoff
		}

		s.logger.WithError(err).WithField("retry_in", backoff.String()).Debug("Push connection lost")
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > s.maxBackoff {
			backoff = s.maxBackoff
		}
	}
}

// session runs one connection. It returns nil if at least one event was
// received before the socket closed.
func (s *Subscriber) session(ctx context.Context, onEvent func(Event)) error {
	token := s.token()
	if token == "" {
		return api.ErrSessionExpired
	}

	q := url.Values{"token": {token}}
	conn, resp, err := s.dialer.DialContext(ctx, s.url+"?"+q.Encode(), nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return api.ErrSessionExpired
		}
		return err
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	received := false
	for {
		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			if received {
				return nil
			}
			return err
		}
		received = true
		onEvent(ev)
	}
}
