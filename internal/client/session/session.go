package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"roadside-rescue/pkg/logger"
)

const (
	KeyToken = "token"
	KeyRole  = "role"
)

const (
	RoleDriver   = "driver"
	RoleMechanic = "mechanic"
)

var ErrInvalidToken = errors.New("invalid session token")

// NormalizeRole maps stored roles onto driver or mechanic. The legacy "user"
// role is a driver. Anything else yields "".
func NormalizeRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case RoleDriver, "user":
		return RoleDriver
	case RoleMechanic:
		return RoleMechanic
	}
	return ""
}

// Claims is what the client reads out of the access token. The signature is
// not checked here; the server does that on every call.
type Claims struct {
	Subject   string
	Role      string
	Name      string
	ExpiresAt time.Time
}

type tokenClaims struct {
	Role string `json:"role"`
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// Store is the single owner of the session. Every component reads the token
// and role through it.
type Store struct {
	storage Storage
	logger  *logger.Logger
	now     func() time.Time

	mu     sync.RWMutex
	token  string
	role   string
	claims *Claims
}

func NewStore(storage Storage, log *logger.Logger) *Store {
	return &Store{storage: storage, logger: log, now: time.Now}
}

// Init restores a persisted session. A token that cannot be decoded or has
// expired is discarded.
func (s *Store) Init() {
	token, ok := s.storage.Get(KeyToken)
	if !ok || token == "" {
		return
	}

	claims, err := s.decode(token)
	if err != nil {
		s.logger.WithError(err).Info("Discarding stored session")
		s.clear()
		return
	}

	role, _ := s.storage.Get(KeyRole)
	if role == "" {
		role = claims.Role
	}

	s.mu.Lock()
	s.token = token
	s.role = role
	s.claims = claims
	s.mu.Unlock()
}

// Login persists the token and the role it carries.
func (s *Store) Login(token string) error {
	claims, err := s.decode(token)
	if err != nil {
		s.clear()
		return err
	}

	if err := s.storage.Set(KeyToken, token); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}
	if err := s.storage.Set(KeyRole, claims.Role); err != nil {
		return fmt.Errorf("failed to persist role: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.role = claims.Role
	s.claims = claims
	s.mu.Unlock()
	return nil
}

func (s *Store) Logout() {
	s.clear()
}

func (s *Store) clear() {
	if err := s.storage.Remove(KeyToken, KeyRole); err != nil {
		s.logger.WithError(err).Warn("Failed to clear stored session")
	}
	s.mu.Lock()
	s.token = ""
	s.role = ""
	s.claims = nil
	s.mu.Unlock()
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Role is the raw stored role. Use NormalizeRole before routing on it.
func (s *Store) Role() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role
}

func (s *Store) Claims() *Claims {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.claims == nil {
		return nil
	}
	c := *s.claims
	return &c
}

func (s *Store) LoggedIn() bool {
	return s.Token() != ""
}

func (s *Store) decode(token string) (*Claims, error) {
	var tc tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &tc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if tc.Role == "" {
		return nil, fmt.Errorf("%w: missing role claim", ErrInvalidToken)
	}

	c := &Claims{Subject: tc.Subject, Role: tc.Role, Name: tc.Name}
	if tc.ExpiresAt != nil {
		c.ExpiresAt = tc.ExpiresAt.Time
		if !c.ExpiresAt.After(s.now()) {
			return nil, fmt.Errorf("%w: expired", ErrInvalidToken)
		}
	}
	return c, nil
}
