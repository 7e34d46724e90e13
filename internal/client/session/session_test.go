package session

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roadside-rescue/pkg/logger"
)

func makeToken(t *testing.T, role string, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": "7", "name": "Dev", "exp": exp.Unix()}
	if role != "" {
		claims["role"] = role
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("any-key"))
	require.NoError(t, err)
	return token
}

func TestNormalizeRole(t *testing.T) {
	assert.Equal(t, RoleDriver, NormalizeRole("driver"))
	assert.Equal(t, RoleDriver, NormalizeRole("user"))
	assert.Equal(t, RoleMechanic, NormalizeRole(" Mechanic "))
	assert.Equal(t, "", NormalizeRole("admin"))
	assert.Equal(t, "", NormalizeRole(""))
}

func TestLoginPersistsTokenAndRole(t *testing.T) {
	storage := NewMemoryStorage()
	s := NewStore(storage, logger.NewNop())
	token := makeToken(t, "mechanic", time.Now().Add(time.Hour))

	require.NoError(t, s.Login(token))
	assert.True(t, s.LoggedIn())
	assert.Equal(t, token, s.Token())
	assert.Equal(t, "mechanic", s.Role())
	assert.Equal(t, "7", s.Claims().Subject)
	assert.Equal(t, "Dev", s.Claims().Name)

	stored, _ := storage.Get(KeyToken)
	assert.Equal(t, token, stored)
	role, _ := storage.Get(KeyRole)
	assert.Equal(t, "mechanic", role)
}

func TestLoginRejectsBadToken(t *testing.T) {
	storage := NewMemoryStorage()
	s := NewStore(storage, logger.NewNop())
	require.NoError(t, s.Login(makeToken(t, "driver", time.Now().Add(time.Hour))))

	err := s.Login("not-a-jwt")
	assert.True(t, errors.Is(err, ErrInvalidToken))
	assert.False(t, s.LoggedIn())
	_, ok := storage.Get(KeyToken)
	assert.False(t, ok)

	err = s.Login(makeToken(t, "", time.Now().Add(time.Hour)))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestInit(t *testing.T) {
	t.Run("restores a valid session", func(t *testing.T) {
		storage := NewMemoryStorage()
		require.NoError(t, storage.Set(KeyToken, makeToken(t, "user", time.Now().Add(time.Hour))))
		require.NoError(t, storage.Set(KeyRole, "user"))

		s := NewStore(storage, logger.NewNop())
		s.Init()
		assert.True(t, s.LoggedIn())
		assert.Equal(t, RoleDriver, NormalizeRole(s.Role()))
	})

	t.Run("discards an expired token", func(t *testing.T) {
		storage := NewMemoryStorage()
		require.NoError(t, storage.Set(KeyToken, makeToken(t, "driver", time.Now().Add(-time.Minute))))
		require.NoError(t, storage.Set(KeyRole, "driver"))

		s := NewStore(storage, logger.NewNop())
		s.Init()
		assert.False(t, s.LoggedIn())
		_, ok := storage.Get(KeyRole)
		assert.False(t, ok)
	})

	t.Run("discards garbage", func(t *testing.T) {
		storage := NewMemoryStorage()
		require.NoError(t, storage.Set(KeyToken, "garbage"))

		s := NewStore(storage, logger.NewNop())
		s.Init()
		assert.False(t, s.LoggedIn())
		assert.Nil(t, s.Claims())
	})

	t.Run("falls back to the claim role", func(t *testing.T) {
		storage := NewMemoryStorage()
		require.NoError(t, storage.Set(KeyToken, makeToken(t, "mechanic", time.Now().Add(time.Hour))))

		s := NewStore(storage, logger.NewNop())
		s.Init()
		assert.Equal(t, "mechanic", s.Role())
	})
}

func TestLogout(t *testing.T) {
	storage := NewMemoryStorage()
	s := NewStore(storage, logger.NewNop())
	require.NoError(t, s.Login(makeToken(t, "driver", time.Now().Add(time.Hour))))

	s.Logout()
	assert.False(t, s.LoggedIn())
	assert.Empty(t, s.Role())
	_, ok := storage.Get(KeyToken)
	assert.False(t, ok)
	_, ok = storage.Get(KeyRole)
	assert.False(t, ok)
	assert.Nil(t, s.Claims())
}

func TestFileStorageRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	fs, err := NewFileStorage(path)
	require.NoError(t, err)
	require.NoError(t, fs.Set(KeyToken, "abc"))
	require.NoError(t, fs.Set(KeyRole, "driver"))

	reopened, err := NewFileStorage(path)
	require.NoError(t, err)
	v, ok := reopened.Get(KeyToken)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)

	require.NoError(t, reopened.Remove(KeyToken, KeyRole))
	again, err := NewFileStorage(path)
	require.NoError(t, err)
	_, ok = again.Get(KeyRole)
	assert.False(t, ok)
}
