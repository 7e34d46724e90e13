package memory

import (
	"context"
	"sync"
	"time"

	"roadside-rescue/internal/models"
	"roadside-rescue/internal/repositories/interfaces"
)

type userRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]models.User
	emails map[string]int64
}

// NewUserRepository returns a process-local store used by tests and by the
// server when no database is configured.
func NewUserRepository() interfaces.UserRepository {
	return &userRepository{
		users:  make(map[int64]models.User),
		emails: make(map[string]int64),
	}
}

func (r *userRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.emails[user.Email]; taken {
		return interfaces.ErrDuplicate
	}

	r.nextID++
	now := time.Now().UTC()
	user.ID = r.nextID
	user.CreatedAt = now
	user.UpdatedAt = now

	r.users[user.ID] = *user
	r.emails[user.Email] = user.ID
	return nil
}

func (r *userRepository) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return &u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	id, ok := r.emails[email]
	r.mu.RUnlock()
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *userRepository) GetByIDs(_ context.Context, ids []int64) (map[int64]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[int64]*models.User, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out[id] = &u
		}
	}
	return out, nil
}

func (r *userRepository) SetAvailability(_ context.Context, id int64, available bool) error {
	return r.update(id, func(u *models.User) { u.IsAvailable = available })
}

func (r *userRepository) UpdateLocation(_ context.Context, id int64, lat, lng float64) error {
	return r.update(id, func(u *models.User) {
		u.Latitude = &lat
		u.Longitude = &lng
	})
}

func (r *userRepository) update(id int64, fn func(*models.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	fn(&u)
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return nil
}

func (r *userRepository) CountAvailableMechanics(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, u := range r.users {
		if u.IsMechanic() && u.IsAvailable {
			n++
		}
	}
	return n, nil
}
