package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"roadside-rescue/internal/models"
	"roadside-rescue/internal/repositories/interfaces"
)

type helpRequestRepository struct {
	mu       sync.RWMutex
	nextID   int64
	requests map[int64]models.HelpRequest
}

func NewHelpRequestRepository() interfaces.HelpRequestRepository {
	return &helpRequestRepository{requests: make(map[int64]models.HelpRequest)}
}

func clone(r models.HelpRequest) models.HelpRequest {
	if r.MechanicID != nil {
		id := *r.MechanicID
		r.MechanicID = &id
	}
	r.DeclinedBy = append([]int64(nil), r.DeclinedBy...)
	return r
}

func (r *helpRequestRepository) Create(_ context.Context, request *models.HelpRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	now := time.Now().UTC()
	request.ID = r.nextID
	request.CreatedAt = now
	request.UpdatedAt = now

	r.requests[request.ID] = clone(*request)
	return nil
}

func (r *helpRequestRepository) GetByID(_ context.Context, id int64) (*models.HelpRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.requests[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	out := clone(req)
	return &out, nil
}

func (r *helpRequestRepository) GetByIDs(_ context.Context, ids []int64) ([]models.HelpRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.HelpRequest, 0, len(ids))
	for _, id := range ids {
		if req, ok := r.requests[id]; ok {
			out = append(out, clone(req))
		}
	}
	return out, nil
}

func (r *helpRequestRepository) filter(keep func(models.HelpRequest) bool) []models.HelpRequest {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.HelpRequest
	for _, req := range r.requests {
		if keep(req) {
			out = append(out, clone(req))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *helpRequestRepository) ListByCustomer(_ context.Context, customerID int64) ([]models.HelpRequest, error) {
	return r.filter(func(req models.HelpRequest) bool { return req.CustomerID == customerID }), nil
}

func (r *helpRequestRepository) ListByStatus(_ context.Context, status models.RequestStatus) ([]models.HelpRequest, error) {
	return r.filter(func(req models.HelpRequest) bool { return req.Status == status }), nil
}

func (r *helpRequestRepository) FindActiveByMechanic(_ context.Context, mechanicID int64) (*models.HelpRequest, error) {
	active := r.filter(func(req models.HelpRequest) bool {
		return req.AssignedTo(mechanicID) && req.Status.IsAssigned()
	})
	if len(active) == 0 {
		return nil, interfaces.ErrNotFound
	}
	return &active[0], nil
}

func (r *helpRequestRepository) SetAddress(_ context.Context, id int64, address string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	req.Address = address
	r.requests[id] = req
	return nil
}

func (r *helpRequestRepository) Apply(_ context.Context, t interfaces.Transition) (*models.HelpRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[t.ID]
	if !ok || !statusIn(req.Status, t.From) {
		return nil, interfaces.ErrStale
	}
	if t.MechanicID != nil && !req.AssignedTo(*t.MechanicID) {
		return nil, interfaces.ErrStale
	}

	req.Status = t.To
	if t.Assign != nil {
		id := *t.Assign
		req.MechanicID = &id
	}
	req.UpdatedAt = time.Now().UTC()
	r.requests[t.ID] = req

	out := clone(req)
	return &out, nil
}

func (r *helpRequestRepository) Decline(_ context.Context, id, mechanicID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok || req.Status != models.RequestStatusPending {
		return interfaces.ErrStale
	}
	if !req.DeclinedByMechanic(mechanicID) {
		req.DeclinedBy = append(req.DeclinedBy, mechanicID)
	}
	req.UpdatedAt = time.Now().UTC()
	r.requests[id] = req
	return nil
}

func statusIn(s models.RequestStatus, set []models.RequestStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
