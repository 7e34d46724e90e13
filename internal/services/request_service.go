package services

import (
	"context"
	"errors"
	"fmt"

	"roadside-rescue/internal/models"
	"roadside-rescue/internal/repositories/interfaces"
	"roadside-rescue/internal/utils"
	"roadside-rescue/internal/validators"
	"roadside-rescue/pkg/cache"
	"roadside-rescue/pkg/events"
	"roadside-rescue/pkg/logger"
	"roadside-rescue/pkg/maps"
)

type RequestService interface {
	// Driver side
	Create(ctx context.Context, customer *models.User, input *models.CreateRequestInput) (*models.HelpRequest, error)
	ListMine(ctx context.Context, customer *models.User) ([]models.HelpRequest, error)
	Get(ctx context.Context, user *models.User, id int64) (*models.HelpRequest, error)
	Cancel(ctx context.Context, customer *models.User, id int64) (*models.ActionResult, error)

	// Mechanic side
	Nearby(ctx context.Context, mechanic *models.User) ([]models.HelpRequest, error)
	ActiveJob(ctx context.Context, mechanic *models.User) (*models.HelpRequest, error)
	Accept(ctx context.Context, mechanic *models.User, id int64) (*models.ActionResult, error)
	Reject(ctx context.Context, mechanic *models.User, id int64) (*models.ActionResult, error)
	Start(ctx context.Context, mechanic *models.User, id int64) (*models.ActionResult, error)
	Complete(ctx context.Context, mechanic *models.User, id int64) (*models.ActionResult, error)

	// RebuildGeoIndex re-adds every pending request to the geo index.
	RebuildGeoIndex(ctx context.Context) error
}

type requestService struct {
	requestRepo    interfaces.HelpRequestRepository
	userRepo       interfaces.UserRepository
	geo            cache.GeoIndex
	geocoder       maps.Geocoder
	notifier       NotificationService
	nearbyRadiusKM float64
	logger         *logger.Logger
}

func NewRequestService(
	requestRepo interfaces.HelpRequestRepository,
	userRepo interfaces.UserRepository,
	geo cache.GeoIndex,
	geocoder maps.Geocoder,
	notifier NotificationService,
	nearbyRadiusKM float64,
	log *logger.Logger,
) RequestService {
	if geocoder == nil {
		geocoder = maps.NoopGeocoder{}
	}
	return &requestService{
		requestRepo:    requestRepo,
		userRepo:       userRepo,
		geo:            geo,
		geocoder:       geocoder,
		notifier:       notifier,
		nearbyRadiusKM: nearbyRadiusKM,
		logger:         log,
	}
}

func (s *requestService) Create(ctx context.Context, customer *models.User, input *models.CreateRequestInput) (*models.HelpRequest, error) {
	if errs := validators.ValidateCreateRequest(input); errs != nil {
		return nil, invalid(errs.First())
	}

	request := &models.HelpRequest{
		CustomerID:  customer.ID,
		VehicleType: models.VehicleType(input.VehicleType),
		ProblemDesc: input.ProblemDesc,
		Lat:         input.Lat,
		Lng:         input.Lng,
		Status:      models.RequestStatusPending,
	}
	if err := s.requestRepo.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if err := s.geo.Add(ctx, request.ID, request.Lat, request.Lng); err != nil {
		s.logger.WithError(err).WithHelpRequestID(request.ID).Warn("Failed to index request location")
	}

	if address, err := s.geocoder.ReverseGeocode(ctx, request.Lat, request.Lng); err != nil {
		s.logger.WithError(err).WithHelpRequestID(request.ID).Debug("Reverse geocoding failed")
	} else if address != "" {
		if err := s.requestRepo.SetAddress(ctx, request.ID, address); err == nil {
			request.Address = address
		}
	}

	s.notifier.RequestChanged(ctx, events.RequestCreated, request, customer.ID)
	return request, nil
}

func (s *requestService) ListMine(ctx context.Context, customer *models.User) ([]models.HelpRequest, error) {
	requests, err := s.requestRepo.ListByCustomer(ctx, customer.ID)
	if err != nil {
		return nil, err
	}
	if err := s.attachMechanics(ctx, requests); err != nil {
		return nil, err
	}
	if requests == nil {
		requests = []models.HelpRequest{}
	}
	return requests, nil
}

func (s *requestService) attachMechanics(ctx context.Context, requests []models.HelpRequest) error {
	var ids []int64
	for _, r := range requests {
		if r.MechanicID != nil {
			ids = append(ids, *r.MechanicID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	mechanics, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to load mechanics: %w", err)
	}
	for i := range requests {
		if requests[i].MechanicID == nil {
			continue
		}
		if m, ok := mechanics[*requests[i].MechanicID]; ok {
			requests[i].Mechanic = &models.MechanicInfo{ID: m.ID, Name: m.Name, Phone: m.Phone}
		}
	}
	return nil
}

func (s *requestService) Get(ctx context.Context, user *models.User, id int64) (*models.HelpRequest, error) {
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.CustomerID != user.ID && !request.AssignedTo(user.ID) {
		return nil, forbidden(utils.ErrNotAuthorized)
	}

	one := []models.HelpRequest{*request}
	if err := s.attachMechanics(ctx, one); err != nil {
		return nil, err
	}
	return &one[0], nil
}

func (s *requestService) load(ctx context.Context, id int64) (*models.HelpRequest, error) {
	request, err := s.requestRepo.GetByID(ctx, id)
	if errors.Is(err, interfaces.ErrNotFound) {
		return nil, notFound(utils.ResourceRequest)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load request: %w", err)
	}
	return request, nil
}

func (s *requestService) Cancel(ctx context.Context, customer *models.User, id int64) (*models.ActionResult, error) {
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.CustomerID != customer.ID {
		return nil, forbidden(utils.ErrNotCancelOwner)
	}
	if request.Status != models.RequestStatusPending {
		return nil, badState(utils.ErrCannotCancel)
	}

	updated, err := s.apply(ctx, interfaces.Transition{
		ID:   id,
		From: []models.RequestStatus{models.RequestStatusPending},
		To:   models.RequestStatusCancelled,
	}, utils.ErrCannotCancel)
	if err != nil {
		return nil, err
	}

	s.unindex(ctx, id)
	s.notifier.RequestChanged(ctx, events.RequestCancelled, updated, customer.ID)
	return &models.ActionResult{Status: string(models.RequestStatusCancelled)}, nil
}

// apply runs a conditional transition and reports a lost race as staleDetail.
func (s *requestService) apply(ctx context.Context, t interfaces.Transition, staleDetail string) (*models.HelpRequest, error) {
	updated, err := s.requestRepo.Apply(ctx, t)
	if errors.Is(err, interfaces.ErrStale) {
		return nil, badState(staleDetail)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update request: %w", err)
	}
	return updated, nil
}

func (s *requestService) unindex(ctx context.Context, id int64) {
	if err := s.geo.Remove(ctx, id); err != nil {
		s.logger.WithError(err).WithHelpRequestID(id).Warn("Failed to remove request from geo index")
	}
}

func (s *requestService) Nearby(ctx context.Context, mechanic *models.User) ([]models.HelpRequest, error) {
	out := []models.HelpRequest{}

	loc, ok := mechanic.Location()
	if !ok {
		return out, nil
	}

	hits, err := s.geo.Within(ctx, loc.Lat, loc.Lng, s.nearbyRadiusKM)
	if err != nil {
		return nil, fmt.Errorf("geo search failed: %w", err)
	}
	if len(hits) == 0 {
		return out, nil
	}

	ids := make([]int64, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}
	requests, err := s.requestRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]models.HelpRequest, len(requests))
	for _, r := range requests {
		byID[r.ID] = r
	}

	// hits are nearest first
	for _, h := range hits {
		r, ok := byID[h.ID]
		if !ok || r.Status != models.RequestStatusPending || r.DeclinedByMechanic(mechanic.ID) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *requestService) ActiveJob(ctx context.Context, mechanic *models.User) (*models.HelpRequest, error) {
	job, err := s.requestRepo.FindActiveByMechanic(ctx, mechanic.ID)
	if errors.Is(err, interfaces.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load active job: %w", err)
	}

	customer, err := s.userRepo.GetByID(ctx, job.CustomerID)
	if err == nil {
		job.Customer = &models.CustomerInfo{Name: customer.Name, Phone: customer.Phone}
	} else if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, fmt.Errorf("failed to load customer: %w", err)
	}
	return job, nil
}

func (s *requestService) Accept(ctx context.Context, mechanic *models.User, id int64) (*models.ActionResult, error) {
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.Status != models.RequestStatusPending {
		return nil, badState(utils.ErrAlreadyTaken)
	}

	active, err := s.requestRepo.FindActiveByMechanic(ctx, mechanic.ID)
	if err != nil && !errors.Is(err, interfaces.ErrNotFound) {
		return nil, fmt.Errorf("failed to check active job: %w", err)
	}
	if active != nil {
		return nil, conflict(utils.ErrActiveJobExists)
	}

	mechanicID := mechanic.ID
	updated, err := s.apply(ctx, interfaces.Transition{
		ID:     id,
		From:   []models.RequestStatus{models.RequestStatusPending},
		To:     models.RequestStatusAccepted,
		Assign: &mechanicID,
	}, utils.ErrAlreadyTaken)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.SetAvailability(ctx, mechanic.ID, false); err != nil {
		s.logger.WithError(err).WithUserID(mechanic.ID).Error("Failed to mark mechanic busy")
	}
	s.unindex(ctx, id)
	s.notifier.RequestChanged(ctx, events.RequestAccepted, updated, mechanic.ID)

	return &models.ActionResult{Status: "assigned"}, nil
}

// Reject on a Pending request hides it from this mechanic only. On an
// Accepted job held by the caller it ends the job as Rejected.
func (s *requestService) Reject(ctx context.Context, mechanic *models.User, id int64) (*models.ActionResult, error) {
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := fmt.Sprintf("Cannot reject. Current status: %s", request.Status)

	switch {
	case request.Status == models.RequestStatusPending:
		if err := s.requestRepo.Decline(ctx, id, mechanic.ID); err != nil {
			if errors.Is(err, interfaces.ErrStale) {
				return nil, badState(utils.ErrAlreadyTaken)
			}
			return nil, fmt.Errorf("failed to decline request: %w", err)
		}
		s.notifier.RequestChanged(ctx, events.RequestDeclined, request, mechanic.ID)
		return &models.ActionResult{Status: "declined"}, nil

	case request.Status == models.RequestStatusAccepted && request.AssignedTo(mechanic.ID):
		mechanicID := mechanic.ID
		updated, err := s.apply(ctx, interfaces.Transition{
			ID:         id,
			From:       []models.RequestStatus{models.RequestStatusAccepted},
			To:         models.RequestStatusRejected,
			MechanicID: &mechanicID,
		}, detail)
		if err != nil {
			return nil, err
		}
		s.release(ctx, mechanic.ID)
		s.notifier.RequestChanged(ctx, events.RequestRejected, updated, mechanic.ID)
		return &models.ActionResult{Status: string(models.RequestStatusRejected)}, nil
	}

	return nil, badState(detail)
}

func (s *requestService) Start(ctx context.Context, mechanic *models.User, id int64) (*models.ActionResult, error) {
	updated, err := s.advance(ctx, mechanic, id, models.RequestStatusAccepted, models.RequestStatusEnRoute, "Cannot start trip")
	if err != nil {
		return nil, err
	}
	s.notifier.RequestChanged(ctx, events.RequestEnRoute, updated, mechanic.ID)
	return &models.ActionResult{Status: "en_route", Message: "You are now en route to the customer"}, nil
}

func (s *requestService) Complete(ctx context.Context, mechanic *models.User, id int64) (*models.ActionResult, error) {
	updated, err := s.advance(ctx, mechanic, id, models.RequestStatusEnRoute, models.RequestStatusCompleted, "Cannot complete")
	if err != nil {
		return nil, err
	}
	s.release(ctx, mechanic.ID)
	s.notifier.RequestChanged(ctx, events.RequestCompleted, updated, mechanic.ID)
	return &models.ActionResult{Status: "completed", Message: "Job completed successfully!"}, nil
}

// advance moves an assigned job one step forward.
func (s *requestService) advance(ctx context.Context, mechanic *models.User, id int64, from, to models.RequestStatus, verb string) (*models.HelpRequest, error) {
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !request.AssignedTo(mechanic.ID) {
		return nil, forbidden(utils.ErrNotAssigned)
	}
	detail := fmt.Sprintf("%s. Current status: %s", verb, request.Status)
	if request.Status != from || !models.CanTransition(from, to) {
		return nil, badState(detail)
	}

	mechanicID := mechanic.ID
	return s.apply(ctx, interfaces.Transition{
		ID:         id,
		From:       []models.RequestStatus{from},
		To:         to,
		MechanicID: &mechanicID,
	}, detail)
}

func (s *requestService) release(ctx context.Context, mechanicID int64) {
	if err := s.userRepo.SetAvailability(ctx, mechanicID, true); err != nil {
		s.logger.WithError(err).WithUserID(mechanicID).Error("Failed to mark mechanic available")
	}
}

func (s *requestService) RebuildGeoIndex(ctx context.Context) error {
	pending, err := s.requestRepo.ListByStatus(ctx, models.RequestStatusPending)
	if err != nil {
		return err
	}
	for _, r := range pending {
		if err := s.geo.Add(ctx, r.ID, r.Lat, r.Lng); err != nil {
			return fmt.Errorf("index request %d: %w", r.ID, err)
		}
	}
	s.logger.WithField("count", len(pending)).Info("Geo index rebuilt")
	return nil
}
