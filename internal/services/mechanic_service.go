package services

import (
	"context"
	"fmt"

	"roadside-rescue/internal/models"
	"roadside-rescue/internal/observability"
	"roadside-rescue/internal/repositories/interfaces"
	"roadside-rescue/internal/validators"
	"roadside-rescue/pkg/logger"
)

type MechanicService interface {
	// ToggleAvailability flips the mechanic online or offline and stores the position.
	ToggleAvailability(ctx context.Context, mechanic *models.User, lat, lng float64) (*models.Availability, error)
	UpdateLocation(ctx context.Context, mechanic *models.User, lat, lng float64) error
}

type mechanicService struct {
	userRepo interfaces.UserRepository
	logger   *logger.Logger
}

func NewMechanicService(userRepo interfaces.UserRepository, log *logger.Logger) MechanicService {
	return &mechanicService{userRepo: userRepo, logger: log}
}

func (s *mechanicService) ToggleAvailability(ctx context.Context, mechanic *models.User, lat, lng float64) (*models.Availability, error) {
	if errs := validators.ValidateCoordinates(lat, lng); errs != nil {
		return nil, invalid(errs.First())
	}

	if err := s.userRepo.UpdateLocation(ctx, mechanic.ID, lat, lng); err != nil {
		return nil, fmt.Errorf("failed to store location: %w", err)
	}
	available := !mechanic.IsAvailable
	if err := s.userRepo.SetAvailability(ctx, mechanic.ID, available); err != nil {
		return nil, fmt.Errorf("failed to set availability: %w", err)
	}

	s.logger.WithUserID(mechanic.ID).WithField("is_available", available).Info("Mechanic availability changed")
	s.refreshOnlineGauge(ctx)
	return &models.Availability{IsAvailable: available}, nil
}

func (s *mechanicService) UpdateLocation(ctx context.Context, mechanic *models.User, lat, lng float64) error {
	if errs := validators.ValidateCoordinates(lat, lng); errs != nil {
		return invalid(errs.First())
	}
	if err := s.userRepo.UpdateLocation(ctx, mechanic.ID, lat, lng); err != nil {
		return fmt.Errorf("failed to store location: %w", err)
	}
	return nil
}

func (s *mechanicService) refreshOnlineGauge(ctx context.Context) {
	n, err := s.userRepo.CountAvailableMechanics(ctx)
	if err != nil {
		s.logger.WithError(err).Debug("Failed to count online mechanics")
		return
	}
	observability.MechanicsOnline.Set(float64(n))
}
