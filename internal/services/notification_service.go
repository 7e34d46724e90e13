package services

import (
	"context"
	"fmt"
	"time"

	"roadside-rescue/internal/models"
	"roadside-rescue/internal/observability"
	"roadside-rescue/internal/repositories/interfaces"
	"roadside-rescue/pkg/events"
	"roadside-rescue/pkg/logger"
	"roadside-rescue/pkg/sms"
	"roadside-rescue/pkg/websocket"
)

// Broadcaster pushes websocket messages. *websocket.Hub satisfies it.
type Broadcaster interface {
	SendToUser(userID int64, message websocket.Message)
	SendToRoom(roomID string, message websocket.Message)
}

// NotificationService fans a lifecycle change out to websocket rooms,
// the event stream, metrics and, on accept, an SMS to the driver.
type NotificationService interface {
	RequestChanged(ctx context.Context, eventType events.Type, request *models.HelpRequest, actorID int64)
}

type notificationService struct {
	hub         Broadcaster
	publisher   events.Publisher
	sms         sms.SMSProvider
	userRepo    interfaces.UserRepository
	countryCode string
	timeout     time.Duration
	logger      *logger.Logger
}

func NewNotificationService(
	hub Broadcaster,
	publisher events.Publisher,
	smsProvider sms.SMSProvider,
	userRepo interfaces.UserRepository,
	countryCode string,
	log *logger.Logger,
) NotificationService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if smsProvider == nil {
		smsProvider = sms.NewLogProvider(log)
	}
	return &notificationService{
		hub:         hub,
		publisher:   publisher,
		sms:         smsProvider,
		userRepo:    userRepo,
		countryCode: countryCode,
		timeout:     5 * time.Second,
		logger:      log,
	}
}

func (s *notificationService) RequestChanged(ctx context.Context, eventType events.Type, request *models.HelpRequest, actorID int64) {
	observability.HelpRequestEvents.WithLabelValues(string(eventType)).Inc()
	s.logger.LogRequestEvent(request.ID, string(eventType), map[string]interface{}{
		"status":   request.Status,
		"actor_id": actorID,
	})

	s.broadcast(eventType, request, actorID)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := s.publisher.Publish(ctx, events.Event{
		Type:       eventType,
		RequestID:  request.ID,
		CustomerID: request.CustomerID,
		MechanicID: request.MechanicID,
		Status:     string(request.Status),
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		s.logger.WithError(err).WithHelpRequestID(request.ID).Warn("Failed to publish request event")
	}

	if eventType == events.RequestAccepted {
		if err := s.notifyDriverAccepted(ctx, request); err != nil {
			observability.SMSFailures.Inc()
			s.logger.WithError(err).WithHelpRequestID(request.ID).Warn("Failed to send acceptance SMS")
		}
	}
}

func (s *notificationService) broadcast(eventType events.Type, request *models.HelpRequest, actorID int64) {
	if s.hub == nil {
		return
	}

	msg := websocket.Message{
		Type: string(eventType),
		Data: map[string]interface{}{
			"request_id": request.ID,
			"status":     request.Status,
		},
	}

	sent := map[int64]bool{}
	send := func(id int64) {
		if id != 0 && !sent[id] {
			sent[id] = true
			s.hub.SendToUser(id, msg)
		}
	}
	send(request.CustomerID)
	if request.MechanicID != nil {
		send(*request.MechanicID)
	}
	send(actorID)

	switch eventType {
	case events.RequestCreated, events.RequestCancelled, events.RequestAccepted:
		s.hub.SendToRoom(websocket.MechanicsRoom, msg)
	}
}

func (s *notificationService) notifyDriverAccepted(ctx context.Context, request *models.HelpRequest) error {
	if request.MechanicID == nil {
		return nil
	}

	users, err := s.userRepo.GetByIDs(ctx, []int64{request.CustomerID, *request.MechanicID})
	if err != nil {
		return err
	}
	customer, mechanic := users[request.CustomerID], users[*request.MechanicID]
	if customer == nil || mechanic == nil {
		return fmt.Errorf("request %d: participants missing", request.ID)
	}

	to := sms.E164(customer.Phone, s.countryCode)
	if to == "" {
		return nil
	}

	_, err = s.sms.SendSMS(ctx, &sms.SMSRequest{
		To: to,
		Message: fmt.Sprintf("Roadside Rescue: %s accepted your %s request and is on the way. Call %s.",
			mechanic.Name, request.VehicleType.Title(), mechanic.Phone),
	})
	return err
}
