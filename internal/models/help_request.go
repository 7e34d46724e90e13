package models

import (
	"strings"
	"time"
)

type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "Pending"
	RequestStatusAccepted  RequestStatus = "Accepted"
	RequestStatusEnRoute   RequestStatus = "En Route"
	RequestStatusCompleted RequestStatus = "Completed"
	RequestStatusCancelled RequestStatus = "Cancelled"
	RequestStatusRejected  RequestStatus = "Rejected"
)

var transitions = map[RequestStatus][]RequestStatus{
	RequestStatusPending:  {RequestStatusAccepted, RequestStatusCancelled},
	RequestStatusAccepted: {RequestStatusEnRoute, RequestStatusRejected},
	RequestStatusEnRoute:  {RequestStatusCompleted},
}

// CanTransition reports whether a request may move from one status to another.
func CanTransition(from, to RequestStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsActive covers Pending, Accepted and En Route.
func (s RequestStatus) IsActive() bool {
	switch s {
	case RequestStatusPending, RequestStatusAccepted, RequestStatusEnRoute:
		return true
	}
	return false
}

func (s RequestStatus) IsTerminal() bool {
	switch s {
	case RequestStatusCompleted, RequestStatusCancelled, RequestStatusRejected:
		return true
	}
	return false
}

// IsAssigned is true once a mechanic holds the job and it is still in progress.
func (s RequestStatus) IsAssigned() bool {
	return s == RequestStatusAccepted || s == RequestStatusEnRoute
}

type VehicleType string

const (
	VehicleTypeCar   VehicleType = "car"
	VehicleTypeBike  VehicleType = "bike"
	VehicleTypeTruck VehicleType = "truck"
)

var VehicleTypes = []VehicleType{VehicleTypeCar, VehicleTypeBike, VehicleTypeTruck}

func ParseVehicleType(s string) (VehicleType, bool) {
	v := VehicleType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range VehicleTypes {
		if v == known {
			return v, true
		}
	}
	return "", false
}

// Title returns the display form, e.g. "Car".
func (v VehicleType) Title() string {
	if v == "" {
		return ""
	}
	return strings.ToUpper(string(v[:1])) + string(v[1:])
}

type MechanicInfo struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type CustomerInfo struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type HelpRequest struct {
	ID          int64         `json:"id" bson:"_id"`
	CustomerID  int64         `json:"customer_id" bson:"customer_id"`
	MechanicID  *int64        `json:"mechanic_id" bson:"mechanic_id,omitempty"`
	VehicleType VehicleType   `json:"vehicle_type" bson:"vehicle_type"`
	ProblemDesc string        `json:"problem_desc" bson:"problem_desc"`
	Lat         float64       `json:"lat" bson:"lat"`
	Lng         float64       `json:"lng" bson:"lng"`
	Address     string        `json:"address,omitempty" bson:"address,omitempty"`
	Status      RequestStatus `json:"status" bson:"status"`
	DeclinedBy  []int64       `json:"-" bson:"declined_by,omitempty"`
	CreatedAt   time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time     `json:"-" bson:"updated_at"`

	Mechanic *MechanicInfo `json:"mechanic,omitempty" bson:"-"`
	Customer *CustomerInfo `json:"customer,omitempty" bson:"-"`
}

func (r *HelpRequest) Location() Coordinates {
	return Coordinates{Lat: r.Lat, Lng: r.Lng}
}

func (r *HelpRequest) AssignedTo(mechanicID int64) bool {
	return r.MechanicID != nil && *r.MechanicID == mechanicID
}

func (r *HelpRequest) DeclinedByMechanic(mechanicID int64) bool {
	for _, id := range r.DeclinedBy {
		if id == mechanicID {
			return true
		}
	}
	return false
}

type CreateRequestInput struct {
	VehicleType string  `json:"vehicle_type" validate:"required,vehicle_type"`
	ProblemDesc string  `json:"problem_desc" validate:"required,min=5,max=500"`
	Lat         float64 `json:"lat" validate:"latitude,detected,geo_latitude"`
	Lng         float64 `json:"lng" validate:"longitude,detected"`
}

// ActionResult is the body returned by the lifecycle endpoints.
type ActionResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// PartitionRequests splits requests into the active and history tabs.
func PartitionRequests(requests []HelpRequest) (active, history []HelpRequest) {
	for _, r := range requests {
		switch {
		case r.Status.IsActive():
			active = append(active, r)
		case r.Status.IsTerminal():
			history = append(history, r)
		}
	}
	return active, history
}
