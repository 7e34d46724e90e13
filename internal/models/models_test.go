package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var allStatuses = []RequestStatus{
	RequestStatusPending,
	RequestStatusAccepted,
	RequestStatusEnRoute,
	RequestStatusCompleted,
	RequestStatusCancelled,
	RequestStatusRejected,
}

func TestCanTransitionOnlyAllowsLifecycleEdges(t *testing.T) {
	allowed := map[[2]RequestStatus]bool{
		{RequestStatusPending, RequestStatusAccepted}:  true,
		{RequestStatusPending, RequestStatusCancelled}: true,
		{RequestStatusAccepted, RequestStatusEnRoute}:  true,
		{RequestStatusAccepted, RequestStatusRejected}: true,
		{RequestStatusEnRoute, RequestStatusCompleted}: true,
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			assert.Equal(t, allowed[[2]RequestStatus{from, to}], CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestTerminalStatusesHaveNoExits(t *testing.T) {
	for _, s := range allStatuses {
		if !s.IsTerminal() {
			continue
		}
		for _, to := range allStatuses {
			assert.False(t, CanTransition(s, to))
		}
	}
}

func TestPartitionRequests(t *testing.T) {
	in := []HelpRequest{
		{ID: 1, Status: RequestStatusPending},
		{ID: 2, Status: RequestStatusCompleted},
		{ID: 3, Status: RequestStatusEnRoute},
		{ID: 4, Status: RequestStatusRejected},
		{ID: 5, Status: RequestStatusCancelled},
		{ID: 6, Status: RequestStatusAccepted},
		{ID: 7, Status: "Archived"},
	}

	active, history := PartitionRequests(in)

	ids := func(rs []HelpRequest) []int64 {
		var out []int64
		for _, r := range rs {
			out = append(out, r.ID)
		}
		return out
	}
	assert.Equal(t, []int64{1, 3, 6}, ids(active))
	assert.Equal(t, []int64{2, 4, 5}, ids(history))
}

func TestParseVehicleType(t *testing.T) {
	v, ok := ParseVehicleType(" Car ")
	assert.True(t, ok)
	assert.Equal(t, VehicleTypeCar, v)
	assert.Equal(t, "Car", v.Title())

	_, ok = ParseVehicleType("boat")
	assert.False(t, ok)
}

func TestParseUserRole(t *testing.T) {
	r, ok := ParseUserRole("MECHANIC")
	assert.True(t, ok)
	assert.Equal(t, UserRoleMechanic, r)

	_, ok = ParseUserRole("admin")
	assert.False(t, ok)
}
