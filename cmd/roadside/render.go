package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"roadside-rescue/internal/client/mechanic"
	"roadside-rescue/internal/client/status"
	"roadside-rescue/internal/models"
)

type renderer struct {
	w     io.Writer
	color bool
}

func (r renderer) badge(s models.RequestStatus) string {
	b := status.For(string(s))
	if r.color {
		return b.Render()
	}
	return b.Plain()
}

func (r renderer) request(req models.HelpRequest, from *models.Coordinates) {
	fmt.Fprintf(r.w, "#%-5d %-20s %-6s %s\n", req.ID, r.badge(req.Status), req.VehicleType, req.CreatedAt.Local().Format(time.RFC822))
	fmt.Fprintf(r.w, "       %s\n", req.ProblemDesc)
	if from != nil {
		fmt.Fprintf(r.w, "       %s away\n", status.DistanceKM(*from, req.Location()))
	}
	if req.Mechanic != nil {
		fmt.Fprintf(r.w, "       Mechanic: %s (%s)\n", req.Mechanic.Name, req.Mechanic.Phone)
	}
	if req.Customer != nil {
		fmt.Fprintf(r.w, "       Customer: %s (%s)\n", req.Customer.Name, req.Customer.Phone)
	}
}

func (r renderer) section(title string) {
	fmt.Fprintf(r.w, "\n%s\n%s\n", title, strings.Repeat("-", len(title)))
}

// driverRequests prints the active and history tabs.
func (r renderer) driverRequests(active, history []models.HelpRequest) {
	r.section(fmt.Sprintf("Active requests (%d)", len(active)))
	if len(active) == 0 {
		fmt.Fprintln(r.w, "No active requests")
	}
	for _, req := range active {
		r.request(req, nil)
	}

	r.section(fmt.Sprintf("History (%d)", len(history)))
	if len(history) == 0 {
		fmt.Fprintln(r.w, "No past requests")
	}
	for _, req := range history {
		r.request(req, nil)
	}
}

func (r renderer) mechanicDashboard(s mechanic.Snapshot) {
	state := "OFFLINE"
	if s.Online {
		state = "ONLINE"
	}
	fmt.Fprintf(r.w, "\nStatus: %s\n", state)
	if s.Location != nil {
		fmt.Fprintf(r.w, "Location: %.4f, %.4f\n", s.Location.Lat, s.Location.Lng)
	}

	if s.ActiveJob != nil {
		r.section("Active job")
		r.request(*s.ActiveJob, s.Location)
		return
	}
	if !s.Online {
		fmt.Fprintln(r.w, "Go online to see nearby requests")
		return
	}
	r.section(fmt.Sprintf("Nearby requests (%d)", len(s.Nearby)))
	if len(s.Nearby) == 0 {
		fmt.Fprintln(r.w, "No requests nearby. Waiting...")
	}
	for _, req := range s.Nearby {
		r.request(req, s.Location)
	}
}
