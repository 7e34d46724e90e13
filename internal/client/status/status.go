package status

import (
	"fmt"

	"roadside-rescue/internal/models"
	"roadside-rescue/internal/utils"
)

type Color string

const (
	Yellow Color = "yellow"
	Blue   Color = "blue"
	Purple Color = "purple"
	Green  Color = "green"
	Red    Color = "red"
	Gray   Color = "gray"
)

var ansi = map[Color]string{
	Yellow: "\033[33m",
	Blue:   "\033[34m",
	Purple: "\033[35m",
	Green:  "\033[32m",
	Red:    "\033[31m",
	Gray:   "\033[90m",
}

const (
	ansiReset = "\033[0m"
	ansiBlink = "\033[5m"
)

// Badge is how a request status is shown.
type Badge struct {
	Label string
	Icon  string
	Color Color
	Pulse bool
}

var badges = map[string]Badge{
	string(models.RequestStatusPending):   {Icon: "⏳", Color: Yellow, Pulse: true},
	string(models.RequestStatusAccepted):  {Icon: "✅", Color: Blue},
	string(models.RequestStatusEnRoute):   {Icon: "🚗", Color: Purple, Pulse: true},
	string(models.RequestStatusCompleted): {Icon: "🎉", Color: Green},
	string(models.RequestStatusCancelled): {Icon: "❌", Color: Red},
	string(models.RequestStatusRejected):  {Icon: "🚫", Color: Red},
}

// For never fails: unknown statuses get a neutral gray badge.
func For(s string) Badge {
	b, ok := badges[s]
	if !ok {
		b = Badge{Icon: "❓", Color: Gray}
	}
	b.Label = s
	if b.Label == "" {
		b.Label = "Unknown"
	}
	return b
}

// Render returns the badge for a colour terminal.
func (b Badge) Render() string {
	prefix := ansi[b.Color]
	if b.Pulse {
		prefix += ansiBlink
	}
	return prefix + b.Plain() + ansiReset
}

// Plain is the badge without escape codes.
func (b Badge) Plain() string {
	return b.Icon + " " + b.Label
}

// DistanceKM formats the great-circle distance between two points, e.g. "3.4 km".
func DistanceKM(a, b models.Coordinates) string {
	return fmt.Sprintf("%.1f km", utils.CalculateDistance(a.Lat, a.Lng, b.Lat, b.Lng))
}
