package status

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"roadside-rescue/internal/models"
)

func TestFor(t *testing.T) {
	tests := []struct {
		status string
		icon   string
		color  Color
		pulse  bool
	}{
		{"Pending", "⏳", Yellow, true},
		{"Accepted", "✅", Blue, false},
		{"En Route", "🚗", Purple, true},
		{"Completed", "🎉", Green, false},
		{"Cancelled", "❌", Red, false},
		{"Rejected", "🚫", Red, false},
		{"Teleported", "❓", Gray, false},
		{"", "❓", Gray, false},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			b := For(tt.status)
			assert.Equal(t, tt.icon, b.Icon)
			assert.Equal(t, tt.color, b.Color)
			assert.Equal(t, tt.pulse, b.Pulse)
		})
	}
	assert.Equal(t, "Unknown", For("").Label)
}

func TestRender(t *testing.T) {
	r := For("Pending").Render()
	assert.True(t, strings.HasPrefix(r, "\033[33m\033[5m"))
	assert.Contains(t, r, "⏳ Pending")
	assert.True(t, strings.HasSuffix(r, ansiReset))

	assert.Equal(t, "🎉 Completed", For("Completed").Plain())
}

func TestDistanceKM(t *testing.T) {
	a := models.Coordinates{Lat: 30.3165, Lng: 78.0322}
	assert.Equal(t, "0.0 km", DistanceKM(a, a))
	// Dehradun to Rishikesh is roughly 34 km as the crow flies
	d := DistanceKM(a, models.Coordinates{Lat: 30.0869, Lng: 78.2676})
	assert.True(t, strings.HasPrefix(d, "3"), d)
	assert.True(t, strings.HasSuffix(d, " km"))
}
