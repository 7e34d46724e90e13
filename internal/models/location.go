package models

import (
	"fmt"
	"math"
)

// TestLocation is the manual fallback used when no device position is available
// (Dehradun city centre).
var TestLocation = Coordinates{Lat: 30.3165, Lng: 78.0322}

type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// Valid rejects NaN, which passes every range comparison.
func (c Coordinates) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.4f, %.4f", c.Lat, c.Lng)
}

// Availability is what /mechanic/availability reports back.
type Availability struct {
	IsAvailable bool `json:"is_available"`
}
