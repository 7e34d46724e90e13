package validators

import (
	"math"
	"strings"

	"roadside-rescue/internal/models"
	"roadside-rescue/internal/utils"
)

// NormalizeRegister trims and canonicalises a registration after it validated.
func NormalizeRegister(in *models.RegisterInput) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = utils.CleanPhone(in.Phone)
	role, _ := models.ParseUserRole(in.Role)
	in.Role = string(role)
}

func ValidateRegister(in *models.RegisterInput) ValidationErrors {
	if errs := ValidateStruct(in); errs != nil {
		return errs
	}
	NormalizeRegister(in)
	return nil
}

// ValidateCreateRequest checks a new help request and lower-cases its vehicle type.
func ValidateCreateRequest(in *models.CreateRequestInput) ValidationErrors {
	in.ProblemDesc = strings.TrimSpace(in.ProblemDesc)
	if errs := ValidateStruct(in); errs != nil {
		return errs
	}
	vt, _ := models.ParseVehicleType(in.VehicleType)
	in.VehicleType = string(vt)
	return nil
}

// ValidateCoordinates checks query-string coordinates. NaN and infinities
// fail every range comparison, so they are rejected explicitly.
func ValidateCoordinates(lat, lng float64) ValidationErrors {
	var errs ValidationErrors
	switch {
	case !finite(lat) || lat < -90 || lat > 90:
		errs = append(errs, ValidationError{Field: "lat", Tag: "latitude", Message: "Invalid latitude"})
	case math.Abs(lat) > utils.MaxGeoLatitude:
		errs = append(errs, ValidationError{Field: "lat", Tag: "geo_latitude", Message: utils.ErrLatitudeOutOfRange})
	}
	if !finite(lng) || lng < -180 || lng > 180 {
		errs = append(errs, ValidationError{Field: "lng", Tag: "longitude", Message: "Invalid longitude"})
	}
	return errs
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
