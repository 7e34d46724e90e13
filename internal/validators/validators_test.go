package validators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roadside-rescue/internal/models"
)

func validRegister() models.RegisterInput {
	return models.RegisterInput{
		Name:     "  Asha Rawat ",
		Email:    "Asha@Example.com",
		Phone:    "(987) 654-3210",
		Password: "wrench123",
		Role:     "Mechanic",
	}
}

func TestValidateRegisterNormalizes(t *testing.T) {
	in := validRegister()
	require.Nil(t, ValidateRegister(&in))

	assert.Equal(t, "Asha Rawat", in.Name)
	assert.Equal(t, "asha@example.com", in.Email)
	assert.Equal(t, "9876543210", in.Phone)
	assert.Equal(t, "mechanic", in.Role)
}

func TestValidateRegisterRules(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.RegisterInput)
		field   string
		message string
	}{
		{"short name", func(in *models.RegisterInput) { in.Name = "  A  " }, "name", "Name must be at least 2 characters"},
		{"bad email", func(in *models.RegisterInput) { in.Email = "nope" }, "email", "Invalid email format"},
		{"few digits", func(in *models.RegisterInput) { in.Phone = "12-34" }, "phone", "Phone number must have at least 10 digits"},
		{"many digits", func(in *models.RegisterInput) { in.Phone = "1234567890123456" }, "phone", "Phone number too long"},
		{"short password", func(in *models.RegisterInput) { in.Password = "ab1" }, "password", "Password must be at least 8 characters"},
		{"letters only", func(in *models.RegisterInput) { in.Password = "abcdefghij" }, "password", "Password must contain both letters and numbers"},
		{"unknown role", func(in *models.RegisterInput) { in.Role = "admin" }, "role", `Role must be "driver" or "mechanic"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validRegister()
			tt.mutate(&in)

			errs := ValidateRegister(&in)
			require.NotEmpty(t, errs)
			assert.Equal(t, tt.field, errs[0].Field)
			assert.Equal(t, tt.message, errs.First())
		})
	}
}

func TestValidateCreateRequest(t *testing.T) {
	in := models.CreateRequestInput{VehicleType: "Truck", ProblemDesc: "  flat tyre  ", Lat: 30.3, Lng: 78.0}
	require.Nil(t, ValidateCreateRequest(&in))
	assert.Equal(t, "truck", in.VehicleType)
	assert.Equal(t, "flat tyre", in.ProblemDesc)
}

func TestValidateCreateRequestRules(t *testing.T) {
	tests := []struct {
		name    string
		in      models.CreateRequestInput
		message string
	}{
		{"vehicle", models.CreateRequestInput{VehicleType: "boat", ProblemDesc: "sinking", Lat: 1, Lng: 1}, "Vehicle type must be car, bike, or truck"},
		{"short problem", models.CreateRequestInput{VehicleType: "car", ProblemDesc: " ab  ", Lat: 1, Lng: 1}, "problem_desc must be at least 5 characters"},
		{"undetected", models.CreateRequestInput{VehicleType: "car", ProblemDesc: "battery dead", Lat: 0, Lng: 78}, "Location not detected"},
		{"latitude range", models.CreateRequestInput{VehicleType: "car", ProblemDesc: "battery dead", Lat: 91, Lng: 78}, "Invalid latitude"},
		{"longitude range", models.CreateRequestInput{VehicleType: "car", ProblemDesc: "battery dead", Lat: 30, Lng: -181}, "Invalid longitude"},
		{"polar latitude", models.CreateRequestInput{VehicleType: "car", ProblemDesc: "battery dead", Lat: 87.5, Lng: 10}, "Latitude outside the supported range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.in
			errs := ValidateCreateRequest(&in)
			require.NotEmpty(t, errs)
			assert.Equal(t, tt.message, errs.First())
		})
	}
}

func TestValidateCoordinates(t *testing.T) {
	assert.Nil(t, ValidateCoordinates(30.3165, 78.0322))
	assert.Len(t, ValidateCoordinates(-91, 200), 2)
}

func TestValidateCoordinatesRejectsNonFinite(t *testing.T) {
	for _, tc := range [][2]float64{
		{math.NaN(), 78},
		{30, math.NaN()},
		{math.Inf(1), 78},
		{30, math.Inf(-1)},
	} {
		assert.NotEmpty(t, ValidateCoordinates(tc[0], tc[1]), "%v", tc)
	}
}

func TestValidateCoordinatesRejectsPolarBand(t *testing.T) {
	errs := ValidateCoordinates(-86, 10)
	require.Len(t, errs, 1)
	assert.Equal(t, "Latitude outside the supported range", errs.First())
	assert.Nil(t, ValidateCoordinates(85, 10))
}
