package validators

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"roadside-rescue/internal/models"
	"roadside-rescue/internal/utils"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	validate.RegisterValidation("person_name", validatePersonName)
	validate.RegisterValidation("phone_digits", validatePhoneDigits)
	validate.RegisterValidation("letters_digits", validateLettersDigits)
	validate.RegisterValidation("user_role", validateUserRole)
	validate.RegisterValidation("vehicle_type", validateVehicleType)
	validate.RegisterValidation("detected", validateDetected)
	validate.RegisterValidation("geo_latitude", validateGeoLatitude)
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	messages := make([]string, 0, len(v))
	for _, err := range v {
		messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(messages, "; ")
}

// First is the message shown to users when only one line fits.
func (v ValidationErrors) First() string {
	if len(v) == 0 {
		return ""
	}
	return v[0].Message
}

// ValidateStruct validates a struct and returns detailed errors. The result
// is nil when the struct is valid.
func ValidateStruct(s interface{}) ValidationErrors {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return ValidationErrors{{Field: "body", Tag: "invalid", Message: err.Error()}}
	}

	out := make(ValidationErrors, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: getErrorMessage(fe),
		})
	}
	return out
}

func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", err.Field())
	case "email":
		return "Invalid email format"
	case "min":
		if err.Field() == "password" {
			return "Password must be at least 8 characters"
		}
		return fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
	case "person_name":
		return "Name must be at least 2 characters"
	case "phone_digits":
		if utils.PhoneDigits(err.Value().(string)) > 15 {
			return "Phone number too long"
		}
		return "Phone number must have at least 10 digits"
	case "letters_digits":
		return "Password must contain both letters and numbers"
	case "user_role":
		return `Role must be "driver" or "mechanic"`
	case "vehicle_type":
		return "Vehicle type must be car, bike, or truck"
	case "latitude":
		return "Invalid latitude"
	case "longitude":
		return "Invalid longitude"
	case "detected":
		return "Location not detected"
	case "geo_latitude":
		return utils.ErrLatitudeOutOfRange
	default:
		return fmt.Sprintf("Validation failed for %s", err.Field())
	}
}

func validatePersonName(fl validator.FieldLevel) bool {
	n := len([]rune(strings.TrimSpace(fl.Field().String())))
	return n >= 2 && n <= 100
}

func validatePhoneDigits(fl validator.FieldLevel) bool {
	n := utils.PhoneDigits(fl.Field().String())
	return n >= 10 && n <= 15
}

func validateLettersDigits(fl validator.FieldLevel) bool {
	var hasLetter, hasDigit bool
	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}

func validateUserRole(fl validator.FieldLevel) bool {
	_, ok := models.ParseUserRole(fl.Field().String())
	return ok
}

func validateVehicleType(fl validator.FieldLevel) bool {
	_, ok := models.ParseVehicleType(fl.Field().String())
	return ok
}

// validateDetected rejects the 0.0 a browser reports when it has no fix.
func validateDetected(fl validator.FieldLevel) bool {
	return fl.Field().Float() != 0
}

func validateGeoLatitude(fl validator.FieldLevel) bool {
	return math.Abs(fl.Field().Float()) <= utils.MaxGeoLatitude
}
