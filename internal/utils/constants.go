package utils

import "time"

const (
	AppName    = "RoadsideRescue"
	AppVersion = "1.0.0"

	EarthRadiusKM = 6371.0

	// Authentication
	JWTAccessTokenTTL = 24 * time.Hour
	PasswordMinLength = 8
	PasswordMaxLength = 100

	// Help requests
	ProblemDescMinLength  = 5
	ProblemDescMaxLength  = 500
	DefaultNearbyRadiusKM = 50.0

	// Redis GEOADD and GEOSEARCH reject latitudes beyond this.
	MaxGeoLatitude = 85.05112878

	// Rate limiting
	RegisterRateLimit  = 5
	RegisterRateWindow = time.Minute

	// Polling
	DriverPollInterval   = 5 * time.Second
	MechanicPollInterval = 5 * time.Second
	LocationPingInterval = 10 * time.Second
)

const (
	ErrInternalServer     = "Internal server error"
	ErrRateLimited        = "Rate limit exceeded. Try again later."
	ErrInvalidCredentials = "incorrect email or password"
	ErrEmailRegistered    = "Email already registered"
	ErrInvalidTokenDetail = "Invalid token"
	ErrUserNotFound       = "user not found"
	ErrNotAuthorized      = "Not authorized"
	ErrAlreadyTaken       = "Request already taken"
	ErrNotAssigned        = "This job is not assigned to you"
	ErrCannotCancel       = "Cannot cancel a request that is already processed"
	ErrActiveJobExists    = "You already have an active job"
	ErrMissingBearerToken = "Not authenticated"
	ErrNotCancelOwner     = "Not authorized to cancel this request"
	ErrLatitudeOutOfRange = "Latitude outside the supported range"
)

// Resource names for not-found details, e.g. "Request not found".
const (
	ResourceRequest = "Request"
)
