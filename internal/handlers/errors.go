package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"roadside-rescue/internal/services"
	"roadside-rescue/internal/utils"
	"roadside-rescue/pkg/logger"
)

var statusByKind = map[error]int{
	services.ErrNotFound:     http.StatusNotFound,
	services.ErrForbidden:    http.StatusForbidden,
	services.ErrConflict:     http.StatusConflict,
	services.ErrInvalidState: http.StatusBadRequest,
	services.ErrValidation:   http.StatusUnprocessableEntity,
	services.ErrUnauthorized: http.StatusUnauthorized,
}

// respondError writes a service error as {"detail": ...}. Anything that is
// not a *services.Error is logged and reported as a 500.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	var se *services.Error
	if errors.As(err, &se) {
		status, ok := statusByKind[se.Kind]
		if !ok {
			status = http.StatusBadRequest
		}
		if status == http.StatusUnauthorized {
			utils.UnauthorizedResponse(c, se.Detail)
			return
		}
		utils.ErrorResponse(c, status, se.Detail)
		return
	}

	log.WithContext(c.Request.Context()).
		WithError(err).
		WithField("path", c.FullPath()).
		Error("Request failed")
	utils.InternalServerErrorResponse(c)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		utils.ValidationErrorResponse(c, "Invalid request id")
		return 0, false
	}
	return id, true
}

func queryCoordinates(c *gin.Context) (float64, float64, bool) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		utils.ValidationErrorResponse(c, "Invalid latitude")
		return 0, 0, false
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		utils.ValidationErrorResponse(c, "Invalid longitude")
		return 0, 0, false
	}
	return lat, lng, true
}
