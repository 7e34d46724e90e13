package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the error envelope every endpoint uses. Clients read "detail".
type ErrorBody struct {
	Detail string `json:"detail"`
}

type MessageBody struct {
	Message string `json:"message"`
}

func ErrorResponse(c *gin.Context, statusCode int, detail string) {
	c.AbortWithStatusJSON(statusCode, ErrorBody{Detail: detail})
}

func BadRequestResponse(c *gin.Context, detail string) {
	ErrorResponse(c, http.StatusBadRequest, detail)
}

func UnauthorizedResponse(c *gin.Context, detail string) {
	c.Header("WWW-Authenticate", "Bearer")
	ErrorResponse(c, http.StatusUnauthorized, detail)
}

func ForbiddenResponse(c *gin.Context, detail string) {
	ErrorResponse(c, http.StatusForbidden, detail)
}

func NotFoundResponse(c *gin.Context, resource string) {
	ErrorResponse(c, http.StatusNotFound, resource+" not found")
}

func ConflictResponse(c *gin.Context, detail string) {
	ErrorResponse(c, http.StatusConflict, detail)
}

func ValidationErrorResponse(c *gin.Context, detail string) {
	ErrorResponse(c, http.StatusUnprocessableEntity, detail)
}

func TooManyRequestsResponse(c *gin.Context) {
	ErrorResponse(c, http.StatusTooManyRequests, ErrRateLimited)
}

func InternalServerErrorResponse(c *gin.Context) {
	ErrorResponse(c, http.StatusInternalServerError, ErrInternalServer)
}

func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}
