package handlers

import (
	"github.com/gin-gonic/gin"

	"roadside-rescue/internal/models"
	"roadside-rescue/internal/services"
	"roadside-rescue/internal/utils"
	"roadside-rescue/pkg/logger"
)

type AuthHandler struct {
	authService services.AuthService
	logger      *logger.Logger
}

func NewAuthHandler(authService services.AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: log}
}

// Register creates a driver or mechanic account.
func (h *AuthHandler) Register(c *gin.Context) {
	var input models.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.ValidationErrorResponse(c, "Invalid request body")
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, user.ToResponse())
}

// Login takes OAuth2 password-style form fields. The username is the email.
func (h *AuthHandler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	if username == "" || password == "" {
		utils.ValidationErrorResponse(c, "username and password are required")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), username, password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, result)
}
