package handlers

import (
	"github.com/gin-gonic/gin"

	"roadside-rescue/internal/middleware"
	"roadside-rescue/internal/models"
	"roadside-rescue/internal/services"
	"roadside-rescue/internal/utils"
	"roadside-rescue/pkg/logger"
)

type MechanicHandler struct {
	mechanicService services.MechanicService
	requestService  services.RequestService
	logger          *logger.Logger
}

func NewMechanicHandler(mechanicService services.MechanicService, requestService services.RequestService, log *logger.Logger) *MechanicHandler {
	return &MechanicHandler{
		mechanicService: mechanicService,
		requestService:  requestService,
		logger:          log,
	}
}

// ToggleAvailability flips the mechanic online or offline at ?lat&lng.
func (h *MechanicHandler) ToggleAvailability(c *gin.Context) {
	lat, lng, ok := queryCoordinates(c)
	if !ok {
		return
	}
	availability, err := h.mechanicService.ToggleAvailability(c.Request.Context(), middleware.CurrentUser(c), lat, lng)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, availability)
}

func (h *MechanicHandler) UpdateLocation(c *gin.Context) {
	lat, lng, ok := queryCoordinates(c)
	if !ok {
		return
	}
	if err := h.mechanicService.UpdateLocation(c.Request.Context(), middleware.CurrentUser(c), lat, lng); err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"status": "updated"})
}

// Nearby lists pending requests around the mechanic's stored location.
func (h *MechanicHandler) Nearby(c *gin.Context) {
	requests, err := h.requestService.Nearby(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if requests == nil {
		requests = []models.HelpRequest{}
	}
	utils.SuccessResponse(c, requests)
}

// ActiveJob writes the current job or a JSON null.
func (h *MechanicHandler) ActiveJob(c *gin.Context) {
	job, err := h.requestService.ActiveJob(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if job == nil {
		utils.SuccessResponse(c, nil)
		return
	}
	utils.SuccessResponse(c, job)
}
