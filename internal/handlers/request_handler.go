package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"roadside-rescue/internal/middleware"
	"roadside-rescue/internal/models"
	"roadside-rescue/internal/services"
	"roadside-rescue/internal/utils"
	"roadside-rescue/pkg/logger"
)

type RequestHandler struct {
	requestService services.RequestService
	logger         *logger.Logger
}

func NewRequestHandler(requestService services.RequestService, log *logger.Logger) *RequestHandler {
	return &RequestHandler{requestService: requestService, logger: log}
}

func (h *RequestHandler) Create(c *gin.Context) {
	var input models.CreateRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.ValidationErrorResponse(c, "Invalid request body")
		return
	}

	request, err := h.requestService.Create(c.Request.Context(), middleware.CurrentUser(c), &input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, request)
}

func (h *RequestHandler) ListMine(c *gin.Context) {
	requests, err := h.requestService.ListMine(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if requests == nil {
		requests = []models.HelpRequest{}
	}
	utils.SuccessResponse(c, requests)
}

func (h *RequestHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	request, err := h.requestService.Get(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, request)
}

type actionFunc func(ctx context.Context, user *models.User, id int64) (*models.ActionResult, error)

func (h *RequestHandler) action(fn actionFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		result, err := fn(c.Request.Context(), middleware.CurrentUser(c), id)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		utils.SuccessResponse(c, result)
	}
}

func (h *RequestHandler) Cancel() gin.HandlerFunc   { return h.action(h.requestService.Cancel) }
func (h *RequestHandler) Accept() gin.HandlerFunc   { return h.action(h.requestService.Accept) }
func (h *RequestHandler) Reject() gin.HandlerFunc   { return h.action(h.requestService.Reject) }
func (h *RequestHandler) Start() gin.HandlerFunc    { return h.action(h.requestService.Start) }
func (h *RequestHandler) Complete() gin.HandlerFunc { return h.action(h.requestService.Complete) }
