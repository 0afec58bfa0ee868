package handler

import (
	"context"
	"errors"

	"github.com/ejtx16/shrink-iq-web-app/internal/domain"
	"github.com/ejtx16/shrink-iq-web-app/internal/logger"
	"github.com/ejtx16/shrink-iq-web-app/internal/middleware"
	"github.com/ejtx16/shrink-iq-web-app/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AnalyticsService interface {
	Dashboard(ctx context.Context, ownerID uuid.UUID) (*domain.DashboardReport, error)
	LinkReport(ctx context.Context, id, ownerID uuid.UUID) (*domain.LinkReport, error)
}

type AnalyticsHandler struct {
	service AnalyticsService
}

func NewAnalyticsHandler(service AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	report, err := h.service.Dashboard(c.Request.Context(), userID)
	if err != nil {
		logger.FromContext(c.Request.Context()).Error("Failed to build dashboard", "error", err)
		response.InternalServerError(c, "Failed to load dashboard analytics")
		return
	}

	response.OK(c, "Dashboard analytics retrieved successfully", report)
}

func (h *AnalyticsHandler) LinkReport(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid URL id")
		return
	}

	report, err := h.service.LinkReport(c.Request.Context(), id, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			response.NotFound(c, "URL not found")
			return
		}
		logger.FromContext(c.Request.Context()).Error("Failed to build link report", "error", err)
		response.InternalServerError(c, "Failed to load URL analytics")
		return
	}

	response.OK(c, "URL analytics retrieved successfully", report)
}
