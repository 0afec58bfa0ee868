package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ejtx16/shrink-iq-web-app/internal/domain"
	"github.com/ejtx16/shrink-iq-web-app/internal/logger"
	"github.com/ejtx16/shrink-iq-web-app/internal/middleware"
	"github.com/ejtx16/shrink-iq-web-app/pkg/detector"
	"github.com/ejtx16/shrink-iq-web-app/pkg/response"
	"github.com/ejtx16/shrink-iq-web-app/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type LinkService interface {
	ShortenLink(ctx context.Context, req *domain.CreateLinkRequest, ownerID *uuid.UUID) (*domain.LinkSummary, error)
	Resolve(ctx context.Context, code string) (*domain.Link, error)
	RecordClick(ctx context.Context, id uuid.UUID, click *domain.Click) error
	ListLinks(ctx context.Context, ownerID uuid.UUID, page, limit int) (*domain.LinkPage, error)
	GetLink(ctx context.Context, id, ownerID uuid.UUID) (*domain.LinkDetail, error)
	DeleteLink(ctx context.Context, id, ownerID uuid.UUID) error
}

type LinkHandler struct {
	service LinkService
}

func NewLinkHandler(service LinkService) *LinkHandler {
	return &LinkHandler{service: service}
}

// Shorten creates a short link. Anonymous submissions are allowed; when a
// valid token accompanied the request the link is owned by that user.
func (h *LinkHandler) Shorten(c *gin.Context) {
	var req domain.CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	if errs := validator.Validate(req); len(errs) > 0 {
		response.ValidationErrors(c, errs)
		return
	}

	var ownerID *uuid.UUID
	if userID, ok := middleware.UserID(c); ok {
		ownerID = &userID
	}

	link, err := h.service.ShortenLink(c.Request.Context(), &req, ownerID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidSlug):
			response.BadRequest(c, domain.ErrInvalidSlug.Error())
		case errors.Is(err, domain.ErrSlugTaken):
			response.Conflict(c, domain.ErrSlugTaken.Error())
		default:
			logger.FromContext(c.Request.Context()).Error("Failed to shorten URL", "error", err)
			response.InternalServerError(c, "Failed to shorten URL")
		}
		return
	}

	response.Created(c, "URL shortened successfully", link)
}

// Redirect resolves a public code and sends the visitor to the destination.
// The click append runs before the response but its failure never fails the
// redirect: navigation is the contract, analytics are best-effort telemetry.
func (h *LinkHandler) Redirect(c *gin.Context) {
	code := c.Param("shortCode")

	link, err := h.service.Resolve(c.Request.Context(), code)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			response.NotFound(c, "Short URL not found")
		case errors.Is(err, domain.ErrExpired):
			response.Gone(c, "Short URL has expired")
		default:
			logger.FromContext(c.Request.Context()).Error("Failed to resolve short code", "error", err)
			response.InternalServerError(c, "Failed to resolve short URL")
		}
		return
	}

	click := buildClick(c)
	if err := h.service.RecordClick(c.Request.Context(), link.ID, click); err != nil {
		logger.FromContext(c.Request.Context()).Warn("Failed to record click",
			"short_code", link.ShortCode,
			"error", err,
		)
	}

	c.Redirect(http.StatusFound, link.OriginalURL)
}

func buildClick(c *gin.Context) *domain.Click {
	userAgent := c.Request.UserAgent()
	if userAgent == "" {
		userAgent = detector.UnknownUserAgent
	}

	return &domain.Click{
		Timestamp: time.Now(),
		IP: detector.GetClientIP(
			c.Request.RemoteAddr,
			c.GetHeader("X-Forwarded-For"),
			c.GetHeader("X-Real-IP"),
		),
		UserAgent: userAgent,
		Referrer:  c.Request.Referer(),
	}
}

func (h *LinkHandler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	page := 1
	if p, err := strconv.Atoi(c.Query("page")); err == nil && p > 0 {
		page = p
	}

	limit := 10
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}

	links, err := h.service.ListLinks(c.Request.Context(), userID, page, limit)
	if err != nil {
		logger.FromContext(c.Request.Context()).Error("Failed to list links", "error", err)
		response.InternalServerError(c, "Failed to list URLs")
		return
	}

	response.OK(c, "URLs retrieved successfully", links)
}

func (h *LinkHandler) Get(c *gin.Context) {
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

	link, err := h.service.GetLink(c.Request.Context(), id, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			response.NotFound(c, "URL not found")
			return
		}
		logger.FromContext(c.Request.Context()).Error("Failed to get link", "error", err)
		response.InternalServerError(c, "Failed to get URL")
		return
	}

	response.OK(c, "URL retrieved successfully", link)
}

func (h *LinkHandler) Delete(c *gin.Context) {
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

	if err := h.service.DeleteLink(c.Request.Context(), id, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			response.NotFound(c, "URL not found")
			return
		}
		logger.FromContext(c.Request.Context()).Error("Failed to delete link", "error", err)
		response.InternalServerError(c, "Failed to delete URL")
		return
	}

	response.OK(c, "URL deleted successfully", nil)
}
