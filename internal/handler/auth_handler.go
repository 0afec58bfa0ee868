package handler

import (
	"context"
	"errors"

	"github.com/ejtx16/shrink-iq-web-app/internal/domain"
	"github.com/ejtx16/shrink-iq-web-app/internal/logger"
	"github.com/ejtx16/shrink-iq-web-app/internal/middleware"
	"github.com/ejtx16/shrink-iq-web-app/pkg/response"
	"github.com/ejtx16/shrink-iq-web-app/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthService interface {
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.AuthResult, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResult, error)
	Profile(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

type AuthHandler struct {
	service AuthService
}

func NewAuthHandler(service AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	if errs := validator.Validate(req); len(errs) > 0 {
		response.ValidationErrors(c, errs)
		return
	}

	result, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			response.BadRequest(c, domain.ErrEmailTaken.Error())
			return
		}
		logger.FromContext(c.Request.Context()).Error("Failed to register user", "error", err)
		response.InternalServerError(c, "Failed to register user")
		return
	}

	response.Created(c, "User registered successfully", result)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	if errs := validator.Validate(req); len(errs) > 0 {
		response.ValidationErrors(c, errs)
		return
	}

	result, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			response.Unauthorized(c, domain.ErrInvalidCredentials.Error())
			return
		}
		logger.FromContext(c.Request.Context()).Error("Failed to log in user", "error", err)
		response.InternalServerError(c, "Failed to log in")
		return
	}

	response.OK(c, "Login successful", result)
}

func (h *AuthHandler) Profile(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	user, err := h.service.Profile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			response.NotFound(c, "User not found")
			return
		}
		logger.FromContext(c.Request.Context()).Error("Failed to load profile", "error", err)
		response.InternalServerError(c, "Failed to load profile")
		return
	}

	response.OK(c, "Profile retrieved successfully", user)
}
