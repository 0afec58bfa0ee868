package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ejtx16/shrink-iq-web-app/internal/domain"
	"github.com/ejtx16/shrink-iq-web-app/tests/mocks"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupAuthRouter(svc *mocks.MockAuthService, userID *uuid.UUID) *gin.Engine {
	h := NewAuthHandler(svc)

	router := gin.New()
	api := router.Group("/api/auth")
	api.POST("/register", h.Register)
	api.POST("/login", h.Login)

	profile := api.Group("")
	if userID != nil {
		profile.Use(asUser(*userID))
	}
	profile.GET("/profile", h.Profile)
	return router
}

func TestRegisterHandler_Success(t *testing.T) {
	svc := new(mocks.MockAuthService)
	router := setupAuthRouter(svc, nil)

	result := &domain.AuthResult{
		Token: "token-123",
		User:  &domain.User{ID: uuid.New(), Email: "user@example.com"},
	}

	svc.On("Register", mock.Anything, mock.MatchedBy(func(req *domain.RegisterRequest) bool {
		return req.Email == "user@example.com"
	})).Return(result, nil).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"email":"user@example.com","password":"hunter22"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decodeEnvelope(t, w)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "token-123", data["token"])
	// The password hash never leaves the server.
	assert.NotContains(t, w.Body.String(), "passwordHash")
	svc.AssertExpectations(t)
}

func TestRegisterHandler_ValidationFailure(t *testing.T) {
	svc := new(mocks.MockAuthService)
	router := setupAuthRouter(svc, nil)

	tests := []struct {
		name string
		body string
	}{
		{"missing email", `{"password":"hunter22"}`},
		{"bad email", `{"email":"nope","password":"hunter22"}`},
		{"short password", `{"email":"user@example.com","password":"abc"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			svc.AssertNotCalled(t, "Register")
		})
	}
}

func TestRegisterHandler_EmailTaken(t *testing.T) {
	svc := new(mocks.MockAuthService)
	router := setupAuthRouter(svc, nil)

	svc.On("Register", mock.Anything, mock.AnythingOfType("*domain.RegisterRequest")).
		Return(nil, domain.ErrEmailTaken).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"email":"user@example.com","password":"hunter22"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginHandler_Success(t *testing.T) {
	svc := new(mocks.MockAuthService)
	router := setupAuthRouter(svc, nil)

	result := &domain.AuthResult{
		Token: "token-123",
		User:  &domain.User{ID: uuid.New(), Email: "user@example.com"},
	}

	svc.On("Login", mock.Anything, mock.AnythingOfType("*domain.LoginRequest")).Return(result, nil).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"user@example.com","password":"hunter22"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginHandler_InvalidCredentials(t *testing.T) {
	svc := new(mocks.MockAuthService)
	router := setupAuthRouter(svc, nil)

	svc.On("Login", mock.Anything, mock.AnythingOfType("*domain.LoginRequest")).
		Return(nil, domain.ErrInvalidCredentials).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"user@example.com","password":"wrong1"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProfileHandler_Success(t *testing.T) {
	svc := new(mocks.MockAuthService)
	userID := uuid.New()
	router := setupAuthRouter(svc, &userID)

	svc.On("Profile", mock.Anything, userID).
		Return(&domain.User{ID: userID, Email: "user@example.com"}, nil).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeEnvelope(t, w)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "user@example.com", data["email"])
}

func TestProfileHandler_RequiresAuth(t *testing.T) {
	svc := new(mocks.MockAuthService)
	router := setupAuthRouter(svc, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	svc.AssertNotCalled(t, "Profile")
}
