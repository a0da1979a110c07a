package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pakodev28/foodgram-project-react/internal/mocks"
	"github.com/pakodev28/foodgram-project-react/internal/types"
	"github.com/stretchr/testify/assert"
)

func newAuthRouter(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/", handler, func(c *gin.Context) {
		userID, ok := c.Get(UserIDKey)
		if !ok {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, userID.(uuid.UUID).String())
	})
	return router
}

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.New()
	validator := new(mocks.MockTokenValidator)
	validator.On("ValidateToken", "good").Return(&types.TokenClaims{UserID: userID}, nil)
	validator.On("ValidateToken", "revoked").Return(nil, errors.New("token has been revoked"))

	router := newAuthRouter(AuthMiddleware(validator))

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{name: "bearer", header: "Bearer good", status: http.StatusOK, body: userID.String()},
		{name: "token scheme", header: "Token good", status: http.StatusOK, body: userID.String()},
		{name: "missing", header: "", status: http.StatusUnauthorized},
		{name: "bad format", header: "Basic good", status: http.StatusUnauthorized},
		{name: "no token", header: "Bearer", status: http.StatusUnauthorized},
		{name: "revoked", header: "Bearer revoked", status: http.StatusUnauthorized, body: `{"error":"token has been revoked"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	userID := uuid.New()
	validator := new(mocks.MockTokenValidator)
	validator.On("ValidateToken", "good").Return(&types.TokenClaims{UserID: userID}, nil)
	validator.On("ValidateToken", "bad").Return(nil, errors.New("invalid token"))

	router := newAuthRouter(OptionalAuth(validator))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anonymous", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, userID.String(), w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bad")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	validator.AssertExpectations(t)
}
