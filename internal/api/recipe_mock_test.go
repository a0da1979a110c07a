package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pakodev28/foodgram-project-react/internal/mocks"
	"github.com/pakodev28/foodgram-project-react/internal/service"
	"github.com/pakodev28/foodgram-project-react/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupMockRecipeRouter(t *testing.T) (*gin.Engine, *mocks.MockRecipeService, uuid.UUID) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	userID := uuid.New()
	validator := new(mocks.MockTokenValidator)
	validator.On("ValidateToken", "valid").Return(&types.TokenClaims{UserID: userID}, nil)

	recipes := new(mocks.MockRecipeService)
	router := gin.New()
	NewRecipeHandler(recipes, validator, 6, nil, nil).RegisterRoutes(router.Group("/api"))
	return router, recipes, userID
}

func TestDownloadShoppingCartWithMockService(t *testing.T) {
	router, recipes, userID := setupMockRecipeRouter(t)
	recipes.On("ShoppingList", mock.Anything, userID).Return([]service.ShoppingListItem{
		{Name: "sugar", MeasurementUnit: "g", Amount: 150},
		{Name: "eggs", MeasurementUnit: "pcs", Amount: 3},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/recipes/download_shopping_cart", nil)
	req.Header.Set("Authorization", "Token valid")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sugar, 150, g\neggs, 3, pcs\n", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "recipes.txt")
	recipes.AssertExpectations(t)
}

func TestRecipeHandlerServiceErrors(t *testing.T) {
	router, recipes, userID := setupMockRecipeRouter(t)
	missing := uuid.New()
	broken := uuid.New()
	recipes.On("GetRecipe", mock.Anything, missing).Return(nil, service.ErrNotFound)
	recipes.On("GetRecipe", mock.Anything, broken).Return(nil, errors.New("connection reset"))
	recipes.On("DeleteRecipe", mock.Anything, userID, missing).Return(service.ErrForbidden)
	recipes.On("ShoppingList", mock.Anything, userID).Return(nil, errors.New("connection reset"))

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"missing recipe", http.MethodGet, "/api/recipes/" + missing.String(), http.StatusNotFound},
		{"storage failure", http.MethodGet, "/api/recipes/" + broken.String(), http.StatusInternalServerError},
		{"not the author", http.MethodDelete, "/api/recipes/" + missing.String(), http.StatusForbidden},
		{"shopping list failure", http.MethodGet, "/api/recipes/download_shopping_cart", http.StatusInternalServerError},
		{"malformed id", http.MethodGet, "/api/recipes/not-a-uuid", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set("Authorization", "Token valid")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
	recipes.AssertNotCalled(t, "GetRecipe", mock.Anything, uuid.Nil)
}
