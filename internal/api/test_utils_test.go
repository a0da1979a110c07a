package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pakodev28/foodgram-project-react/internal/models"
	"github.com/pakodev28/foodgram-project-react/internal/service"
	"github.com/pakodev28/foodgram-project-react/internal/testhelpers"
	"gorm.io/gorm"
)

// testEnv is a router wired to real services over an in-memory database
type testEnv struct {
	Router *gin.Engine
	DB     *gorm.DB
	Auth   *service.AuthService
}

func setupTestRouter(t *testing.T) *testEnv {
	return setupTestRouterWithDenylist(t, nil)
}

func setupTestRouterWithDenylist(t *testing.T, denylist service.TokenDenylist) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupTestDatabase(t)
	auth := service.NewAuthService(db, "test-secret", time.Hour, denylist)
	images := service.NewImageService(service.NewLocalImageStore(t.TempDir(), "/media"))

	router := gin.New()
	RegisterRoutes(router, Dependencies{
		DB:          db,
		Auth:        auth,
		Users:       service.NewUserService(db),
		Recipes:     service.NewRecipeService(db, images),
		Tags:        service.NewTagService(db),
		Ingredients: service.NewIngredientService(db),
		PageSize:    6,
	})
	return &testEnv{Router: router, DB: db, Auth: auth}
}

// CreateTestUserAndToken stores a user and returns it with a signed token
func (e *testEnv) CreateTestUserAndToken(t *testing.T, name string) (*models.User, string) {
	t.Helper()
	return testhelpers.CreateTestUserAndToken(t, e.DB, e.Auth, name)
}

// Do sends a JSON request, authenticated when token is not empty
func (e *testEnv) Do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

func decodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
	return out
}
