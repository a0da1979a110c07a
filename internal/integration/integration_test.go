package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pakodev28/foodgram-project-react/config"
	"github.com/pakodev28/foodgram-project-react/internal/database"
	"github.com/pakodev28/foodgram-project-react/internal/models"
	"github.com/pakodev28/foodgram-project-react/internal/server"
	"github.com/pakodev28/foodgram-project-react/internal/testhelpers"
	"github.com/pakodev28/foodgram-project-react/internal/types"
)

type stack struct {
	handler http.Handler
	db      *gorm.DB
}

// setupStack runs the whole server against postgres and redis containers
func setupStack(t *testing.T) *stack {
	t.Helper()
	gin.SetMode(gin.TestMode)

	pg := testhelpers.StartPostgres(t)
	redisClient := testhelpers.SetupRedis(t)

	cfg := &config.Config{
		ServerHost:        "127.0.0.1",
		ServerPort:        "0",
		DBDriver:          "postgres",
		DBHost:            pg.Host,
		DBPort:            pg.Port,
		DBUser:            pg.User,
		DBPassword:        pg.Password,
		DBName:            pg.Name,
		DBSSLMode:         "disable",
		MigrationsDir:     "../../migrations",
		RedisURL:          "redis://" + redisClient.Options().Addr,
		JWTSecret:         "integration-secret",
		TokenTTL:          time.Hour,
		MediaDir:          t.TempDir(),
		MediaURL:          "/media",
		PageSize:          6,
		RecipeCreateLimit: 3,
		RecipeUpdateLimit: 10,
	}

	db, err := database.Open(cfg, logger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db, cfg.MigrationsDir))

	srv, err := server.New(context.Background(), cfg, db)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})

	return &stack{handler: srv.Handler(), db: db}
}

func (s *stack) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (s *stack) register(t *testing.T, name string) (types.UserResponse, string) {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/users", "", map[string]string{
		"email":      name + "@example.com",
		"username":   name,
		"first_name": name,
		"last_name":  "Integration",
		"password":   "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	user := decode[types.UserResponse](t, w)

	w = s.do(t, http.MethodPost, "/api/auth/token/login", "", map[string]string{
		"email":    name + "@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return user, decode[types.TokenResponse](t, w).AuthToken
}

func TestFoodgramFlow(t *testing.T) {
	s := setupStack(t)

	chef, chefToken := s.register(t, "chef")
	_, fanToken := s.register(t, "fan")

	// catalog writes are admin only
	w := s.do(t, http.MethodPost, "/api/tags", chefToken, map[string]string{"name": "Breakfast", "slug": "breakfast", "color": "#E26C2D"})
	require.Equal(t, http.StatusForbidden, w.Code)
	require.NoError(t, s.db.Model(&models.User{}).Where("id = ?", chef.ID).Update("is_admin", true).Error)

	w = s.do(t, http.MethodPost, "/api/tags", chefToken, map[string]string{"name": "Breakfast", "slug": "breakfast", "color": "#E26C2D"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	tag := decode[types.TagResponse](t, w)

	w = s.do(t, http.MethodPost, "/api/ingredients", chefToken, map[string]string{"name": "Flour", "measurement_unit": "g"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	flour := decode[models.Ingredient](t, w)

	w = s.do(t, http.MethodGet, "/api/ingredients?name=FLO", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Ingredient](t, w), 1)

	recipeBody := func(name string, amount int) map[string]interface{} {
		return map[string]interface{}{
			"name":         name,
			"text":         "Bake it.",
			"image":        testhelpers.TestPNG,
			"cooking_time": 45,
			"tags":         []string{tag.ID.String()},
			"ingredients":  []map[string]interface{}{{"id": flour.ID, "amount": amount}},
		}
	}

	w = s.do(t, http.MethodPost, "/api/recipes", chefToken, recipeBody("Bread", 500))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	bread := decode[types.RecipeResponse](t, w)
	w = s.do(t, http.MethodPost, "/api/recipes", chefToken, recipeBody("Pie", 250))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	pie := decode[types.RecipeResponse](t, w)

	w = s.do(t, http.MethodGet, "/api/rate-limits/recipe-creation", chefToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode[map[string]interface{}](t, w)["remaining"])

	// subscriptions
	w = s.do(t, http.MethodPost, fmt.Sprintf("/api/users/%s/subscribe", chef.ID), fanToken, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sub := decode[types.SubscriptionResponse](t, w)
	assert.EqualValues(t, 2, sub.RecipesCount)
	assert.True(t, sub.IsSubscribed)

	w = s.do(t, http.MethodGet, "/api/users/subscriptions?recipes_limit=1", fanToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	subs := decode[types.Page[types.SubscriptionResponse]](t, w)
	require.Len(t, subs.Results, 1)
	assert.Len(t, subs.Results[0].Recipes, 1)

	// favorites and shopping cart
	for _, id := range []string{bread.ID.String(), pie.ID.String()} {
		w = s.do(t, http.MethodPost, "/api/recipes/"+id+"/shopping_cart", fanToken, nil)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
	w = s.do(t, http.MethodPost, "/api/recipes/"+bread.ID.String()+"/favorite", fanToken, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodGet, "/api/recipes?is_favorited=1", fanToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	favorites := decode[types.Page[types.RecipeResponse]](t, w)
	require.Len(t, favorites.Results, 1)
	assert.Equal(t, bread.ID, favorites.Results[0].ID)
	assert.True(t, favorites.Results[0].IsFavorited)
	assert.True(t, favorites.Results[0].IsInShoppingCart)

	w = s.do(t, http.MethodGet, "/api/recipes/download_shopping_cart", fanToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Flour, 750, g\n", w.Body.String())

	// authors only
	w = s.do(t, http.MethodDelete, "/api/recipes/"+bread.ID.String(), fanToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(t, http.MethodDelete, "/api/recipes/"+bread.ID.String(), chefToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, "/api/recipes/download_shopping_cart", fanToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Flour, 250, g\n", w.Body.String())

	// logout revokes the token in redis
	w = s.do(t, http.MethodPost, "/api/auth/token/logout", fanToken, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(t, http.MethodGet, "/api/users/me", fanToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRecipeCreationIsRateLimited(t *testing.T) {
	s := setupStack(t)
	_, token := s.register(t, "busy")

	// validation failures still count against the hourly budget
	for i := 0; i < 3; i++ {
		w := s.do(t, http.MethodPost, "/api/recipes", token, map[string]interface{}{})
		require.Equal(t, http.StatusBadRequest, w.Code)
	}
	w := s.do(t, http.MethodPost, "/api/recipes", token, map[string]interface{}{})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
