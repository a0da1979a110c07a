package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pakodev28/foodgram-project-react/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimitedRouter(userID uuid.UUID, handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.PATCH("/recipes/:id", func(c *gin.Context) {
		c.Set(UserIDKey, userID)
	}, handler, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestNilRateLimiterAllowsEverything(t *testing.T) {
	var limiter *RateLimiter
	router := newLimitedRouter(uuid.New(), limiter.PerRecipeRateLimitMiddleware())

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/recipes/abc", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
	}
}

func TestRateLimiterWithRedis(t *testing.T) {
	client := testhelpers.SetupRedis(t)
	limiter := NewRecipeModificationRateLimiter(client, "foodgram", 2)
	userID := uuid.New()
	router := newLimitedRouter(userID, limiter.PerRecipeRateLimitMiddleware())

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/recipes/first", nil))
		statuses = append(statuses, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, statuses)

	// a different recipe has its own budget
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/recipes/second", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))

	remaining, reset, err := limiter.GetRemainingRequests(context.Background(), userID.String()+":first")
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)
	assert.True(t, reset.After(time.Now()))
}

func TestRecipeCreationRateLimiter(t *testing.T) {
	client := testhelpers.SetupRedis(t)
	limiter := NewRecipeCreationRateLimiter(client, "tenant", 1)
	ctx := context.Background()

	allowed, remaining, _, err := limiter.IsAllowed(ctx, "user")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 0, remaining)

	allowed, _, _, err = limiter.IsAllowed(ctx, "user")
	require.NoError(t, err)
	assert.False(t, allowed)

	remaining, _, err = limiter.GetRemainingRequests(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)

	keys, err := client.Keys(ctx, "tenant:rate_limit:recipe_creation:user:*").Result()
	require.NoError(t, err)
	assert.Len(t, keys, 1)
}

func TestNamespacedKey(t *testing.T) {
	assert.Equal(t, "foodgram:rate_limit:x", namespacedKey("foodgram", "rate_limit:x"))
	assert.Equal(t, "rate_limit:x", namespacedKey("", "rate_limit:x"))
}
