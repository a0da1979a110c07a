package api

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/pakodev28/foodgram-project-react/internal/models"
	"github.com/pakodev28/foodgram-project-react/internal/testhelpers"
	"github.com/pakodev28/foodgram-project-react/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagHandlers(t *testing.T) {
	env := setupTestRouter(t)
	admin, adminToken := env.CreateTestUserAndToken(t, "admin")
	require.NoError(t, env.DB.Model(admin).Update("is_admin", true).Error)
	_, userToken := env.CreateTestUserAndToken(t, "user")

	tag := map[string]string{"name": "Breakfast", "slug": "breakfast", "color": "#E26C2D"}

	w := env.Do(t, http.MethodPost, "/api/tags", "", tag)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.Do(t, http.MethodPost, "/api/tags", userToken, tag)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.Do(t, http.MethodPost, "/api/tags", adminToken, tag)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeJSON[types.TagResponse](t, w)
	assert.Equal(t, "#E26C2D", created.Color)

	w = env.Do(t, http.MethodPost, "/api/tags", adminToken, map[string]string{"name": "Bad", "slug": "bad", "color": "red"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeJSON[map[string][]string](t, w), "color")

	w = env.Do(t, http.MethodGet, "/api/tags", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	tags := decodeJSON[[]types.TagResponse](t, w)
	require.Len(t, tags, 1)
	assert.Equal(t, "breakfast", tags[0].Slug)

	w = env.Do(t, http.MethodGet, "/api/tags/"+created.ID.String(), "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.Do(t, http.MethodGet, "/api/tags/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIngredientHandlers(t *testing.T) {
	env := setupTestRouter(t)
	testhelpers.CreateTestIngredient(t, env.DB, "sugar", "g")
	salt := testhelpers.CreateTestIngredient(t, env.DB, "salt", "g")
	testhelpers.CreateTestIngredient(t, env.DB, "brown sugar", "g")

	w := env.Do(t, http.MethodGet, "/api/ingredients?name=Sug", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	found := decodeJSON[[]models.Ingredient](t, w)
	require.Len(t, found, 2)
	assert.Equal(t, "brown sugar", found[0].Name)

	w = env.Do(t, http.MethodGet, "/api/ingredients?name=%25", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	w = env.Do(t, http.MethodGet, "/api/ingredients?name=pepper", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	w = env.Do(t, http.MethodGet, "/api/ingredients/"+salt.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "g", decodeJSON[models.Ingredient](t, w).MeasurementUnit)

	_, token := env.CreateTestUserAndToken(t, "cook")
	w = env.Do(t, http.MethodPost, "/api/ingredients", token, map[string]string{"name": "pepper", "measurement_unit": "g"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}
