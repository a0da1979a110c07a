package testhelpers

import (
	"testing"

	"github.com/pakodev28/foodgram-project-react/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupTestDatabaseIsolation(t *testing.T) {
	first := SetupTestDatabase(t)
	second := SetupTestDatabase(t)

	CreateTestUser(t, first, "alice")

	var count int64
	require.NoError(t, first.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	require.NoError(t, second.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestFixtures(t *testing.T) {
	db := SetupTestDatabase(t)

	user := CreateTestUser(t, db, "bob")
	tag := CreateTestTag(t, db, "dinner")
	ingredient := CreateTestIngredient(t, db, "rice", "g")

	assert.Equal(t, "bob@example.com", user.Email)
	assert.Equal(t, models.DefaultTagColor, tag.Color)
	assert.NotEmpty(t, ingredient.ID)

	req := RecipeRequest("Pilaf", nil)
	assert.Equal(t, "Pilaf", *req.Name)
	assert.Equal(t, TestPNG, *req.Image)
}
