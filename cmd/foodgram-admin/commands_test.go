package main

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pakodev28/foodgram-project-react/internal/models"
	"github.com/pakodev28/foodgram-project-react/internal/service"
	"github.com/pakodev28/foodgram-project-react/internal/testhelpers"
)

func TestMigrateCommand(t *testing.T) {
	setupCLIEnv(t)

	out, err := runCLI(t, "migrate")
	require.NoError(t, err)
	requireContains(t, out, "Schema migrated from models")
}

func TestLoadIngredients(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	ingredients := service.NewIngredientService(db)

	csvData := "Flour,g\nSalt, g\nflour,kg\n,g\nbroken\n"
	summary, err := loadIngredients(context.Background(), ingredients, strings.NewReader(csvData))
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Created)
	assert.Equal(t, []string{"Flour"}, summary.Duplicates)
	require.Len(t, summary.Rejected, 2)
	assert.Contains(t, summary.Rejected[0], "line 4")
	assert.Contains(t, summary.Rejected[1], "line 5")

	var count int64
	require.NoError(t, db.Model(&models.Ingredient{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestLoadIngredientsCommand(t *testing.T) {
	setupCLIEnv(t)
	path := writeFile(t, "ingredients.csv", "абрикосы,г\nмука,г\nмука,г\n")

	out, err := runCLI(t, "load-ingredients", path)
	require.NoError(t, err)
	requireContains(t, out, "мука already exists")
	requireContains(t, out, "Created 2 ingredients (1 duplicates, 0 rejected)")

	out, err = runCLI(t, "ingredients", "list", "--name", "МУК")
	require.NoError(t, err)
	requireContains(t, out, "мука")
	assert.NotContains(t, out, "абрикосы")
}

func TestLoadIngredientsMissingFile(t *testing.T) {
	setupCLIEnv(t)

	_, err := runCLI(t, "load-ingredients", "does-not-exist.csv")
	require.Error(t, err)
}

func TestParseTagFile(t *testing.T) {
	valid := `
[[tags]]
name = "Breakfast"
slug = "breakfast"
color = "#E26C2D"

[[tags]]
name = "Dinner"
slug = "dinner"
`
	requests, err := parseTagFile(strings.NewReader(valid))
	require.NoError(t, err)
	require.Len(t, requests, 2)
	assert.Equal(t, "breakfast", requests[0].Slug)
	assert.Equal(t, "", requests[1].Color)

	tests := []struct {
		name    string
		content string
	}{
		{"unknown field", "[[tags]]\nname = \"A\"\nslug = \"a\"\nicon = \"x\"\n"},
		{"missing slug", "[[tags]]\nname = \"A\"\n"},
		{"bad color", "[[tags]]\nname = \"A\"\nslug = \"a\"\ncolor = \"red\"\n"},
		{"duplicate slug", "[[tags]]\nname = \"A\"\nslug = \"a\"\n[[tags]]\nname = \"B\"\nslug = \"a\"\n"},
		{"not toml", "tags = ["},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseTagFile(strings.NewReader(tt.content))
			assert.Error(t, err)
		})
	}
}

func TestTagsImportCommand(t *testing.T) {
	setupCLIEnv(t)
	path := writeFile(t, "tags.toml", `
[[tags]]
name = "Breakfast"
slug = "breakfast"
color = "#e26c2d"

[[tags]]
name = "Lunch"
slug = "lunch"
`)

	out, err := runCLI(t, "tags", "import", path)
	require.NoError(t, err)
	requireContains(t, out, "Tags created: 2, updated: 0")

	out, err = runCLI(t, "tags", "import", path)
	require.NoError(t, err)
	requireContains(t, out, "Tags created: 0, updated: 2")

	out, err = runCLI(t, "tags", "list")
	require.NoError(t, err)
	requireContains(t, out, "breakfast")
	requireContains(t, out, "#E26C2D")
	requireContains(t, out, "Lunch")
}

func TestTagsListEmpty(t *testing.T) {
	setupCLIEnv(t)

	out, err := runCLI(t, "tags", "list")
	require.NoError(t, err)
	requireContains(t, out, "No tags")
}

func TestUsersPromoteCommand(t *testing.T) {
	setupCLIEnv(t)
	db := openCLIDatabase(t)
	user := testhelpers.CreateTestUser(t, db, "chef")

	out, err := runCLI(t, "users", "promote", user.Email)
	require.NoError(t, err)
	requireContains(t, out, "chef is now an admin")

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	assert.True(t, stored.IsAdmin)

	_, err = runCLI(t, "users", "promote", "nobody@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no user with email")
}

func TestStorageSetupBucketRequiresBucket(t *testing.T) {
	setupCLIEnv(t)

	_, err := runCLI(t, "storage", "setup-bucket")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "S3_BUCKET_NAME is not set")
}
