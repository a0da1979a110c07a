package testhelpers

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/pakodev28/foodgram-project-react/internal/models"
	"github.com/pakodev28/foodgram-project-react/internal/service"
	"github.com/pakodev28/foodgram-project-react/internal/types"
	"gorm.io/gorm"
)

// TestPassword is the password of every user created by CreateTestUser
const TestPassword = "password123"

// TestPNG is a 1x1 PNG encoded as a data URI
const TestPNG = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

// CreateTestUser stores a user whose email and username derive from name
func CreateTestUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	hash, err := service.HashPassword(TestPassword)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := &models.User{
		Email:        fmt.Sprintf("%s@example.com", name),
		Username:     name,
		FirstName:    name,
		LastName:     "Tester",
		PasswordHash: hash,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", name, err)
	}
	return user
}

// CreateTestUserAndToken stores a user and signs a token for it
func CreateTestUserAndToken(t *testing.T, db *gorm.DB, auth *service.AuthService, name string) (*models.User, string) {
	t.Helper()
	user := CreateTestUser(t, db, name)
	token, err := auth.GenerateToken(user)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return user, token
}

// CreateTestTag stores a tag with the given slug
func CreateTestTag(t *testing.T, db *gorm.DB, slug string) *models.Tag {
	t.Helper()
	tag := &models.Tag{Name: "Tag " + slug, Slug: slug}
	if err := db.Create(tag).Error; err != nil {
		t.Fatalf("failed to create tag %s: %v", slug, err)
	}
	return tag
}

// CreateTestIngredient stores an ingredient
func CreateTestIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()
	ingredient := &models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(ingredient).Error; err != nil {
		t.Fatalf("failed to create ingredient %s: %v", name, err)
	}
	return ingredient
}

// RecipeRequest builds a valid create payload
func RecipeRequest(name string, tags []uuid.UUID, ingredients ...types.IngredientAmount) *types.RecipeRequest {
	text := "Mix everything and cook."
	image := TestPNG
	cookingTime := 30
	return &types.RecipeRequest{
		Name:        &name,
		Text:        &text,
		Image:       &image,
		CookingTime: &cookingTime,
		Tags:        tags,
		Ingredients: ingredients,
	}
}
