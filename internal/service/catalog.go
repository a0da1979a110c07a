package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pakodev28/foodgram-project-react/internal/models"
	"github.com/pakodev28/foodgram-project-react/internal/types"
	"gorm.io/gorm"
)

// TagService manages recipe tags
type TagService struct {
	db *gorm.DB
}

// NewTagService creates a new TagService instance
func NewTagService(db *gorm.DB) *TagService {
	return &TagService{db: db}
}

// ListTags returns every tag ordered by slug
func (s *TagService) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("slug").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

// GetTag loads a tag by id
func (s *TagService) GetTag(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &tag, nil
}

// CreateTag stores a new tag
func (s *TagService) CreateTag(ctx context.Context, req *types.CreateTagRequest) (*models.Tag, error) {
	tag := &models.Tag{
		Name:  strings.TrimSpace(req.Name),
		Slug:  strings.ToLower(strings.TrimSpace(req.Slug)),
		Color: strings.ToUpper(req.Color),
	}
	if err := s.db.WithContext(ctx).Create(tag).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, fieldError("slug", "A tag with this name or slug already exists.")
		}
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	return tag, nil
}

// UpsertTag creates the tag or updates name and color of the tag with the same slug
func (s *TagService) UpsertTag(ctx context.Context, req *types.CreateTagRequest) (*models.Tag, bool, error) {
	db := s.db.WithContext(ctx)
	slug := strings.ToLower(strings.TrimSpace(req.Slug))

	var existing models.Tag
	err := db.Where("slug = ?", slug).First(&existing).Error
	if err == nil {
		existing.Name = strings.TrimSpace(req.Name)
		if req.Color != "" {
			existing.Color = strings.ToUpper(req.Color)
		}
		if err := db.Save(&existing).Error; err != nil {
			return nil, false, fmt.Errorf("failed to update tag %s: %w", slug, err)
		}
		return &existing, false, nil
	}
	if notFound(err) != ErrNotFound {
		return nil, false, err
	}

	tag, err := s.CreateTag(ctx, req)
	if err != nil {
		return nil, false, err
	}
	return tag, true, nil
}

// IngredientService manages the ingredient catalog
type IngredientService struct {
	db *gorm.DB
}

// NewIngredientService creates a new IngredientService instance
func NewIngredientService(db *gorm.DB) *IngredientService {
	return &IngredientService{db: db}
}

// ListIngredients returns ingredients ordered by name. A non-empty name
// filters to names containing it, ignoring case.
func (s *IngredientService) ListIngredients(ctx context.Context, name string) ([]models.Ingredient, error) {
	q := s.db.WithContext(ctx).Order("search_name")
	if name = models.FoldName(name); name != "" {
		q = q.Where("search_name LIKE ? ESCAPE '\\'", containsPattern(name))
	}
	var ingredients []models.Ingredient
	if err := q.Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	return ingredients, nil
}

// GetIngredient loads an ingredient by id
func (s *IngredientService) GetIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &ingredient, nil
}

// CreateIngredient stores a new ingredient
func (s *IngredientService) CreateIngredient(ctx context.Context, req *types.CreateIngredientRequest) (*models.Ingredient, error) {
	ingredient := &models.Ingredient{
		Name:            models.CleanName(req.Name),
		MeasurementUnit: strings.TrimSpace(req.MeasurementUnit),
	}
	if ingredient.Name == "" {
		return nil, fieldError("name", "This field may not be blank.")
	}
	if err := s.db.WithContext(ctx).Create(ingredient).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, fieldError("name", "An ingredient with this name already exists.")
		}
		return nil, fmt.Errorf("failed to create ingredient: %w", err)
	}
	return ingredient, nil
}

// GetOrCreateIngredient returns the ingredient with the given name, creating it
// when missing. created reports whether a row was inserted.
func (s *IngredientService) GetOrCreateIngredient(ctx context.Context, name, unit string) (*models.Ingredient, bool, error) {
	db := s.db.WithContext(ctx)

	var existing models.Ingredient
	err := db.Where("search_name = ?", models.FoldName(name)).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if notFound(err) != ErrNotFound {
		return nil, false, err
	}

	ingredient, err := s.CreateIngredient(ctx, &types.CreateIngredientRequest{Name: name, MeasurementUnit: unit})
	if err != nil {
		return nil, false, err
	}
	return ingredient, true, nil
}

// ToTagResponse renders a tag
func ToTagResponse(t *models.Tag) types.TagResponse {
	return types.TagResponse{ID: t.ID, Name: t.Name, Slug: t.Slug, Color: t.Color}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// containsPattern builds a LIKE pattern matching s literally anywhere.
// Queries pair it with ESCAPE '\'.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
