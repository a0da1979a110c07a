package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/pakodev28/foodgram-project-react/internal/models"
	"github.com/pakodev28/foodgram-project-react/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecipeService handles recipe operations
type RecipeService struct {
	db     *gorm.DB
	images *ImageService
}

// Ensure RecipeService implements IRecipeService
var _ IRecipeService = (*RecipeService)(nil)

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, images *ImageService) *RecipeService {
	return &RecipeService{
		db:     db,
		images: images,
	}
}

func preloadRecipe(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.slug") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.id") }).
		Preload("Ingredients.Ingredient")
}

// GetRecipe retrieves a recipe by ID with author, tags and ingredients
func (s *RecipeService) GetRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := preloadRecipe(s.db.WithContext(ctx)).First(&recipe, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &recipe, nil
}

func (s *RecipeService) getRecipeRow(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &recipe, nil
}

// CreateRecipe validates the request and stores a recipe authored by authorID
func (s *RecipeService) CreateRecipe(ctx context.Context, authorID uuid.UUID, req *types.RecipeRequest) (*models.Recipe, error) {
	if err := ValidateRecipeInput(req, true); err != nil {
		return nil, err
	}

	image, err := s.images.StoreRecipeImage(ctx, *req.Image)
	if err != nil {
		return nil, err
	}

	name, text := strings.TrimSpace(*req.Name), strings.TrimSpace(*req.Text)
	recipe := &models.Recipe{
		AuthorID:    authorID,
		Name:        name,
		Image:       image.URL,
		Text:        text,
		CookingTime: *req.CookingTime,
		Embedding:   recipeEmbedding(name, text),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := loadTags(tx, req.Tags)
		if err != nil {
			return err
		}
		ingredients := MergeIngredientAmounts(req.Ingredients)
		if err := checkIngredients(tx, ingredients); err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return fmt.Errorf("failed to create recipe: %w", err)
		}
		if err := tx.Model(recipe).Association("Tags").Replace(tags); err != nil {
			return fmt.Errorf("failed to set recipe tags: %w", err)
		}
		return insertIngredients(tx, recipe.ID, ingredients)
	})
	if err != nil {
		s.images.Discard(ctx, image)
		return nil, err
	}

	log.Printf("[RecipeService] created recipe %s by %s", recipe.ID, authorID)
	return s.GetRecipe(ctx, recipe.ID)
}

// UpdateRecipe changes a recipe owned by userID. With partial set only the
// fields present in req are changed; tags and ingredients are replaced as a whole.
func (s *RecipeService) UpdateRecipe(ctx context.Context, userID, recipeID uuid.UUID, req *types.RecipeRequest, partial bool) (*models.Recipe, error) {
	recipe, err := s.getRecipeRow(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if recipe.AuthorID != userID {
		return nil, ErrForbidden
	}
	if err := ValidateRecipeInput(req, !partial); err != nil {
		return nil, err
	}

	var image *StoredImage
	if req.Image != nil && *req.Image != recipe.Image {
		image, err = s.images.StoreRecipeImage(ctx, *req.Image)
		if err != nil {
			return nil, err
		}
		recipe.Image = image.URL
	}
	if req.Name != nil {
		recipe.Name = strings.TrimSpace(*req.Name)
	}
	if req.Text != nil {
		recipe.Text = strings.TrimSpace(*req.Text)
	}
	if req.CookingTime != nil {
		recipe.CookingTime = *req.CookingTime
	}
	recipe.Embedding = recipeEmbedding(recipe.Name, recipe.Text)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.Tags != nil {
			tags, err := loadTags(tx, req.Tags)
			if err != nil {
				return err
			}
			if err := tx.Model(recipe).Association("Tags").Replace(tags); err != nil {
				return fmt.Errorf("failed to replace recipe tags: %w", err)
			}
		}

		if req.Ingredients != nil {
			ingredients := MergeIngredientAmounts(req.Ingredients)
			if err := checkIngredients(tx, ingredients); err != nil {
				return err
			}
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
				return fmt.Errorf("failed to clear recipe ingredients: %w", err)
			}
			if err := insertIngredients(tx, recipe.ID, ingredients); err != nil {
				return err
			}
		}

		if err := tx.Omit(clause.Associations).Save(recipe).Error; err != nil {
			return fmt.Errorf("failed to update recipe: %w", err)
		}
		return nil
	})
	if err != nil {
		s.images.Discard(ctx, image)
		return nil, err
	}

	return s.GetRecipe(ctx, recipe.ID)
}

// DeleteRecipe removes a recipe owned by userID together with its
// ingredient rows, tag links, favorites and cart entries.
func (s *RecipeService) DeleteRecipe(ctx context.Context, userID, recipeID uuid.UUID) error {
	recipe, err := s.getRecipeRow(ctx, recipeID)
	if err != nil {
		return err
	}
	if recipe.AuthorID != userID {
		return ErrForbidden
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, dependent := range []interface{}{&models.Favorite{}, &models.ShoppingCartItem{}, &models.RecipeIngredient{}} {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(dependent).Error; err != nil {
				return fmt.Errorf("failed to delete recipe dependents: %w", err)
			}
		}
		if err := tx.Model(recipe).Association("Tags").Clear(); err != nil {
			return fmt.Errorf("failed to clear recipe tags: %w", err)
		}
		if err := tx.Delete(recipe).Error; err != nil {
			return fmt.Errorf("failed to delete recipe: %w", err)
		}
		return nil
	})
}

// ListRecipes returns a page of recipes matching filter, newest first. The
// favorite and cart filters only apply when viewer is set.
func (s *RecipeService) ListRecipes(ctx context.Context, viewer *uuid.UUID, filter types.RecipeFilter, page types.PageRequest) ([]models.Recipe, int64, error) {
	db := s.db.WithContext(ctx)

	base := func() *gorm.DB {
		q := db.Model(&models.Recipe{})
		if filter.AuthorID != nil {
			q = q.Where("recipes.author_id = ?", *filter.AuthorID)
		}
		if len(filter.TagSlugs) > 0 {
			tagged := db.Table("recipe_tags").
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", filter.TagSlugs)
			q = q.Where("recipes.id IN (?)", tagged)
		}
		if viewer != nil && filter.IsFavorited {
			q = q.Where("recipes.id IN (?)", db.Model(&models.Favorite{}).Select("recipe_id").Where("user_id = ?", *viewer))
		}
		if viewer != nil && filter.IsInShoppingCart {
			q = q.Where("recipes.id IN (?)", db.Model(&models.ShoppingCartItem{}).Select("recipe_id").Where("user_id = ?", *viewer))
		}
		if search := strings.TrimSpace(filter.Search); search != "" {
			q = q.Where("LOWER(recipes.name) LIKE ? ESCAPE '\\'", containsPattern(strings.ToLower(search)))
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count recipes: %w", err)
	}

	q := preloadRecipe(base())
	if search := strings.TrimSpace(filter.Search); search != "" && db.Dialector.Name() == "postgres" {
		vec := GenerateEmbedding(search)
		q = q.Clauses(clause.OrderBy{
			Expression: clause.Expr{
				SQL:  "recipes.embedding <-> ?::vector, recipes.created_at DESC",
				Vars: []interface{}{vec},
			},
		})
	} else {
		q = q.Order("recipes.created_at DESC")
	}
	var recipes []models.Recipe
	err := q.Offset(page.Offset()).Limit(page.Limit).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list recipes: %w", err)
	}
	return recipes, total, nil
}

// AddFavorite marks the recipe as a favorite of the user
func (s *RecipeService) AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error) {
	return s.addToList(ctx, &models.Favorite{UserID: userID, RecipeID: recipeID})
}

// RemoveFavorite removes the recipe from the user's favorites
func (s *RecipeService) RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	return s.removeFromList(ctx, &models.Favorite{}, userID, recipeID)
}

// AddToShoppingCart puts the recipe into the user's shopping cart
func (s *RecipeService) AddToShoppingCart(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error) {
	return s.addToList(ctx, &models.ShoppingCartItem{UserID: userID, RecipeID: recipeID})
}

// RemoveFromShoppingCart takes the recipe out of the user's shopping cart
func (s *RecipeService) RemoveFromShoppingCart(ctx context.Context, userID, recipeID uuid.UUID) error {
	return s.removeFromList(ctx, &models.ShoppingCartItem{}, userID, recipeID)
}

func entryKeys(entry interface{}) (uuid.UUID, uuid.UUID) {
	switch e := entry.(type) {
	case *models.Favorite:
		return e.UserID, e.RecipeID
	case *models.ShoppingCartItem:
		return e.UserID, e.RecipeID
	}
	return uuid.Nil, uuid.Nil
}

func (s *RecipeService) addToList(ctx context.Context, entry interface{}) (*models.Recipe, error) {
	userID, recipeID := entryKeys(entry)
	recipe, err := s.getRecipeRow(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(entry).Where("user_id = ? AND recipe_id = ?", userID, recipeID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check list membership: %w", err)
	}
	if count > 0 {
		return nil, ErrAlreadyExists
	}

	if err := db.Create(entry).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("failed to add recipe to list: %w", err)
	}
	return recipe, nil
}

func (s *RecipeService) removeFromList(ctx context.Context, model interface{}, userID, recipeID uuid.UUID) error {
	if _, err := s.getRecipeRow(ctx, recipeID); err != nil {
		return err
	}

	res := s.db.WithContext(ctx).Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(model)
	if res.Error != nil {
		return fmt.Errorf("failed to remove recipe from list: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotInList
	}
	return nil
}

// RenderRecipes converts recipes into responses carrying the viewer specific flags
func (s *RecipeService) RenderRecipes(ctx context.Context, viewer *uuid.UUID, recipes []models.Recipe) ([]types.RecipeResponse, error) {
	db := s.db.WithContext(ctx)
	recipeIDs := make([]uuid.UUID, len(recipes))
	authorIDs := make([]uuid.UUID, len(recipes))
	for i := range recipes {
		recipeIDs[i] = recipes[i].ID
		authorIDs[i] = recipes[i].AuthorID
	}

	favorited, err := memberRecipes(db, &models.Favorite{}, viewer, recipeIDs)
	if err != nil {
		return nil, err
	}
	inCart, err := memberRecipes(db, &models.ShoppingCartItem{}, viewer, recipeIDs)
	if err != nil {
		return nil, err
	}
	subscribed, err := subscribedTo(db, viewer, authorIDs)
	if err != nil {
		return nil, err
	}

	out := make([]types.RecipeResponse, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		tags := make([]types.TagResponse, len(r.Tags))
		for j := range r.Tags {
			tags[j] = ToTagResponse(&r.Tags[j])
		}
		ingredients := make([]types.RecipeIngredientResponse, len(r.Ingredients))
		for j, ri := range r.Ingredients {
			ingredients[j] = types.RecipeIngredientResponse{
				ID:              ri.IngredientID,
				Name:            ri.Ingredient.Name,
				MeasurementUnit: ri.Ingredient.MeasurementUnit,
				Amount:          ri.Amount,
			}
		}
		out[i] = types.RecipeResponse{
			ID:               r.ID,
			Tags:             tags,
			Author:           ToUserResponse(&r.Author, subscribed[r.AuthorID]),
			Ingredients:      ingredients,
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
			Name:             r.Name,
			Image:            r.Image,
			Text:             r.Text,
			CookingTime:      r.CookingTime,
		}
	}
	return out, nil
}

// RenderRecipe renders a single recipe for viewer
func (s *RecipeService) RenderRecipe(ctx context.Context, viewer *uuid.UUID, recipe *models.Recipe) (*types.RecipeResponse, error) {
	out, err := s.RenderRecipes(ctx, viewer, []models.Recipe{*recipe})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// ToRecipeShort renders the short form of a recipe
func ToRecipeShort(r *models.Recipe) types.RecipeShortResponse {
	return types.RecipeShortResponse{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.Image,
		CookingTime: r.CookingTime,
	}
}

func memberRecipes(db *gorm.DB, model interface{}, viewer *uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	result := make(map[uuid.UUID]bool)
	if viewer == nil || len(recipeIDs) == 0 {
		return result, nil
	}
	var ids []uuid.UUID
	err := db.Model(model).
		Where("user_id = ? AND recipe_id IN ?", *viewer, recipeIDs).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load list membership: %w", err)
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}

func loadTags(tx *gorm.DB, ids []uuid.UUID) ([]models.Tag, error) {
	var tags []models.Tag
	if err := tx.Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}
	if len(tags) != len(ids) {
		return nil, fieldError("tags", "Unknown tag.")
	}
	return tags, nil
}

func checkIngredients(tx *gorm.DB, items []types.IngredientAmount) error {
	ids := make([]uuid.UUID, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	var found []uuid.UUID
	if err := tx.Model(&models.Ingredient{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return fmt.Errorf("failed to load ingredients: %w", err)
	}
	if len(found) == len(ids) {
		return nil
	}
	known := make(map[uuid.UUID]bool, len(found))
	for _, id := range found {
		known[id] = true
	}
	for _, id := range ids {
		if !known[id] {
			return fmt.Errorf("ingredient %s: %w", id, ErrNotFound)
		}
	}
	return errors.New("ingredient lookup mismatch")
}

func insertIngredients(tx *gorm.DB, recipeID uuid.UUID, items []types.IngredientAmount) error {
	rows := make([]models.RecipeIngredient, len(items))
	for i, item := range items {
		rows[i] = models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: item.ID,
			Amount:       item.Amount,
		}
	}
	if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to store recipe ingredients: %w", err)
	}
	return nil
}
