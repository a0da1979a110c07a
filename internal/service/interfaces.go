package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pakodev28/foodgram-project-react/internal/models"
	"github.com/pakodev28/foodgram-project-react/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
	GenerateToken(user *models.User) (string, error)
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
	Logout(ctx context.Context, claims *types.TokenClaims) error
}

// IUserService defines the interface for account and subscription operations
type IUserService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*models.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListUsers(ctx context.Context, page types.PageRequest) ([]models.User, int64, error)
	SetPassword(ctx context.Context, userID uuid.UUID, current, next string) error
	Subscribe(ctx context.Context, followerID, authorID uuid.UUID) (*models.User, error)
	Unsubscribe(ctx context.Context, followerID, authorID uuid.UUID) error
	Subscriptions(ctx context.Context, userID uuid.UUID, page types.PageRequest, recipesLimit int) ([]types.SubscriptionResponse, int64, error)
	RenderSubscription(ctx context.Context, author *models.User, recipesLimit int) (*types.SubscriptionResponse, error)
	RenderUsers(ctx context.Context, viewer *uuid.UUID, users []models.User) ([]types.UserResponse, error)
	IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	CreateRecipe(ctx context.Context, authorID uuid.UUID, req *types.RecipeRequest) (*models.Recipe, error)
	GetRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error)
	UpdateRecipe(ctx context.Context, userID, recipeID uuid.UUID, req *types.RecipeRequest, partial bool) (*models.Recipe, error)
	DeleteRecipe(ctx context.Context, userID, recipeID uuid.UUID) error
	ListRecipes(ctx context.Context, viewer *uuid.UUID, filter types.RecipeFilter, page types.PageRequest) ([]models.Recipe, int64, error)
	AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error)
	RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error
	AddToShoppingCart(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error)
	RemoveFromShoppingCart(ctx context.Context, userID, recipeID uuid.UUID) error
	ShoppingList(ctx context.Context, userID uuid.UUID) ([]ShoppingListItem, error)
	RenderRecipes(ctx context.Context, viewer *uuid.UUID, recipes []models.Recipe) ([]types.RecipeResponse, error)
	RenderRecipe(ctx context.Context, viewer *uuid.UUID, recipe *models.Recipe) (*types.RecipeResponse, error)
}

// ITagService defines the interface for tag operations
type ITagService interface {
	ListTags(ctx context.Context) ([]models.Tag, error)
	GetTag(ctx context.Context, id uuid.UUID) (*models.Tag, error)
	CreateTag(ctx context.Context, req *types.CreateTagRequest) (*models.Tag, error)
}

// IIngredientService defines the interface for ingredient operations
type IIngredientService interface {
	ListIngredients(ctx context.Context, name string) ([]models.Ingredient, error)
	GetIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error)
	CreateIngredient(ctx context.Context, req *types.CreateIngredientRequest) (*models.Ingredient, error)
}

var (
	_ ITagService        = (*TagService)(nil)
	_ IIngredientService = (*IngredientService)(nil)
)
