package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pakodev28/foodgram-project-react/internal/middleware"
	"github.com/pakodev28/foodgram-project-react/internal/models"
	"github.com/pakodev28/foodgram-project-react/internal/service"
	"github.com/pakodev28/foodgram-project-react/internal/types"
)

const shoppingListFilename = "recipes.txt"

type RecipeHandler struct {
	recipeService service.IRecipeService
	auth          middleware.TokenValidator
	pageSize      int

	// nil when Redis is unavailable
	creationLimiter     *middleware.RateLimiter
	modificationLimiter *middleware.RateLimiter
}

func NewRecipeHandler(recipeService service.IRecipeService, auth middleware.TokenValidator, pageSize int, creationLimiter, modificationLimiter *middleware.RateLimiter) *RecipeHandler {
	return &RecipeHandler{
		recipeService:       recipeService,
		auth:                auth,
		pageSize:            pageSize,
		creationLimiter:     creationLimiter,
		modificationLimiter: modificationLimiter,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	requireAuth := middleware.AuthMiddleware(h.auth)
	optionalAuth := middleware.OptionalAuth(h.auth)

	recipes := router.Group("/recipes")
	{
		recipes.GET("", optionalAuth, h.ListRecipes)
		recipes.POST("", requireAuth, h.creationLimiter.RateLimitMiddleware(), h.CreateRecipe)
		recipes.GET("/download_shopping_cart", requireAuth, h.DownloadShoppingCart)
		recipes.GET("/:id", optionalAuth, h.GetRecipe)
		recipes.PUT("/:id", requireAuth, h.modificationLimiter.PerRecipeRateLimitMiddleware(), h.UpdateRecipe)
		recipes.PATCH("/:id", requireAuth, h.modificationLimiter.PerRecipeRateLimitMiddleware(), h.PatchRecipe)
		recipes.DELETE("/:id", requireAuth, h.DeleteRecipe)

		recipes.GET("/:id/favorite", requireAuth, h.FavoriteRecipe)
		recipes.POST("/:id/favorite", requireAuth, h.FavoriteRecipe)
		recipes.DELETE("/:id/favorite", requireAuth, h.UnfavoriteRecipe)
		recipes.GET("/:id/shopping_cart", requireAuth, h.AddToShoppingCart)
		recipes.POST("/:id/shopping_cart", requireAuth, h.AddToShoppingCart)
		recipes.DELETE("/:id/shopping_cart", requireAuth, h.RemoveFromShoppingCart)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	filter := types.RecipeFilter{
		TagSlugs:         c.QueryArray("tags"),
		IsFavorited:      queryFlag(c, "is_favorited"),
		IsInShoppingCart: queryFlag(c, "is_in_shopping_cart"),
		Search:           c.Query("search"),
	}
	if author := c.Query("author"); author != "" {
		id, err := uuid.Parse(author)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"author": []string{"Select a valid user."}})
			return
		}
		filter.AuthorID = &id
	}

	page := pageRequest(c, h.pageSize)
	viewer := viewerID(c)
	recipes, total, err := h.recipeService.ListRecipes(c.Request.Context(), viewer, filter, page)
	if err != nil {
		respondError(c, err)
		return
	}

	rendered, err := h.recipeService.RenderRecipes(c.Request.Context(), viewer, recipes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPage(c, page, total, rendered))
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	h.renderRecipe(c, http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.RecipeRequest
	if !bindJSON(c, &req) {
		return
	}

	userID, _ := currentUserID(c)
	recipe, err := h.recipeService.CreateRecipe(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.renderRecipe(c, http.StatusCreated, recipe)
}

// UpdateRecipe replaces a recipe; every field must be present
func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	h.update(c, false)
}

// PatchRecipe changes only the fields present in the body
func (h *RecipeHandler) PatchRecipe(c *gin.Context) {
	h.update(c, true)
}

func (h *RecipeHandler) update(c *gin.Context, partial bool) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req types.RecipeRequest
	if !bindJSON(c, &req) {
		return
	}

	userID, _ := currentUserID(c)
	recipe, err := h.recipeService.UpdateRecipe(c.Request.Context(), userID, id, &req, partial)
	if err != nil {
		respondError(c, err)
		return
	}
	h.renderRecipe(c, http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	userID, _ := currentUserID(c)
	if err := h.recipeService.DeleteRecipe(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) FavoriteRecipe(c *gin.Context) {
	h.addToList(c, h.recipeService.AddFavorite, "Recipe is already in favorites.")
}

func (h *RecipeHandler) UnfavoriteRecipe(c *gin.Context) {
	h.removeFromList(c, h.recipeService.RemoveFavorite, "Recipe is not in favorites.")
}

func (h *RecipeHandler) AddToShoppingCart(c *gin.Context) {
	h.addToList(c, h.recipeService.AddToShoppingCart, "Recipe is already in the shopping cart.")
}

func (h *RecipeHandler) RemoveFromShoppingCart(c *gin.Context) {
	h.removeFromList(c, h.recipeService.RemoveFromShoppingCart, "Recipe is not in the shopping cart.")
}

// DownloadShoppingCart sends the aggregated ingredients of every recipe in
// the cart as an attachment
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	userID, _ := currentUserID(c)
	items, err := h.recipeService.ShoppingList(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+shoppingListFilename+`"`)
	c.Status(http.StatusOK)
	if err := service.WriteShoppingList(c.Writer, items); err != nil {
		// headers are already sent
		c.Error(err)
	}
}

func (h *RecipeHandler) addToList(c *gin.Context, add func(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error), duplicate string) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	userID, _ := currentUserID(c)
	recipe, err := add(c.Request.Context(), userID, id)
	if errors.Is(err, service.ErrAlreadyExists) {
		c.JSON(http.StatusBadRequest, gin.H{"error": duplicate})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, service.ToRecipeShort(recipe))
}

func (h *RecipeHandler) removeFromList(c *gin.Context, remove func(ctx context.Context, userID, recipeID uuid.UUID) error, missing string) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	userID, _ := currentUserID(c)
	err := remove(c.Request.Context(), userID, id)
	if errors.Is(err, service.ErrNotInList) {
		c.JSON(http.StatusBadRequest, gin.H{"error": missing})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) renderRecipe(c *gin.Context, status int, recipe *models.Recipe) {
	rendered, err := h.recipeService.RenderRecipe(c.Request.Context(), viewerID(c), recipe)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, rendered)
}

// queryFlag accepts 1 and true
func queryFlag(c *gin.Context, name string) bool {
	switch strings.ToLower(c.Query(name)) {
	case "1", "true":
		return true
	}
	return false
}
