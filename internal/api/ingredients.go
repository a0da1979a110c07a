package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pakodev28/foodgram-project-react/internal/middleware"
	"github.com/pakodev28/foodgram-project-react/internal/models"
	"github.com/pakodev28/foodgram-project-react/internal/service"
	"github.com/pakodev28/foodgram-project-react/internal/types"
	"gorm.io/gorm"
)

// IngredientHandler serves the ingredient catalog
type IngredientHandler struct {
	ingredientService service.IIngredientService
	auth              middleware.TokenValidator
	db                *gorm.DB
}

// NewIngredientHandler creates a new IngredientHandler instance
func NewIngredientHandler(ingredientService service.IIngredientService, auth middleware.TokenValidator, db *gorm.DB) *IngredientHandler {
	return &IngredientHandler{ingredientService: ingredientService, auth: auth, db: db}
}

func (h *IngredientHandler) RegisterRoutes(router *gin.RouterGroup) {
	ingredients := router.Group("/ingredients")
	{
		ingredients.GET("", h.ListIngredients)
		ingredients.GET("/:id", h.GetIngredient)
		ingredients.POST("", middleware.AuthMiddleware(h.auth), middleware.RequireAdmin(h.db), h.CreateIngredient)
	}
}

// ListIngredients returns every ingredient, filtered by ?name when given
func (h *IngredientHandler) ListIngredients(c *gin.Context) {
	ingredients, err := h.ingredientService.ListIngredients(c.Request.Context(), c.Query("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	if ingredients == nil {
		ingredients = []models.Ingredient{}
	}
	c.JSON(http.StatusOK, ingredients)
}

func (h *IngredientHandler) GetIngredient(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	ingredient, err := h.ingredientService.GetIngredient(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredient)
}

func (h *IngredientHandler) CreateIngredient(c *gin.Context) {
	var req types.CreateIngredientRequest
	if !bindJSON(c, &req) {
		return
	}
	ingredient, err := h.ingredientService.CreateIngredient(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ingredient)
}
