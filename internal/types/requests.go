package types

import "github.com/google/uuid"

// LoginRequest is the body of POST /auth/token/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest is the body of POST /users
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Username  string `json:"username" binding:"required,max=150"`
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	Password  string `json:"password" binding:"required,min=8,max=150"`
}

// SetPasswordRequest is the body of POST /users/set_password
type SetPasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=150"`
}

// IngredientAmount references an existing ingredient with the amount used
type IngredientAmount struct {
	ID     uuid.UUID `json:"id"`
	Amount int       `json:"amount"`
}

// RecipeRequest is used for create, full and partial update of a recipe.
// Nil fields are left untouched on update.
type RecipeRequest struct {
	Name        *string            `json:"name"`
	Text        *string            `json:"text"`
	Image       *string            `json:"image"`
	CookingTime *int               `json:"cooking_time"`
	Tags        []uuid.UUID        `json:"tags"`
	Ingredients []IngredientAmount `json:"ingredients"`
}

// CreateTagRequest is the body of POST /tags
type CreateTagRequest struct {
	Name  string `json:"name" binding:"required,max=200"`
	Slug  string `json:"slug" binding:"required,max=200"`
	Color string `json:"color" binding:"omitempty,hexcolor"`
}

// CreateIngredientRequest is the body of POST /ingredients
type CreateIngredientRequest struct {
	Name            string `json:"name" binding:"required,max=60"`
	MeasurementUnit string `json:"measurement_unit" binding:"required,max=60"`
}

// RecipeFilter carries the query filters of GET /recipes
type RecipeFilter struct {
	AuthorID         *uuid.UUID
	TagSlugs         []string
	IsFavorited      bool
	IsInShoppingCart bool
	Search           string
}

// MaxPage bounds page numbers so offsets stay far from overflow
const MaxPage = 100000

// PageRequest selects a page of a paginated list
type PageRequest struct {
	Page  int
	Limit int
}

// Offset returns the number of rows to skip
func (p PageRequest) Offset() int {
	if p.Page < 1 || p.Limit < 1 {
		return 0
	}
	return (min(p.Page, MaxPage) - 1) * p.Limit
}
