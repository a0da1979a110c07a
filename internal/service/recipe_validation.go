package service

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pakodev28/foodgram-project-react/internal/types"
)

const (
	maxRecipeNameLength = 200
	minIngredientAmount = 1
	minCookingTime      = 1

	// amounts and cooking times are small integers
	maxIngredientAmount = 32767
	maxCookingTime      = 32767
)

// ValidateRecipeInput checks a recipe payload. requireAll is set for create
// and full update; partial updates only validate the fields that are present.
func ValidateRecipeInput(req *types.RecipeRequest, requireAll bool) error {
	verr := NewValidationError()

	checkText := func(field string, value *string, max int) {
		if value == nil {
			if requireAll {
				verr.Add(field, "This field is required.")
			}
			return
		}
		v := strings.TrimSpace(*value)
		if v == "" {
			verr.Add(field, "This field may not be blank.")
		} else if max > 0 && len([]rune(v)) > max {
			verr.Add(field, "Ensure this field has no more than 200 characters.")
		}
	}
	checkText("name", req.Name, maxRecipeNameLength)
	checkText("text", req.Text, 0)
	checkText("image", req.Image, 0)

	if req.CookingTime == nil {
		if requireAll {
			verr.Add("cooking_time", "This field is required.")
		}
	} else if *req.CookingTime < minCookingTime {
		verr.Add("cooking_time", "Cooking time must be at least 1 minute.")
	} else if *req.CookingTime > maxCookingTime {
		verr.Add("cooking_time", fmt.Sprintf("Cooking time must be at most %d minutes.", maxCookingTime))
	}

	if req.Ingredients == nil {
		if requireAll {
			verr.Add("ingredients", "This field is required.")
		}
	} else if len(req.Ingredients) == 0 {
		verr.Add("ingredients", "At least one ingredient is required.")
	} else {
		for _, item := range req.Ingredients {
			if item.ID == uuid.Nil {
				verr.Add("ingredients", "Every ingredient needs an id.")
				break
			}
		}
		// repeated ids are merged, so the bound applies to their sum
		totals := make(map[uuid.UUID]int, len(req.Ingredients))
		for _, item := range req.Ingredients {
			if item.Amount < minIngredientAmount {
				verr.Add("ingredients", "Ingredient amount must be at least 1.")
				break
			}
			if item.Amount > maxIngredientAmount || totals[item.ID] > maxIngredientAmount-item.Amount {
				verr.Add("ingredients", fmt.Sprintf("Ingredient amount must be at most %d.", maxIngredientAmount))
				break
			}
			totals[item.ID] += item.Amount
		}
	}

	if req.Tags == nil {
		if requireAll {
			verr.Add("tags", "This field is required.")
		}
	} else if len(req.Tags) == 0 {
		verr.Add("tags", "At least one tag is required.")
	} else {
		seen := make(map[uuid.UUID]struct{}, len(req.Tags))
		for _, id := range req.Tags {
			if _, dup := seen[id]; dup {
				verr.Add("tags", "Tags must not repeat.")
				break
			}
			seen[id] = struct{}{}
		}
	}

	return verr.OrNil()
}

// MergeIngredientAmounts sums the amounts of repeated ingredient ids keeping
// the position of the first occurrence.
func MergeIngredientAmounts(items []types.IngredientAmount) []types.IngredientAmount {
	index := make(map[uuid.UUID]int, len(items))
	merged := make([]types.IngredientAmount, 0, len(items))
	for _, item := range items {
		if i, ok := index[item.ID]; ok {
			merged[i].Amount += item.Amount
			continue
		}
		index[item.ID] = len(merged)
		merged = append(merged, item)
	}
	return merged
}
