package service

import (
	"context"
	"regexp"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

var (
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// RegisterValidators adds the "username" and "slug" tags to v.
func RegisterValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
}

// ValidUsername reports whether name is an acceptable username
func ValidUsername(name string) bool {
	return len(name) <= 150 && usernamePattern.MatchString(name)
}

// ValidSlug reports whether slug is an acceptable tag slug
func ValidSlug(slug string) bool {
	return len(slug) <= 32 && slugPattern.MatchString(slug)
}

// maxSmallInt bounds amounts and cooking times to a SMALLINT.
const maxSmallInt = 32767

// recipeRelations is what a valid recipe payload resolves to.
type recipeRelations struct {
	tags        []models.Tag
	ingredients []models.RecipeIngredient
}

// validateRecipe checks the payload and resolves tag and ingredient ids.
func validateRecipe(ctx context.Context, db *gorm.DB, req *types.RecipeRequest, requireImage bool) (*recipeRelations, error) {
	if requireImage && req.Image == "" {
		return nil, newValidationError("image", "this field is required")
	}
	if req.CookingTime < 1 {
		return nil, newValidationError("cooking_time", "cooking time must be at least 1 minute")
	}
	if req.CookingTime > maxSmallInt {
		return nil, newValidationError("cooking_time", "cooking time must be at most %d minutes", maxSmallInt)
	}

	if len(req.Ingredients) == 0 {
		return nil, newValidationError("ingredients", "at least one ingredient is required")
	}
	ingredientIDs := make([]uint, 0, len(req.Ingredients))
	seenIngredients := make(map[uint]struct{}, len(req.Ingredients))
	for _, in := range req.Ingredients {
		if _, dup := seenIngredients[in.ID]; dup {
			return nil, newValidationError("ingredients", "ingredient %d is listed more than once", in.ID)
		}
		seenIngredients[in.ID] = struct{}{}
		if in.Amount < 1 {
			return nil, newValidationError("ingredients", "amount of ingredient %d must be at least 1", in.ID)
		}
		if in.Amount > maxSmallInt {
			return nil, newValidationError("ingredients", "amount of ingredient %d must be at most %d", in.ID, maxSmallInt)
		}
		ingredientIDs = append(ingredientIDs, in.ID)
	}

	if len(req.Tags) == 0 {
		return nil, newValidationError("tags", "at least one tag is required")
	}
	seenTags := make(map[uint]struct{}, len(req.Tags))
	for _, id := range req.Tags {
		if _, dup := seenTags[id]; dup {
			return nil, newValidationError("tags", "tag %d is listed more than once", id)
		}
		seenTags[id] = struct{}{}
	}

	var ingredients []models.Ingredient
	if err := db.WithContext(ctx).Where("id IN ?", ingredientIDs).Find(&ingredients).Error; err != nil {
		return nil, err
	}
	known := make(map[uint]struct{}, len(ingredients))
	for _, ing := range ingredients {
		known[ing.ID] = struct{}{}
	}
	rel := &recipeRelations{ingredients: make([]models.RecipeIngredient, 0, len(req.Ingredients))}
	for _, in := range req.Ingredients {
		if _, ok := known[in.ID]; !ok {
			return nil, newValidationError("ingredients", "ingredient %d does not exist", in.ID)
		}
		rel.ingredients = append(rel.ingredients, models.RecipeIngredient{IngredientID: in.ID, Amount: in.Amount})
	}

	if err := db.WithContext(ctx).Where("id IN ?", req.Tags).Find(&rel.tags).Error; err != nil {
		return nil, err
	}
	if len(rel.tags) != len(req.Tags) {
		found := make(map[uint]struct{}, len(rel.tags))
		for _, t := range rel.tags {
			found[t.ID] = struct{}{}
		}
		for _, id := range req.Tags {
			if _, ok := found[id]; !ok {
				return nil, newValidationError("tags", "tag %d does not exist", id)
			}
		}
	}

	return rel, nil
}
