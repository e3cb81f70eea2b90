package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// RecipeService handles recipe operations
type RecipeService struct {
	db      *gorm.DB
	images  ImageStore
	baseURL string
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, images ImageStore, baseURL string) *RecipeService {
	return &RecipeService{db: db, images: images, baseURL: baseURL}
}

// CreateRecipe validates the payload, stores the image and writes the
// recipe with its tags and ingredient lines in one transaction.
func (s *RecipeService) CreateRecipe(ctx context.Context, authorID uint, req *types.RecipeRequest) (*types.Recipe, error) {
	rel, err := validateRecipe(ctx, s.db, req, true)
	if err != nil {
		return nil, err
	}

	image, err := saveDataURL(ctx, s.images, "image", RecipeImagesFolder, req.Image)
	if err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		AuthorID:    authorID,
		Name:        req.Name,
		Text:        req.Text,
		Image:       image,
		CookingTime: req.CookingTime,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Author", "Tags", "Ingredients").Create(&recipe).Error; err != nil {
			return err
		}
		return writeRelations(tx, &recipe, rel)
	})
	if err != nil {
		deleteQuietly(ctx, s.images, image)
		return nil, err
	}

	logging.Ctx(ctx).Info().Uint("recipe_id", recipe.ID).Uint("author_id", authorID).Msg("recipe created")
	return s.GetRecipe(ctx, authorID, recipe.ID)
}

// UpdateRecipe replaces the recipe fields, tags and ingredient lines.
// The image is kept unless a new one is supplied.
func (s *RecipeService) UpdateRecipe(ctx context.Context, userID, id uint, req *types.RecipeRequest) (*types.Recipe, error) {
	recipe, err := s.ownedRecipe(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	rel, err := validateRecipe(ctx, s.db, req, false)
	if err != nil {
		return nil, err
	}

	oldImage := recipe.Image
	if req.Image != "" {
		if recipe.Image, err = saveDataURL(ctx, s.images, "image", RecipeImagesFolder, req.Image); err != nil {
			return nil, err
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(recipe).Select("name", "text", "cooking_time", "image").Updates(map[string]any{
			"name":         req.Name,
			"text":         req.Text,
			"cooking_time": req.CookingTime,
			"image":        recipe.Image,
		}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		return writeRelations(tx, recipe, rel)
	})
	if err != nil {
		if recipe.Image != oldImage {
			deleteQuietly(ctx, s.images, recipe.Image)
		}
		return nil, err
	}
	if recipe.Image != oldImage {
		deleteQuietly(ctx, s.images, oldImage)
	}

	return s.GetRecipe(ctx, userID, recipe.ID)
}

// writeRelations sets the tag set and inserts the ingredient lines.
func writeRelations(tx *gorm.DB, recipe *models.Recipe, rel *recipeRelations) error {
	if err := tx.Model(recipe).Association("Tags").Replace(rel.tags); err != nil {
		return err
	}
	lines := make([]models.RecipeIngredient, len(rel.ingredients))
	for i, ri := range rel.ingredients {
		lines[i] = models.RecipeIngredient{RecipeID: recipe.ID, IngredientID: ri.IngredientID, Amount: ri.Amount}
	}
	return tx.Omit("Ingredient").Create(&lines).Error
}

// DeleteRecipe removes the recipe and everything that references it.
// Dependents are deleted explicitly so the cascade also holds when the
// engine does not enforce foreign keys.
func (s *RecipeService) DeleteRecipe(ctx context.Context, userID, id uint) error {
	recipe, err := s.ownedRecipe(ctx, userID, id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, dep := range []any{&models.Favorite{}, &models.ShoppingCartEntry{}, &models.RecipeIngredient{}} {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(dep).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(recipe).Error
	})
	if err != nil {
		return err
	}

	deleteQuietly(ctx, s.images, recipe.Image)
	logging.Ctx(ctx).Info().Uint("recipe_id", id).Msg("recipe deleted")
	return nil
}

// ownedRecipe loads a recipe and checks that userID wrote it
func (s *RecipeService) ownedRecipe(ctx context.Context, userID, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, id).Error; err != nil {
		return nil, notFound(err, "recipe")
	}
	if recipe.AuthorID != userID {
		return nil, ErrForbidden
	}
	return &recipe, nil
}

// GetRecipe retrieves a recipe by ID as seen by viewerID
func (s *RecipeService) GetRecipe(ctx context.Context, viewerID, id uint) (*types.Recipe, error) {
	var recipe models.Recipe
	if err := s.withDetails(ctx).First(&recipe, id).Error; err != nil {
		return nil, notFound(err, "recipe")
	}
	flags, err := loadViewerFlags(ctx, s.db, viewerID, []models.Recipe{recipe})
	if err != nil {
		return nil, err
	}
	out := toRecipe(&recipe, flags)
	return &out, nil
}

// ListRecipes returns a filtered page of recipes, newest first.
// Favorite and cart filters are ignored for anonymous viewers.
func (s *RecipeService) ListRecipes(ctx context.Context, viewerID uint, filter types.RecipeFilter, limit, offset int) ([]types.Recipe, int64, error) {
	filtered := func(q *gorm.DB) *gorm.DB {
		if filter.AuthorID != 0 {
			q = q.Where("recipes.author_id = ?", filter.AuthorID)
		}
		if len(filter.TagSlugs) > 0 {
			q = q.Where("recipes.id IN (?)", s.db.Table("recipe_tags").
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", filter.TagSlugs))
		}
		if viewerID != 0 && filter.IsFavorited {
			q = q.Where("recipes.id IN (?)", s.db.Model(&models.Favorite{}).
				Select("recipe_id").Where("user_id = ?", viewerID))
		}
		if viewerID != 0 && filter.IsInShoppingCart {
			q = q.Where("recipes.id IN (?)", s.db.Model(&models.ShoppingCartEntry{}).
				Select("recipe_id").Where("user_id = ?", viewerID))
		}
		return q
	}

	var total int64
	if err := filtered(s.db.WithContext(ctx).Model(&models.Recipe{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recipes []models.Recipe
	if err := filtered(s.withDetails(ctx)).
		Order("recipes.pub_date DESC").Order("recipes.id DESC").
		Limit(limit).Offset(offset).
		Find(&recipes).Error; err != nil {
		return nil, 0, err
	}

	flags, err := loadViewerFlags(ctx, s.db, viewerID, recipes)
	if err != nil {
		return nil, 0, err
	}
	out := make([]types.Recipe, len(recipes))
	for i := range recipes {
		out[i] = toRecipe(&recipes[i], flags)
	}
	return out, total, nil
}

func (s *RecipeService) withDetails(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.id") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.id") }).
		Preload("Ingredients.Ingredient")
}

// AddFavorite bookmarks a recipe for userID
func (s *RecipeService) AddFavorite(ctx context.Context, userID, recipeID uint) (*types.ShortRecipe, error) {
	return s.addPair(ctx, &models.Favorite{UserID: userID, RecipeID: recipeID}, "recipe is already in favorites")
}

// RemoveFavorite drops a bookmark
func (s *RecipeService) RemoveFavorite(ctx context.Context, userID, recipeID uint) error {
	return s.removePair(ctx, &models.Favorite{}, userID, recipeID, "recipe is not in favorites")
}

// AddToCart queues a recipe for the shopping list of userID
func (s *RecipeService) AddToCart(ctx context.Context, userID, recipeID uint) (*types.ShortRecipe, error) {
	return s.addPair(ctx, &models.ShoppingCartEntry{UserID: userID, RecipeID: recipeID}, "recipe is already in the shopping cart")
}

// RemoveFromCart takes a recipe out of the shopping cart
func (s *RecipeService) RemoveFromCart(ctx context.Context, userID, recipeID uint) error {
	return s.removePair(ctx, &models.ShoppingCartEntry{}, userID, recipeID, "recipe is not in the shopping cart")
}

// addPair inserts a (user, recipe) row; pair must be *models.Favorite or *models.ShoppingCartEntry.
func (s *RecipeService) addPair(ctx context.Context, pair any, duplicate string) (*types.ShortRecipe, error) {
	var userID, recipeID uint
	switch p := pair.(type) {
	case *models.Favorite:
		userID, recipeID = p.UserID, p.RecipeID
	case *models.ShoppingCartEntry:
		userID, recipeID = p.UserID, p.RecipeID
	}

	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, recipeID).Error; err != nil {
		return nil, notFound(err, "recipe")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(pair).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, newValidationError("recipe", "%s", duplicate)
	}

	if err := s.db.WithContext(ctx).Omit("User", "Recipe").Create(pair).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, newValidationError("recipe", "%s", duplicate)
		}
		return nil, err
	}

	out := toShortRecipe(&recipe)
	return &out, nil
}

func (s *RecipeService) removePair(ctx context.Context, model any, userID, recipeID uint, missing string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", recipeID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}

	res := s.db.WithContext(ctx).Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return newValidationError("recipe", "%s", missing)
	}
	return nil
}
