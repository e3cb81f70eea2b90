package service

import (
	"context"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

func toUser(u *models.User, isSubscribed bool) types.User {
	return types.User{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: isSubscribed,
		Avatar:       u.Avatar,
	}
}

func toRegisteredUser(u *models.User) types.RegisteredUser {
	return types.RegisteredUser{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func toTag(t *models.Tag) types.Tag {
	return types.Tag{ID: t.ID, Name: t.Name, Slug: t.Slug}
}

func toIngredient(i *models.Ingredient) types.Ingredient {
	return types.Ingredient{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}

func toShortRecipe(r *models.Recipe) types.ShortRecipe {
	return types.ShortRecipe{ID: r.ID, Name: r.Name, Image: r.Image, CookingTime: r.CookingTime}
}

// viewerFlags holds the per-viewer computed fields for a batch of recipes.
type viewerFlags struct {
	subscribed map[uint]bool
	favorited  map[uint]bool
	inCart     map[uint]bool
}

func toRecipe(r *models.Recipe, flags *viewerFlags) types.Recipe {
	out := types.Recipe{
		ID:               r.ID,
		Tags:             make([]types.Tag, 0, len(r.Tags)),
		Author:           toUser(&r.Author, flags.subscribed[r.AuthorID]),
		Ingredients:      make([]types.RecipeIngredient, 0, len(r.Ingredients)),
		IsFavorited:      flags.favorited[r.ID],
		IsInShoppingCart: flags.inCart[r.ID],
		Name:             r.Name,
		Image:            r.Image,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
	}
	for i := range r.Tags {
		out.Tags = append(out.Tags, toTag(&r.Tags[i]))
	}
	for _, ri := range r.Ingredients {
		out.Ingredients = append(out.Ingredients, types.RecipeIngredient{
			ID:              ri.Ingredient.ID,
			Name:            ri.Ingredient.Name,
			MeasurementUnit: ri.Ingredient.MeasurementUnit,
			Amount:          ri.Amount,
		})
	}
	return out
}

// loadViewerFlags resolves is_subscribed, is_favorited and is_in_shopping_cart
// for recipes in three queries. Anonymous viewers (id 0) get all false.
func loadViewerFlags(ctx context.Context, db *gorm.DB, viewerID uint, recipes []models.Recipe) (*viewerFlags, error) {
	flags := &viewerFlags{
		subscribed: map[uint]bool{},
		favorited:  map[uint]bool{},
		inCart:     map[uint]bool{},
	}
	if viewerID == 0 || len(recipes) == 0 {
		return flags, nil
	}

	recipeIDs := make([]uint, len(recipes))
	authorIDs := make([]uint, len(recipes))
	for i, r := range recipes {
		recipeIDs[i] = r.ID
		authorIDs[i] = r.AuthorID
	}

	var err error
	if flags.subscribed, err = subscribedTo(ctx, db, viewerID, authorIDs); err != nil {
		return nil, err
	}
	if flags.favorited, err = pairSet(ctx, db, &models.Favorite{}, viewerID, recipeIDs); err != nil {
		return nil, err
	}
	if flags.inCart, err = pairSet(ctx, db, &models.ShoppingCartEntry{}, viewerID, recipeIDs); err != nil {
		return nil, err
	}
	return flags, nil
}

// subscribedTo returns which of authorIDs the viewer follows.
func subscribedTo(ctx context.Context, db *gorm.DB, viewerID uint, authorIDs []uint) (map[uint]bool, error) {
	set := map[uint]bool{}
	if viewerID == 0 || len(authorIDs) == 0 {
		return set, nil
	}
	var ids []uint
	err := db.WithContext(ctx).Model(&models.Subscription{}).
		Where("user_id = ? AND author_id IN ?", viewerID, authorIDs).
		Pluck("author_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// pairSet returns which recipeIDs the user has a (user, recipe) row for in model's table.
func pairSet(ctx context.Context, db *gorm.DB, model any, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	var ids []uint
	err := db.WithContext(ctx).Model(model).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, err
	}
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}
