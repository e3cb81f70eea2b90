package service

import (
	"context"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*types.RegisteredUser, error)
	Login(ctx context.Context, email, password string) (string, error)
	GenerateToken(user *models.User) (string, error)
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
	RevokeToken(ctx context.Context, claims *types.TokenClaims) error
	SetPassword(ctx context.Context, userID uint, current, next string) error
}

// IUserService defines the interface for user and subscription operations
type IUserService interface {
	List(ctx context.Context, viewerID uint, limit, offset int) ([]types.User, int64, error)
	Get(ctx context.Context, viewerID, id uint) (*types.User, error)
	SetAvatar(ctx context.Context, userID uint, dataURL string) (string, error)
	DeleteAvatar(ctx context.Context, userID uint) error
	Subscribe(ctx context.Context, userID, authorID uint, recipesLimit int) (*types.Subscription, error)
	Unsubscribe(ctx context.Context, userID, authorID uint) error
	Subscriptions(ctx context.Context, userID uint, limit, offset, recipesLimit int) ([]types.Subscription, int64, error)
}

// ICatalogService defines the read-only tag and ingredient lookups
type ICatalogService interface {
	ListTags(ctx context.Context) ([]types.Tag, error)
	GetTag(ctx context.Context, id uint) (*types.Tag, error)
	ListIngredients(ctx context.Context, prefix string) ([]types.Ingredient, error)
	GetIngredient(ctx context.Context, id uint) (*types.Ingredient, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	CreateRecipe(ctx context.Context, authorID uint, req *types.RecipeRequest) (*types.Recipe, error)
	UpdateRecipe(ctx context.Context, userID, id uint, req *types.RecipeRequest) (*types.Recipe, error)
	DeleteRecipe(ctx context.Context, userID, id uint) error
	GetRecipe(ctx context.Context, viewerID, id uint) (*types.Recipe, error)
	ListRecipes(ctx context.Context, viewerID uint, filter types.RecipeFilter, limit, offset int) ([]types.Recipe, int64, error)
	AddFavorite(ctx context.Context, userID, recipeID uint) (*types.ShortRecipe, error)
	RemoveFavorite(ctx context.Context, userID, recipeID uint) error
	AddToCart(ctx context.Context, userID, recipeID uint) (*types.ShortRecipe, error)
	RemoveFromCart(ctx context.Context, userID, recipeID uint) error
	ShoppingList(ctx context.Context, userID uint) ([]ShoppingListItem, error)
	ShortLink(ctx context.Context, recipeID uint) (string, error)
}

var (
	_ IAuthService    = (*AuthService)(nil)
	_ IUserService    = (*UserService)(nil)
	_ ICatalogService = (*CatalogService)(nil)
	_ IRecipeService  = (*RecipeService)(nil)
	_ ImageStore      = (*S3ImageStore)(nil)
	_ ImageStore      = (*LocalImageStore)(nil)
)
