package seed

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
)

// Options configuration for the seeder
type Options struct {
	Users          int
	RecipesPerUser int
	Ingredients    int
	Clean          bool
	// Seed makes the generated data repeatable when non-zero.
	Seed     int64
	FastHash bool
}

// DefaultOptions seeds a small demo database.
func DefaultOptions() Options {
	return Options{Users: 10, RecipesPerUser: 3, Ingredients: 40}
}

// DefaultTags are created when the tag table is empty.
var DefaultTags = []models.Tag{
	{Name: "Breakfast", Slug: "breakfast"},
	{Name: "Lunch", Slug: "lunch"},
	{Name: "Dinner", Slug: "dinner"},
}

// Summary counts what a seeding run created.
type Summary struct {
	Users         int
	Recipes       int
	Subscriptions int
	Favorites     int
	CartEntries   int
}

// Seeder fills a database with demo users, recipes and relations
type Seeder struct {
	db *gorm.DB
}

func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run seeds the database according to opts.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Summary, error) {
	if opts.Clean {
		if err := s.ClearAll(ctx); err != nil {
			return nil, err
		}
	}

	factory, err := NewFactory(s.db, opts.Seed, opts.FastHash)
	if err != nil {
		return nil, err
	}

	tags, err := s.ensureTags(ctx)
	if err != nil {
		return nil, err
	}
	ingredients, err := factory.EnsureIngredients(ctx, opts.Ingredients)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	users := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		u, err := factory.CreateUser(ctx)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	summary.Users = len(users)

	var recipes []*models.Recipe
	for _, u := range users {
		for j := 0; j < opts.RecipesPerUser; j++ {
			r, err := factory.CreateRecipe(ctx, u, tags, ingredients)
			if err != nil {
				return nil, err
			}
			recipes = append(recipes, r)
		}
	}
	summary.Recipes = len(recipes)

	if err := s.createRelations(ctx, factory, users, recipes, summary); err != nil {
		return nil, err
	}

	logging.Info().
		Int("users", summary.Users).
		Int("recipes", summary.Recipes).
		Int("subscriptions", summary.Subscriptions).
		Int("favorites", summary.Favorites).
		Int("cart_entries", summary.CartEntries).
		Msg("seeding complete")
	return summary, nil
}

func (s *Seeder) ensureTags(ctx context.Context) ([]models.Tag, error) {
	db := s.db.WithContext(ctx)
	var tags []models.Tag
	if err := db.Order("id").Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) > 0 {
		return tags, nil
	}
	tags = append([]models.Tag(nil), DefaultTags...)
	if err := db.Create(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to create default tags: %w", err)
	}
	return tags, nil
}

// createRelations makes every user follow, favorite and cart a few random
// picks. Self-follows are skipped.
func (s *Seeder) createRelations(ctx context.Context, f *Factory, users []*models.User, recipes []*models.Recipe, summary *Summary) error {
	db := s.db.WithContext(ctx)
	for _, u := range users {
		for _, i := range f.pick(len(users), 0, 3) {
			author := users[i]
			if author.ID == u.ID {
				continue
			}
			if err := db.Omit("User", "Author").Create(&models.Subscription{UserID: u.ID, AuthorID: author.ID}).Error; err != nil {
				return fmt.Errorf("failed to create subscription: %w", err)
			}
			summary.Subscriptions++
		}
		if len(recipes) == 0 {
			continue
		}
		for _, i := range f.pick(len(recipes), 0, 4) {
			if err := db.Omit("User", "Recipe").Create(&models.Favorite{UserID: u.ID, RecipeID: recipes[i].ID}).Error; err != nil {
				return fmt.Errorf("failed to create favorite: %w", err)
			}
			summary.Favorites++
		}
		for _, i := range f.pick(len(recipes), 0, 2) {
			if err := db.Omit("User", "Recipe").Create(&models.ShoppingCartEntry{UserID: u.ID, RecipeID: recipes[i].ID}).Error; err != nil {
				return fmt.Errorf("failed to create cart entry: %w", err)
			}
			summary.CartEntries++
		}
	}
	return nil
}

// ClearAll deletes every row, dependents first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	db := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	if err := db.Exec("DELETE FROM recipe_tags").Error; err != nil {
		return fmt.Errorf("failed to clear recipe_tags: %w", err)
	}
	for _, m := range []any{
		&models.ShoppingCartEntry{},
		&models.Favorite{},
		&models.Subscription{},
		&models.RecipeIngredient{},
		&models.Recipe{},
		&models.Ingredient{},
		&models.Tag{},
		&models.User{},
	} {
		if err := db.Delete(m).Error; err != nil {
			return fmt.Errorf("failed to clear %T: %w", m, err)
		}
	}
	logging.Info().Msg("database cleared")
	return nil
}
