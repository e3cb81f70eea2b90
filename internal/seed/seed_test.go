package seed

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestLoadIngredients(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	ctx := context.Background()
	testhelpers.CreateIngredient(t, db, "flour", "g")

	n, err := LoadIngredients(ctx, db, strings.NewReader(`[
		{"name": "flour", "measurement_unit": "g"},
		{"name": " sugar ", "measurement_unit": "g"},
		{"name": "milk", "measurement_unit": "ml"}
	]`))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	var ingredients []models.Ingredient
	require.NoError(t, db.Order("name").Find(&ingredients).Error)
	require.Len(t, ingredients, 3)
	assert.Equal(t, "sugar", ingredients[2].Name)
}

func TestLoadIngredientsRejectsBadInput(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	ctx := context.Background()

	_, err := LoadIngredients(ctx, db, strings.NewReader(`[{"name": "salt"}]`))
	assert.Error(t, err)

	_, err = LoadIngredients(ctx, db, strings.NewReader(`{"name": "salt"}`))
	assert.Error(t, err)
}

func TestLoadTags(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	ctx := context.Background()

	n, err := LoadTags(ctx, db, strings.NewReader(`[{"name": "Lunch", "slug": "lunch"}, {"name": "Dinner", "slug": "dinner"}]`))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = LoadTags(ctx, db, strings.NewReader(`[{"name": "Bad", "slug": "not a slug"}]`))
	assert.Error(t, err)
}

func TestSeederRun(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	ctx := context.Background()

	summary, err := NewSeeder(db).Run(ctx, Options{Users: 4, RecipesPerUser: 2, Ingredients: 12, Seed: 42, FastHash: true})
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Users)
	assert.Equal(t, 8, summary.Recipes)

	var users []models.User
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 4)
	for _, u := range users {
		assert.True(t, service.ValidUsername(u.Username), u.Username)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(DemoPassword)))
	}

	var tags int64
	require.NoError(t, db.Model(&models.Tag{}).Count(&tags).Error)
	assert.Equal(t, int64(len(DefaultTags)), tags)

	var recipes []models.Recipe
	require.NoError(t, db.Preload("Tags").Preload("Ingredients").Find(&recipes).Error)
	require.Len(t, recipes, 8)
	for _, r := range recipes {
		assert.NotEmpty(t, r.Tags)
		assert.GreaterOrEqual(t, len(r.Ingredients), 2)
		assert.GreaterOrEqual(t, r.CookingTime, 1)
	}

	var subs int64
	require.NoError(t, db.Model(&models.Subscription{}).Where("user_id = author_id").Count(&subs).Error)
	assert.Zero(t, subs)

	var favorites int64
	require.NoError(t, db.Model(&models.Favorite{}).Count(&favorites).Error)
	assert.Equal(t, int64(summary.Favorites), favorites)
}

func TestSeederClean(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	ctx := context.Background()
	seeder := NewSeeder(db)

	_, err := seeder.Run(ctx, Options{Users: 2, RecipesPerUser: 1, Ingredients: 5, Seed: 1, FastHash: true})
	require.NoError(t, err)
	_, err = seeder.Run(ctx, Options{Users: 1, Ingredients: 5, Clean: true, Seed: 2, FastHash: true})
	require.NoError(t, err)

	var users, recipes int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Recipe{}).Count(&recipes).Error)
	assert.Equal(t, int64(1), users)
	assert.Zero(t, recipes)
}

func TestSanitizeUsername(t *testing.T) {
	assert.Equal(t, "JohnDoe", sanitizeUsername("John Doe!"))
	assert.Equal(t, "cook", sanitizeUsername("!!!"))
}

func TestShippedFixturesLoad(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	ctx := context.Background()

	for _, tc := range []struct {
		file string
		load func(context.Context, *gorm.DB, io.Reader) (int64, error)
	}{
		{"../../data/ingredients.json", LoadIngredients},
		{"../../data/tags.json", LoadTags},
	} {
		f, err := os.Open(tc.file)
		require.NoError(t, err)
		n, err := tc.load(ctx, db, f)
		_ = f.Close()
		require.NoError(t, err, tc.file)
		assert.Positive(t, n, tc.file)
	}
}
