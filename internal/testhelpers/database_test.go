package testhelpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/models"
)

func TestSetupTestDatabaseIsIsolated(t *testing.T) {
	first := SetupTestDatabase(t)
	second := SetupTestDatabase(t)

	CreateUser(t, first, "alice")

	var count int64
	require.NoError(t, second.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestFixtures(t *testing.T) {
	db := SetupTestDatabase(t)

	author := CreateUser(t, db, "chef")
	tag := CreateTag(t, db, "Breakfast", "breakfast")
	flour := CreateIngredient(t, db, "flour", "g")
	recipe := CreateRecipe(t, db, author, "pancakes", []*models.Tag{tag}, Amount{flour, 200})

	var loaded models.Recipe
	require.NoError(t, db.Preload("Tags").Preload("Ingredients").First(&loaded, recipe.ID).Error)
	assert.Equal(t, author.ID, loaded.AuthorID)
	require.Len(t, loaded.Tags, 1)
	assert.Equal(t, "breakfast", loaded.Tags[0].Slug)
	require.Len(t, loaded.Ingredients, 1)
	assert.Equal(t, 200, loaded.Ingredients[0].Amount)
}

func TestForeignKeysEnforced(t *testing.T) {
	db := SetupTestDatabase(t)

	err := db.Omit("User", "Recipe").Create(&models.Favorite{UserID: 999, RecipeID: 999}).Error
	assert.Error(t, err)
}

func TestPostgresDatabase(t *testing.T) {
	db := SetupPostgresDatabase(t)

	CreateUser(t, db, "pg-user")
	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
