package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func seedCart(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	author := testhelpers.CreateUser(t, db, "author")
	buyer := testhelpers.CreateUser(t, db, "buyer")
	tag := testhelpers.CreateTag(t, db, "Baking", "baking")
	flour := testhelpers.CreateIngredient(t, db, "flour", "g")
	sugar := testhelpers.CreateIngredient(t, db, "sugar", "g")
	eggs := testhelpers.CreateIngredient(t, db, "eggs", "pcs")

	bread := testhelpers.CreateRecipe(t, db, author, "bread", []*models.Tag{tag},
		testhelpers.Amount{Ingredient: flour, Amount: 200})
	cake := testhelpers.CreateRecipe(t, db, author, "cake", []*models.Tag{tag},
		testhelpers.Amount{Ingredient: flour, Amount: 200},
		testhelpers.Amount{Ingredient: sugar, Amount: 50},
		testhelpers.Amount{Ingredient: eggs, Amount: 3})
	// in another user's cart only
	cookies := testhelpers.CreateRecipe(t, db, author, "cookies", []*models.Tag{tag},
		testhelpers.Amount{Ingredient: sugar, Amount: 500})

	testhelpers.AddToCart(t, db, buyer, bread)
	testhelpers.AddToCart(t, db, buyer, cake)
	testhelpers.AddToCart(t, db, author, cookies)
	return buyer
}

func TestShoppingListAggregates(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	buyer := seedCart(t, db)
	svc := service.NewRecipeService(db, testhelpers.NewMemoryImageStore(), "http://localhost")

	items, err := svc.ShoppingList(context.Background(), buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, []service.ShoppingListItem{
		{Name: "eggs", MeasurementUnit: "pcs", Amount: 3},
		{Name: "flour", MeasurementUnit: "g", Amount: 400},
		{Name: "sugar", MeasurementUnit: "g", Amount: 50},
	}, items)

	assert.Equal(t, "Shopping list:\n\neggs — 3pcs\nflour — 400g\nsugar — 50g\n", service.RenderShoppingList(items))
}

func TestShoppingListEmptyCart(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	user := testhelpers.CreateUser(t, db, "idle")
	svc := service.NewRecipeService(db, testhelpers.NewMemoryImageStore(), "http://localhost")

	_, err := svc.ShoppingList(context.Background(), user.ID)
	assertValidationField(t, err, "shopping_cart")
}

func TestShoppingListOnPostgres(t *testing.T) {
	db := testhelpers.SetupPostgresDatabase(t)
	buyer := seedCart(t, db)
	svc := service.NewRecipeService(db, testhelpers.NewMemoryImageStore(), "http://localhost")

	items, err := svc.ShoppingList(context.Background(), buyer.ID)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, service.ShoppingListItem{Name: "flour", MeasurementUnit: "g", Amount: 400}, items[1])
}

func TestShoppingListFilename(t *testing.T) {
	assert.Equal(t, "buyer_shopping_list.txt", service.ShoppingListFilename("buyer"))
}
