package seed

import (
	"context"
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
)

// DemoPassword is the password of every generated user.
const DemoPassword = "foodgram-demo"

var measurementUnits = []string{"g", "kg", "ml", "l", "pcs", "tbsp", "tsp", "cup"}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db    *gorm.DB
	faker *gofakeit.Faker
	hash  string
	seq   int
}

// NewFactory creates a Factory. A zero seed gives random data; any other
// value makes the output repeatable. fastHash uses the minimum bcrypt cost.
func NewFactory(db *gorm.DB, seed int64, fastHash bool) (*Factory, error) {
	cost := bcrypt.DefaultCost
	if fastHash {
		cost = bcrypt.MinCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash demo password: %w", err)
	}
	return &Factory{db: db, faker: gofakeit.New(seed), hash: string(hash)}, nil
}

// CreateUser constructs and persists a user with a unique username.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	f.seq++
	username := fmt.Sprintf("%s%d", sanitizeUsername(f.faker.Username()), f.seq)
	user := &models.User{
		Email:        strings.ToLower(username) + "@example.com",
		Username:     username,
		FirstName:    f.faker.FirstName(),
		LastName:     f.faker.LastName(),
		PasswordHash: f.hash,
	}
	for _, override := range overrides {
		override(user)
	}

	if err := f.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user %s: %w", user.Username, err)
	}
	return user, nil
}

// EnsureIngredients makes sure at least n ingredients exist, generating
// fruit and vegetable names for the missing ones.
func (f *Factory) EnsureIngredients(ctx context.Context, n int) ([]models.Ingredient, error) {
	db := f.db.WithContext(ctx)
	var existing []models.Ingredient
	if err := db.Find(&existing).Error; err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(existing))
	for _, ing := range existing {
		seen[ing.Name+"|"+ing.MeasurementUnit] = struct{}{}
	}

	var created []models.Ingredient
	for attempts := 0; len(existing)+len(created) < n && attempts < n*20; attempts++ {
		name := f.faker.Vegetable()
		if attempts%2 == 1 {
			name = f.faker.Fruit()
		}
		ing := models.Ingredient{
			Name:            strings.ToLower(name),
			MeasurementUnit: measurementUnits[f.faker.Number(0, len(measurementUnits)-1)],
		}
		key := ing.Name + "|" + ing.MeasurementUnit
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		created = append(created, ing)
	}

	if len(created) > 0 {
		if err := db.Create(&created).Error; err != nil {
			return nil, fmt.Errorf("failed to create ingredients: %w", err)
		}
	}
	return append(existing, created...), nil
}

// CreateRecipe builds a recipe for author with 1-3 of tags and 2-6 of
// ingredients, each used at most once.
func (f *Factory) CreateRecipe(ctx context.Context, author *models.User, tags []models.Tag, ingredients []models.Ingredient) (*models.Recipe, error) {
	if len(tags) == 0 || len(ingredients) == 0 {
		return nil, fmt.Errorf("recipes need at least one tag and one ingredient")
	}

	recipe := &models.Recipe{
		AuthorID:    author.ID,
		Name:        f.recipeName(),
		Text:        f.faker.Paragraph(2, 4, 12, "\n\n"),
		Image:       fmt.Sprintf("https://picsum.photos/seed/%s/800/600", f.faker.UUID()),
		CookingTime: f.faker.Number(5, 180),
	}
	for _, i := range f.pick(len(tags), 1, 3) {
		recipe.Tags = append(recipe.Tags, tags[i])
	}

	err := f.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Author", "Ingredients", "Tags.*").Create(recipe).Error; err != nil {
			return err
		}
		for _, i := range f.pick(len(ingredients), 2, 6) {
			line := models.RecipeIngredient{
				RecipeID:     recipe.ID,
				IngredientID: ingredients[i].ID,
				Amount:       f.faker.Number(1, 500),
			}
			if err := tx.Omit("Ingredient").Create(&line).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create recipe %q: %w", recipe.Name, err)
	}
	return recipe, nil
}

func (f *Factory) recipeName() string {
	switch f.faker.Number(0, 3) {
	case 0:
		return f.faker.Breakfast()
	case 1:
		return f.faker.Lunch()
	case 2:
		return f.faker.Dinner()
	default:
		return f.faker.Dessert()
	}
}

// pick returns between lo and hi distinct indexes below n.
func (f *Factory) pick(n, lo, hi int) []int {
	want := min(f.faker.Number(lo, hi), n)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	f.faker.ShuffleAnySlice(idx)
	return idx[:want]
}

func sanitizeUsername(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', strings.ContainsRune("._@+-", r):
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "cook"
	}
	return b.String()
}
