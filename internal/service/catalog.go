package service

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// CatalogService serves the read-only tag and ingredient dictionaries
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

func (s *CatalogService) ListTags(ctx context.Context) ([]types.Tag, error) {
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("name").Find(&tags).Error; err != nil {
		return nil, err
	}
	out := make([]types.Tag, len(tags))
	for i := range tags {
		out[i] = toTag(&tags[i])
	}
	return out, nil
}

func (s *CatalogService) GetTag(ctx context.Context, id uint) (*types.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		return nil, notFound(err, "tag")
	}
	out := toTag(&tag)
	return &out, nil
}

// ListIngredients returns ingredients whose name starts with prefix,
// case-insensitively. An empty prefix lists everything.
func (s *CatalogService) ListIngredients(ctx context.Context, prefix string) ([]types.Ingredient, error) {
	q := s.db.WithContext(ctx).Order("name").Order("id")
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	// sqlite's LOWER only folds ASCII, so the prefix is matched in Go there.
	foldInGo := prefix != "" && s.db.Dialector.Name() == "sqlite"
	if prefix != "" && !foldInGo {
		q = q.Where("LOWER(name) LIKE ? ESCAPE '\\'", escapeLike(prefix)+"%")
	}

	var ingredients []models.Ingredient
	if err := q.Find(&ingredients).Error; err != nil {
		return nil, err
	}
	if foldInGo {
		matched := ingredients[:0]
		for _, ing := range ingredients {
			if strings.HasPrefix(strings.ToLower(ing.Name), prefix) {
				matched = append(matched, ing)
			}
		}
		ingredients = matched
	}
	out := make([]types.Ingredient, len(ingredients))
	for i := range ingredients {
		out[i] = toIngredient(&ingredients[i])
	}
	return out, nil
}

func (s *CatalogService) GetIngredient(ctx context.Context, id uint) (*types.Ingredient, error) {
	var ing models.Ingredient
	if err := s.db.WithContext(ctx).First(&ing, id).Error; err != nil {
		return nil, notFound(err, "ingredient")
	}
	out := toIngredient(&ing)
	return &out, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
