package service

import (
	"context"
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/pageza/foodgram/backend/internal/models"
)

const (
	shortCodeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	shortCodeLength   = 6
)

// NewShortCode returns a random alphanumeric code for short links
func NewShortCode() (string, error) {
	return gonanoid.Generate(shortCodeAlphabet, shortCodeLength)
}

// ShortLink returns a share link for an existing recipe. The code is not
// stored, so the link does not resolve back to the recipe.
func (s *RecipeService) ShortLink(ctx context.Context, recipeID uint) (string, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", recipeID).Count(&count).Error; err != nil {
		return "", err
	}
	if count == 0 {
		return "", fmt.Errorf("recipe: %w", ErrNotFound)
	}

	code, err := NewShortCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate short code: %w", err)
	}
	return s.baseURL + "/s/" + code, nil
}
