// Package seed loads reference data and generates demo content for
// development databases.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
)

const fixtureBatchSize = 500

// LoadIngredients reads a JSON array of {"name", "measurement_unit"}
// objects and inserts the ones not already present. It returns the
// number of rows created.
func LoadIngredients(ctx context.Context, db *gorm.DB, r io.Reader) (int64, error) {
	var items []models.Ingredient
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return 0, fmt.Errorf("failed to decode ingredients: %w", err)
	}
	for i := range items {
		it := &items[i]
		it.ID = 0
		it.Name = strings.TrimSpace(it.Name)
		it.MeasurementUnit = strings.TrimSpace(it.MeasurementUnit)
		if it.Name == "" || it.MeasurementUnit == "" {
			return 0, fmt.Errorf("ingredient #%d: name and measurement_unit are required", i+1)
		}
		if len(it.Name) > 128 || len(it.MeasurementUnit) > 64 {
			return 0, fmt.Errorf("ingredient #%d (%s): value too long", i+1, it.Name)
		}
	}
	return insertIgnoringDuplicates(ctx, db, &items, len(items))
}

// LoadTags reads a JSON array of {"name", "slug"} objects.
func LoadTags(ctx context.Context, db *gorm.DB, r io.Reader) (int64, error) {
	var items []models.Tag
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return 0, fmt.Errorf("failed to decode tags: %w", err)
	}
	for i := range items {
		it := &items[i]
		it.ID = 0
		it.Name = strings.TrimSpace(it.Name)
		if it.Name == "" || len(it.Name) > 32 {
			return 0, fmt.Errorf("tag #%d: name must be 1-32 characters", i+1)
		}
		if !service.ValidSlug(it.Slug) {
			return 0, fmt.Errorf("tag #%d: invalid slug %q", i+1, it.Slug)
		}
	}
	return insertIgnoringDuplicates(ctx, db, &items, len(items))
}

func insertIgnoringDuplicates(ctx context.Context, db *gorm.DB, items any, n int) (int64, error) {
	if n == 0 {
		return 0, nil
	}
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(items, fixtureBatchSize)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to insert fixtures: %w", res.Error)
	}
	return res.RowsAffected, nil
}
