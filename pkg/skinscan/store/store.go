// Package store defines persistence for the catalog and ingredient tables.
// Both tables are written by the importer and read-only at serving time.
package store

import (
	"context"

	"github.com/skinscan/skinscan/pkg/skinscan/catalog"
)

// Store persists products and ingredients.
//
// Products returns records in insertion order; the selector's tie-break
// depends on that ordering being stable.
type Store interface {
	Close() error

	Products(ctx context.Context) ([]catalog.Product, error)
	UpsertProduct(ctx context.Context, p catalog.Product) error

	// IngredientByName looks up an ingredient case-insensitively.
	IngredientByName(ctx context.Context, name string) (catalog.Ingredient, bool, error)
	UpsertIngredient(ctx context.Context, ing catalog.Ingredient) error
}
