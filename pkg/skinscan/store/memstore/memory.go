// Package memstore provides an in-memory Store, used by tests and by
// deployments that load the catalog straight from JSON without a database.
package memstore

import (
	"context"
	"strings"
	"sync"

	"github.com/skinscan/skinscan/pkg/skinscan/catalog"
	"github.com/skinscan/skinscan/pkg/skinscan/store"
)

type memStore struct {
	mu          sync.RWMutex
	products    []catalog.Product
	productIdx  map[string]int // name|brand -> index into products
	ingredients map[string]catalog.Ingredient
}

// New creates an empty in-memory store.
func New() store.Store {
	return &memStore{
		productIdx:  make(map[string]int),
		ingredients: make(map[string]catalog.Ingredient),
	}
}

// Seed creates a store pre-populated with products and ingredients.
func Seed(products []catalog.Product, ingredients []catalog.Ingredient) store.Store {
	s := New().(*memStore)
	ctx := context.Background()
	for _, p := range products {
		_ = s.UpsertProduct(ctx, p)
	}
	for _, ing := range ingredients {
		_ = s.UpsertIngredient(ctx, ing)
	}
	return s
}

func (s *memStore) Close() error { return nil }

func (s *memStore) Products(_ context.Context) ([]catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]catalog.Product, len(s.products))
	copy(out, s.products)
	return out, nil
}

func (s *memStore) UpsertProduct(_ context.Context, p catalog.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := productKey(p.Name, p.Brand)
	if i, ok := s.productIdx[key]; ok {
		s.products[i] = p
		return nil
	}
	s.productIdx[key] = len(s.products)
	s.products = append(s.products, p)
	return nil
}

func (s *memStore) IngredientByName(_ context.Context, name string) (catalog.Ingredient, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ing, ok := s.ingredients[strings.ToLower(strings.TrimSpace(name))]
	return ing, ok, nil
}

func (s *memStore) UpsertIngredient(_ context.Context, ing catalog.Ingredient) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ingredients[strings.ToLower(ing.Name)] = ing
	return nil
}

func productKey(name, brand string) string {
	return strings.ToLower(name) + "|" + strings.ToLower(brand)
}
