package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/skinscan/skinscan/pkg/skinscan/catalog"
)

func openTestStore(t *testing.T) (context.Context, *sqliteStore) {
	t.Helper()
	ctx := context.Background()
	st, err := Open(ctx, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return ctx, st.(*sqliteStore)
}

func TestProductRoundTrip(t *testing.T) {
	ctx, st := openTestStore(t)
	want := catalog.Product{
		Name:               "Ultra Hydrating Face Wash",
		Brand:              "Mamaearth",
		KeyIngredient:      "Niacinamide",
		RiskScore:          3,
		EffectivenessScore: 7.5,
	}
	if err := st.UpsertProduct(ctx, want); err != nil {
		t.Fatalf("UpsertProduct: %v", err)
	}
	products, err := st.Products(ctx)
	if err != nil {
		t.Fatalf("Products: %v", err)
	}
	if len(products) != 1 || products[0] != want {
		t.Errorf("round trip mismatch: %+v", products)
	}
}

func TestProductsOrderedByInsertion(t *testing.T) {
	ctx, st := openTestStore(t)
	names := []string{"zulu", "alpha", "mike"}
	for _, n := range names {
		if err := st.UpsertProduct(ctx, catalog.Product{Name: n, Brand: "b"}); err != nil {
			t.Fatalf("UpsertProduct: %v", err)
		}
	}
	products, err := st.Products(ctx)
	if err != nil {
		t.Fatalf("Products: %v", err)
	}
	for i, n := range names {
		if products[i].Name != n {
			t.Fatalf("insertion order lost: %v", products)
		}
	}
}

func TestUpsertProductConflictUpdates(t *testing.T) {
	ctx, st := openTestStore(t)
	p := catalog.Product{Name: "Serum", Brand: "Plum", RiskScore: 1}
	if err := st.UpsertProduct(ctx, p); err != nil {
		t.Fatalf("UpsertProduct: %v", err)
	}
	p.RiskScore = 5
	if err := st.UpsertProduct(ctx, p); err != nil {
		t.Fatalf("UpsertProduct: %v", err)
	}
	products, err := st.Products(ctx)
	if err != nil {
		t.Fatalf("Products: %v", err)
	}
	if len(products) != 1 || products[0].RiskScore != 5 {
		t.Errorf("conflict should update in place, got %v", products)
	}
}

func TestIngredientRoundTrip(t *testing.T) {
	ctx, st := openTestStore(t)
	want := catalog.Ingredient{
		Name:             "Niacinamide",
		ShortDescription: "A form of vitamin B3.",
		WhatItDoes:       "Brightens skin.",
		GoodFor:          catalog.StringList{"oily skin", "acne-prone skin"},
		Avoid:            catalog.StringList{},
		URL:              "https://example.com/niacinamide",
	}
	if err := st.UpsertIngredient(ctx, want); err != nil {
		t.Fatalf("UpsertIngredient: %v", err)
	}

	got, ok, err := st.IngredientByName(ctx, "niacinamide")
	if err != nil || !ok {
		t.Fatalf("IngredientByName: ok=%v err=%v", ok, err)
	}
	if got.Name != want.Name || got.WhatItDoes != want.WhatItDoes {
		t.Errorf("scalar fields mismatch: %+v", got)
	}
	if len(got.GoodFor) != 2 || got.GoodFor[1] != "acne-prone skin" {
		t.Errorf("list fields mismatch: %+v", got.GoodFor)
	}

	if _, ok, err := st.IngredientByName(ctx, "unknown"); err != nil || ok {
		t.Errorf("unknown ingredient: ok=%v err=%v", ok, err)
	}
}
