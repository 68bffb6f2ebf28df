// Command import-catalog loads product and ingredient JSON exports into the
// SQLite catalog database.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/skinscan/skinscan/pkg/skinscan/catalog"
	"github.com/skinscan/skinscan/pkg/skinscan/store/sqlite"
)

func main() {
	var (
		dbPath          = flag.String("db", "", "SQLite database path (required)")
		productsPath    = flag.String("products", "", "products.json path")
		ingredientsPath = flag.String("ingredients", "", "ingredients.json path")
	)
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("--db required")
	}
	if *productsPath == "" && *ingredientsPath == "" {
		log.Fatal("--products or --ingredients required")
	}

	ctx := context.Background()
	st, err := sqlite.Open(ctx, *dbPath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer st.Close()

	if *productsPath != "" {
		products, err := catalog.LoadProductsFile(*productsPath)
		if err != nil {
			log.Fatalf("load products: %v", err)
		}
		for _, p := range products {
			if err := st.UpsertProduct(ctx, p); err != nil {
				log.Fatalf("upsert product %q: %v", p.Name, err)
			}
		}
		log.Printf("imported %d products", len(products))
	}

	if *ingredientsPath != "" {
		ingredients, err := catalog.LoadIngredientsFile(*ingredientsPath)
		if err != nil {
			log.Fatalf("load ingredients: %v", err)
		}
		for _, ing := range ingredients {
			if err := st.UpsertIngredient(ctx, ing); err != nil {
				log.Fatalf("upsert ingredient %q: %v", ing.Name, err)
			}
		}
		log.Printf("imported %d ingredients", len(ingredients))
	}
}
