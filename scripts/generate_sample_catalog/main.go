package main

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"stylecore/internal/catalog"
	"stylecore/internal/model"

	"github.com/shopspring/decimal"
)

// Writes a small gzipped catalogue for local seeding:
//
//	SEED_FILE=data/catalog/products.json.gz go run ./scripts/generate_sample_catalog
func main() {
	dataDir := "data/catalog"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	entries := []catalog.Entry{
		entry("HLJK000281", "Highlander Men Black Solid Denim Jacket", "jackets", "2499", "4999", 20),
		entry("HLJK000282", "Highlander Men Blue Washed Denim Jacket", "jackets", "2299", "", 12),
		entry("SHRT000104", "Men Slim Fit Linen Shirt", "shirts", "1299", "1999", 35),
		entry("SHRT000105", "Men Regular Fit Oxford Shirt", "shirts", "999", "", 0),
		entry("TSRT000510", "Unisex Oversized Cotton T-Shirt", "t-shirts", "599", "799", 80),
		entry("TRSR000033", "Men Tapered Fit Chinos", "trousers", "1499", "", 18),
	}
	inactive := false
	entries[3].IsActive = &inactive

	filePath := filepath.Join(dataDir, "products.json.gz")
	if err := createCatalogueFile(filePath, entries); err != nil {
		log.Fatalf("Failed to create %s: %v", filePath, err)
	}

	fmt.Printf("Created %s with %d products\n", filePath, len(entries))
	fmt.Println("\nSeed it at startup with:")
	fmt.Printf("  SEED_FILE=%s\n", filePath)
}

func entry(id, title, category, price, compareAt string, stock int) catalog.Entry {
	e := catalog.Entry{
		ID: id,
		CreateProductRequest: model.CreateProductRequest{
			Title:    title,
			Price:    decimal.RequireFromString(price),
			Category: category,
			Images:   []string{fmt.Sprintf("/product/images/%s/%s_1.webp", category, id)},
			SKU:      id,
			Stock:    stock,
		},
	}
	if compareAt != "" {
		d := decimal.RequireFromString(compareAt)
		e.CompareAtPrice = &d
	}
	return e
}

func createCatalogueFile(filePath string, entries []catalog.Entry) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	enc := json.NewEncoder(gzipWriter)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("failed to write catalogue: %w", err)
	}

	return nil
}
