package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"griffe-orders/config"
	"griffe-orders/internal/models"
	"griffe-orders/internal/money"
	"griffe-orders/internal/redisclient"
	"griffe-orders/internal/store"
)

// catalogFile mirrors the scraper's export format: prices arrive as
// Brazilian currency strings and are parsed at this boundary only.
type catalogFile struct {
	Products []catalogEntry `json:"produtos"`
}

type catalogEntry struct {
	Code           string `json:"codigo"`
	Title          string `json:"titulo"`
	Category       string `json:"categoria"`
	WholesalePrice string `json:"preco_atacado"`
	RetailPrice    string `json:"preco_varejo"`
	Weight         string `json:"peso"`
	Image          string `json:"imagem"`
}

func main() {
	path := flag.String("file", "produtos_atacado_completo.json", "path to the scraper catalog JSON")
	flag.Parse()

	cfg := config.Load()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Cache invalidation is best-effort: an unreachable Redis only means
	// stale entries live until their TTL expires.
	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.CatalogTTL)
	if err != nil {
		log.Printf("Redis unavailable, skipping cache invalidation: %v", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	data, err := os.ReadFile(*path)
	if err != nil {
		log.Fatalf("Failed to read catalog file: %v", err)
	}

	var catalog catalogFile
	if err := json.Unmarshal(data, &catalog); err != nil {
		log.Fatalf("Failed to parse catalog file: %v", err)
	}

	ctx := context.Background()
	imported, skipped := 0, 0

	for _, entry := range catalog.Products {
		if entry.Code == "" {
			skipped++
			continue
		}

		wholesale, err := money.ParseBRL(entry.WholesalePrice)
		if err != nil {
			log.Printf("Skipping %s: bad wholesale price: %v", entry.Code, err)
			skipped++
			continue
		}

		retail, err := money.ParseBRL(entry.RetailPrice)
		if err != nil {
			log.Printf("Skipping %s: bad retail price: %v", entry.Code, err)
			skipped++
			continue
		}

		category := entry.Category
		if category == "" {
			category = "OUTROS"
		}

		product := &models.Product{
			Code:           entry.Code,
			Title:          entry.Title,
			Category:       category,
			WholesalePrice: wholesale,
			RetailPrice:    retail,
			Weight:         entry.Weight,
			Image:          entry.Image,
		}

		if err := db.UpsertProduct(ctx, product); err != nil {
			log.Fatalf("Failed to upsert product %s: %v", entry.Code, err)
		}
		if redisClient != nil {
			if err := redisClient.InvalidateProduct(ctx, product.Code); err != nil {
				log.Printf("Failed to invalidate cached product %s: %v", product.Code, err)
			}
		}
		imported++
	}

	log.Printf("Catalog import finished: imported=%d, skipped=%d", imported, skipped)
}
