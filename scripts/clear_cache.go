package main

import (
	"context"
	"ethereum-block-explorer/internal/adapters/secondary"
	"ethereum-block-explorer/internal/infrastructure/config"
	"ethereum-block-explorer/internal/infrastructure/database"
	"fmt"
	"log"
	"time"

	"github.com/cockroachdb/pebble"
	"go.mongodb.org/mongo-driver/bson"
)

func main() {
	fmt.Println("Clearing block cache...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cfg.Cache.Driver {
	case config.CacheDriverMongoDB:
		clearMongo(ctx, cfg)
	case config.CacheDriverPebble:
		clearPebble(cfg.Cache.PebblePath)
	default:
		fmt.Println("Block cache is disabled, nothing to clear")
		return
	}

	fmt.Println("Block cache cleared successfully!")
}

func clearMongo(ctx context.Context, cfg *config.Config) {
	db, err := database.NewMongoDB(ctx, &cfg.MongoDB)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer db.Close(ctx)

	result, err := db.BlocksCollection().DeleteMany(ctx, bson.M{})
	if err != nil {
		log.Fatalf("Failed to clear collection %s: %v", cfg.MongoDB.Collection, err)
	}
	fmt.Printf("Cleared %d documents from collection: %s\n", result.DeletedCount, cfg.MongoDB.Collection)
}

func clearPebble(path string) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		log.Fatal("Failed to open pebble database:", err)
	}
	defer db.Close()

	lower, upper := secondary.BlockKeyBounds()

	iter, err := db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
	if err != nil {
		log.Fatal("Failed to iterate pebble database:", err)
	}
	count := 0
	for iter.First(); iter.Valid(); iter.Next() {
		count++
	}
	if err := iter.Close(); err != nil {
		log.Fatal("Failed to iterate pebble database:", err)
	}

	if err := db.DeleteRange(lower, upper, pebble.Sync); err != nil {
		log.Fatal("Failed to clear pebble database:", err)
	}
	fmt.Printf("Cleared %d blocks from %s\n", count, path)
}
