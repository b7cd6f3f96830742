package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/gmllt/taskboard/internal/api"
	"github.com/gmllt/taskboard/internal/logger"
	"github.com/gmllt/taskboard/internal/storage"
	"github.com/gmllt/taskboard/internal/store"
)

func main() {
	configPath := flag.String("config", "config.yml", "path to the YAML configuration")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Initialize(cfg.Log.Level, cfg.Log.JSON)

	ctx := context.Background()
	slot, err := openSlot(ctx, cfg)
	if err != nil {
		logger.Log.Error("failed to open storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}

	boards := store.New(ctx, slot, store.WithTimeout(cfg.Storage.Timeout))
	router := api.New(boards).Router(cfg.StaticDir)

	logger.Log.Info("task board server starting", "addr", cfg.Listen, "storage", cfg.Storage.Driver)
	if err := http.ListenAndServe(cfg.Listen, router); err != nil {
		logger.Log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// openSlot builds the durable slot selected by the storage driver.
func openSlot(ctx context.Context, cfg *Config) (storage.Slot, error) {
	switch cfg.Storage.Driver {
	case DriverMemory:
		return storage.NewMemorySlot(), nil
	case DriverFile:
		return storage.NewFileSlot(cfg.Storage.Path, cfg.Storage.Key)
	}

	client, err := storage.NewS3Client(ctx, cfg.S3)
	if err != nil {
		return nil, err
	}
	slot := storage.NewS3Slot(client, cfg.S3.Bucket, cfg.Storage.Key)
	ctx, cancel := context.WithTimeout(ctx, cfg.Storage.Timeout)
	defer cancel()
	if err := slot.EnsureBucketExists(ctx); err != nil {
		return nil, err
	}
	return slot, nil
}
