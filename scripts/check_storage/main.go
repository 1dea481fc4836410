package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"stylecore/internal/config"
	"stylecore/internal/store"
)

// Reports which backend the server would use with the current environment
// and how many rows each table holds.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dispatcher := store.NewDispatcher(logger,
		store.PostgresOpener(cfg.Database, logger),
		store.FileOpener(cfg.Store.DataFile, logger),
	)
	if err := dispatcher.Open(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Unable to open storage: %v\n", err)
		os.Exit(1)
	}
	defer dispatcher.Close()

	fmt.Printf("Storage backend: %s\n", dispatcher.Mode())
	if dispatcher.Mode() == "file" {
		fmt.Printf("Data file: %s\n", cfg.Store.DataFile)
	}

	fmt.Println("\nTables:")
	for _, t := range store.Schema {
		rows, err := dispatcher.Execute(ctx, store.SelectList{Table: t.Name})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Query on %s failed: %v\n", t.Name, err)
			os.Exit(1)
		}
		fmt.Printf("  - %-12s %d rows\n", t.Name, len(rows))
	}
}
