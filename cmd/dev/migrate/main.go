package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"shopapp/pkg/db"
)

func main() {
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		fmt.Fprintln(os.Stderr, "missing DATABASE_URL")
		os.Exit(2)
	}
	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "file://migrations"
	}

	if err := db.Migrate(migrationsPath, databaseURL); err != nil {
		fmt.Fprintf(os.Stderr, "migrate failed: %v\n", err)
		os.Exit(1)
	}

	// Make sure the runtime pool can connect too. DSNs are not printed.
	pool, err := db.Open(context.Background(), databaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "runtime db open failed: %v\n", err)
		os.Exit(1)
	}
	pool.Close()

	fmt.Println("migrations applied")
}
