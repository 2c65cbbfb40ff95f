// Package main is a repair tool for dirty migration state in the directory
// database. Dirty state occurs when the golang-migrate runner marks a migration
// version as in-progress (dirty=true) but the migration process was interrupted
// before it could complete. This tool connects with the server's configuration,
// checks the schema_migrations table, and clears the dirty flag so that the
// migration runner can retry cleanly on the next server startup.
package main

import (
	"context"
	"log"
	"os"

	"github.com/project-directory/directory/internal/config"
	"github.com/project-directory/directory/internal/db"
)

type migrationState struct {
	Version int  `db:"version"`
	Dirty   bool `db:"dirty"`
}

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	database, err := db.Connect(ctx, cfg.Database.GetDSN(), db.PoolSettings{MaxOpenConns: 1, MaxIdleConns: 1})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	log.Println("Connected to database successfully")

	const stateQuery = `SELECT version, dirty FROM schema_migrations LIMIT 1`

	var state migrationState
	if err := database.GetContext(ctx, &state, stateQuery); err != nil {
		log.Fatalf("Failed to check migration state: %v", err)
	}

	log.Printf("Current migration state: version=%d, dirty=%v", state.Version, state.Dirty)

	if !state.Dirty {
		log.Println("Migration state is already clean")
		return
	}

	log.Println("Fixing dirty migration state...")
	if _, err := database.ExecContext(ctx, `UPDATE schema_migrations SET dirty = false`); err != nil {
		log.Fatalf("Failed to fix dirty state: %v", err)
	}

	if err := database.GetContext(ctx, &state, stateQuery); err != nil {
		log.Fatalf("Failed to check final migration state: %v", err)
	}
	log.Printf("Final migration state: version=%d, dirty=%v", state.Version, state.Dirty)
}
