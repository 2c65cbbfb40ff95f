// Package main is a diagnostic tool for testing database connectivity and
// inspecting live directory data. It connects with the server's configuration,
// lists projects with their owners, and cross-checks each owner against the
// successful claim attempts recorded for that project. The binary exits with a
// non-zero code when the database is unreachable or an inconsistency is found,
// so it can gate deployments in CI/CD pipeline steps.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/project-directory/directory/internal/config"
	"github.com/project-directory/directory/internal/db"
	"github.com/project-directory/directory/internal/db/models"
	"github.com/project-directory/directory/internal/db/repositories"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	database, err := db.Connect(ctx, cfg.Database.GetDSN(), db.PoolSettings{MaxOpenConns: 2, MaxIdleConns: 1})
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer database.Close()

	var projects []models.Project
	err = database.SelectContext(ctx, &projects,
		`SELECT id, name, repository_url, owner_id, created_at, updated_at FROM projects ORDER BY created_at`)
	if err != nil {
		log.Fatalf("Query failed: %v", err)
	}

	attempts := repositories.NewClaimAttemptRepository(database)

	fmt.Println("=== PROJECTS ===")
	problems := 0
	for _, p := range projects {
		successes, err := attempts.CountSuccessful(ctx, p.ID)
		if err != nil {
			log.Fatalf("Counting claim attempts for %s: %v", p.ID, err)
		}

		owner := "<unclaimed>"
		if p.OwnerID != nil {
			owner = *p.OwnerID
		}
		fmt.Printf("Project: %s (ID: %s) - owner: %s - successful claims: %d\n", p.Name, p.ID, owner, successes)

		// An owner may predate the attempt log, but never more than one success.
		if successes > 1 || (successes == 1 && p.OwnerID == nil) {
			fmt.Printf("  INCONSISTENT: %d successful claim(s) for owner %s\n", successes, owner)
			problems++
		}
	}

	if len(projects) == 0 {
		fmt.Println("No projects found!")
	}
	if problems > 0 {
		log.Fatalf("%d inconsistent project(s)", problems)
	}
}
