// Package main mints session tokens for local development. The server only
// validates sessions; issuing them belongs to the surrounding application, so
// this tool signs a token with the configured auth.jwt_secret for the given
// user id. The token is printed to stdout for use as "Authorization: Bearer <token>".
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/project-directory/directory/internal/auth"
	"github.com/project-directory/directory/internal/config"
)

func main() {
	userID := flag.String("user", "", "user id to embed in the token (required)")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	if *userID == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	manager, err := auth.NewJWTManager(cfg.Auth.JWTSecret)
	if err != nil {
		log.Fatalf("Invalid auth.jwt_secret: %v", err)
	}

	token, err := manager.GenerateJWT(*userID, *ttl)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}
	fmt.Println(token)
}
