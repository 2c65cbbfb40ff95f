// Package main is a development utility that generates a random session signing secret
// and a seed project row. It prints the environment export and a ready-to-run SQL INSERT
// so developers can bring up a local database with a claimable project without any
// admin tooling. Do not reuse generated secrets in production.
package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"

	"github.com/google/uuid"
)

func main() {
	randomBytes := make([]byte, 48)
	if _, err := rand.Read(randomBytes); err != nil {
		log.Fatal(err)
	}
	secret := base64.RawURLEncoding.EncodeToString(randomBytes)
	projectID := uuid.New()

	fmt.Println("==========================================================")
	fmt.Println("Session Secret Generated")
	fmt.Println("==========================================================")
	fmt.Printf("\nexport PDIR_AUTH_JWT_SECRET='%s'\n", secret)
	fmt.Println("\n==========================================================")
	fmt.Println("Seed Project:")
	fmt.Println("==========================================================")
	fmt.Printf(`
INSERT INTO projects (id, name, repository_url)
VALUES ('%s', 'hello-world', 'https://github.com/octocat/Hello-World');
`, projectID)
	fmt.Println("\n==========================================================")
	fmt.Printf("Claim with: POST /api/v1/projects/%s/claim\n", projectID)
	fmt.Println("==========================================================")
}
