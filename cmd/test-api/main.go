// Package main is a smoke-test utility that verifies the directory's HTTP API
// is reachable and returning valid responses. It requests the health probe and
// a well-known public repository, printing status codes and bodies, which makes
// it useful for quick post-deployment checks without external tooling.
//
// Usage: test-api [base-url] (default http://localhost:8080)
package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

func main() {
	base := "http://localhost:8080"
	if len(os.Args) > 1 {
		base = os.Args[1]
	}

	client := &http.Client{Timeout: 30 * time.Second}
	failed := false
	for _, path := range []string{"/health", "/api/v1/repositories/octocat/Hello-World"} {
		if !check(client, base+path) {
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func check(client *http.Client, url string) bool {
	resp, err := client.Get(url)
	if err != nil {
		fmt.Printf("GET %s: %v\n", url, err)
		return false
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Printf("GET %s: reading body: %v\n", url, err)
		return false
	}

	fmt.Printf("GET %s\nStatus: %d\nResponse:\n%s\n\n", url, resp.StatusCode, string(body))
	return resp.StatusCode == http.StatusOK
}
