// Package main implements the container healthcheck probe. It hits the
// liveness endpoint on localhost and reports through the exit code only,
// keeping the container image free of curl/wget.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/mferrari98/cont-portal/internal/timeouts"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "10000"
	}

	client := &http.Client{Timeout: timeouts.HealthcheckRequest}
	url := fmt.Sprintf("http://localhost:%s/healthz", port)

	resp, err := client.Get(url)
	if err != nil {
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}

	os.Exit(0)
}
