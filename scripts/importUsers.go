package main

import (
	"context"
	"encoding/csv"
	"errors"
	"log"
	"net/http"
	"os"
	"strings"

	"trxflow/apiclient"
	"trxflow/config"
	"trxflow/models"
)

// Registers every user listed in a CSV file (name,email,password,role) through
// a running server, so ids are assigned exactly as for interactive sign-ups.
func main() {
	config.LoadConfig()

	path := "users.csv"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	baseURL := os.Getenv("TRXFLOW_URL")
	if baseURL == "" {
		baseURL = "http://localhost:" + config.AppConfig.Port
	}

	// Open CSV file
	file, err := os.Open(path)
	if err != nil {
		log.Fatalf("Failed to open CSV file: %v", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		log.Fatalf("Failed to read CSV: %v", err)
	}
	if len(records) < 2 {
		log.Fatal("CSV file is empty or has only headers")
	}

	// Map header indices
	headerIndex := make(map[string]int)
	for i, h := range records[0] {
		headerIndex[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range []string{"name", "email", "password", "role"} {
		if _, ok := headerIndex[col]; !ok {
			log.Fatalf("CSV is missing column %q", col)
		}
	}

	client := apiclient.New(baseURL)
	ctx := context.Background()
	created, skipped := 0, 0

	for i, row := range records[1:] {
		field := func(name string) string {
			idx := headerIndex[name]
			if idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		role, ok := models.ParseRole(field("role"))
		if !ok {
			log.Printf("Row %d: invalid role %q, skipping", i+2, field("role"))
			skipped++
			continue
		}

		user, err := client.Register(ctx, field("name"), field("email"), field("password"), role)
		if err != nil {
			var apiErr *apiclient.Error
			if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict {
				log.Printf("Row %d: %s already registered, skipping", i+2, field("email"))
				skipped++
				continue
			}
			log.Fatalf("Row %d: failed to register %s: %v", i+2, field("email"), err)
		}

		log.Printf("Registered %s as %s", user.Email, user.UserID)
		created++
	}

	log.Printf("Import complete. Created: %d, Skipped: %d", created, skipped)
}
