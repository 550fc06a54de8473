package main

import (
	"flag"
	"log"
	"time"

	"go-catalog-mirror/pkg/jwt"

	"github.com/joho/godotenv"
)

// Mints a write-capable bearer token for a named client. The signing secret
// is JWT_SECRET, the same one the API server validates against.
func main() {
	clientName := flag.String("client", "", "client name embedded in the token claims")
	ttl := flag.Duration("ttl", 24*time.Hour, "token validity window")
	flag.Parse()

	if *clientName == "" {
		log.Fatal("usage: issue-token -client <name> [-ttl 24h]")
	}

	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}

	// 2. Sign
	token, err := jwt.GenerateToken(*clientName, *ttl)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}

	log.Printf("Token for %q (valid %s):\n%s", *clientName, *ttl, token)
}
