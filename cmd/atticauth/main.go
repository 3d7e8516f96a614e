package main

import (
	"context"
	"log"

	"github.com/atticlabs/attic-auth/internal/identity/app"

	"github.com/joho/godotenv"
)

func main() {
	// Optional .env for local development; missing file is fine.
	_ = godotenv.Load()

	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("startup: %v", err)
	}

	if err := application.Run(context.Background()); err != nil {
		log.Fatalf("server: %v", err)
	}
}
