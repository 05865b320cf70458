package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/trainerhub/portal/internal/server"
	"github.com/trainerhub/portal/internal/server/config"
)

func main() {

	// Missing .env is fine; real deployments set variables directly.
	_ = godotenv.Load()

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
