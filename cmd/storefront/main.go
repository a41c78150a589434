package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/emberwick/storefront-api/internal/config"
	"github.com/emberwick/storefront-api/internal/logger"
	"github.com/emberwick/storefront-api/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		// fine in production, where variables come from the environment
		log.Printf("Warning: no .env file loaded: %v", err)
	}

	cfg := config.Load()
	logger.Init(cfg.Env)
	defer logger.Sync()

	if cfg.Env == "release" || cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv, err := server.New(cfg)
	if err != nil {
		logger.Fatal("failed to initialize server: " + err.Error())
	}
	defer srv.Close()

	if err := srv.Run(); err != nil {
		logger.Fatal("server exited: " + err.Error())
	}
}
