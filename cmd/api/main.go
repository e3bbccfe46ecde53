package main

import (
	"context"
	"flag"
	"os"

	"github.com/ribat/admissions/internal/bootstrap"
	"github.com/ribat/admissions/internal/pkg/logger"
	"github.com/ribat/admissions/internal/server"
)

// @title Madrasa Admissions API
// @version 1.0
// @description Admission applications, staff review workflow and live dashboard for the madrasa

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization

func main() {
	configPath := flag.String("config", bootstrap.DefaultConfigPath, "path to the YAML config file")
	flag.Parse()

	srv, err := server.NewServer(context.Background(), *configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
