package main

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/aguavida/kpi-backend/internal/config"
	"github.com/aguavida/kpi-backend/internal/drive"
	"github.com/aguavida/kpi-backend/internal/repository/postgres"
	"github.com/aguavida/kpi-backend/pkg/logger"
)

func main() {
	// Load environment variables from .env file if it exists
	_ = godotenv.Load()

	cfg := config.Load()
	if cfg.Server.Mode == "debug" {
		logger.SetLevel("debug")
	} else {
		logger.SetLevel("info")
	}

	driveService, err := drive.NewService(cfg.Drive.CredentialsJSON)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to initialize Google Drive service")
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer db.Close()

	ingestRepo := postgres.NewIngestRepository(db)
	ingestService := drive.NewIngestService(driveService, ingestRepo)

	r := mux.NewRouter()

	driveHandler := drive.NewHandler(driveService, ingestService, cfg.Drive.OrdersFolder)
	driveHandler.RegisterRoutes(r)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Log.Info().Str("addr", addr).Msg("ingest server starting")
	logger.Log.Fatal().Err(http.ListenAndServe(addr, r)).Msg("server stopped")
}
