// @title Classroom Backend API
// @version 1.0
// @description Quiz attempt lifecycle and grading service for a classroom platform.

// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"flag"
	"log"

	"classroom_backend/internal/app"
	"classroom_backend/internal/config"
	"classroom_backend/pkg/configwatcher"
	"classroom_backend/pkg/database"
	"classroom_backend/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	migrateOnly := flag.Bool("migrate-only", false, "run database migration and exit")
	migrate := flag.Bool("migrate", false, "force database migration on startup")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly

	if *migrateOnly {
		logger.InitLogger(cfg)
		// InitDB runs the migration as part of connecting.
		if _, err := database.InitDB(&cfg.Database); err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		log.Println("Migration complete, exiting")
		return
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	// Hot-reload the config file. Only settings read per request pick
	// up changes; server port and DB connection need a restart.
	go configwatcher.WatchConfig("configs/config.yaml", cfg, func(newCfg interface{}) {
		if updated, ok := newCfg.(*config.Config); ok {
			*cfg = *updated
			logger.Log.Info("configuration reloaded", zap.String("path", "configs/config.yaml"))
		}
	})

	application.Run()
}
