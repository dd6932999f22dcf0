package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"imobiliaria/server/config"
	"imobiliaria/server/internal/api"
	"imobiliaria/server/internal/database"
	"imobiliaria/server/internal/geocoding"
	"imobiliaria/server/internal/geometry"
	"imobiliaria/server/internal/processor"
	"imobiliaria/server/internal/queue"
	"imobiliaria/server/internal/scheduler"
	"imobiliaria/server/internal/telegram"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	if err := config.LoadAmenities(); err != nil {
		logger.WithError(err).Warn("Failed to load amenity catalog, using defaults")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
		logger.WithError(err).Fatal("Failed to create database directory")
	}
	logger.Infof("Using database at: %s", cfg.Database.Path)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	// The lead batch path runs through gorm on the same database file
	gormDB, err := gorm.Open(sqlite.Open(cfg.Database.Path), &gorm.Config{})
	if err != nil {
		logger.WithError(err).Fatal("Failed to open gorm connection")
	}

	leadQueue := queue.NewLeadQueue(
		cfg.LeadQueue.BufferSize,
		cfg.LeadQueue.MaxBatchSize,
		time.Duration(cfg.LeadQueue.MaxBatchWaitTime)*time.Second,
		logger,
	)
	leadProcessor := processor.NewLeadProcessor(gormDB, leadQueue, cfg, logger)
	leadProcessor.Start()
	leadQueue.Start()
	defer leadQueue.Close()
	defer leadProcessor.Stop()

	notifier := telegram.NewService(logger)
	if tgConfig, err := db.GetTelegramConfig(); err == nil && tgConfig != nil {
		notifier.UpdateConfig(tgConfig)
	}

	cacheDir := filepath.Join(os.TempDir(), "imobiliaria", "geocode_cache")
	geocoder := geocoding.NewGeocoder(logger, cacheDir)
	bairros := geometry.NewBairroManager(db, logger)

	maintenance := scheduler.NewScheduler(db, geocoder, bairros, logger)
	maintenance.Start()
	defer maintenance.Stop()

	handler := api.NewHandler(db, logger, cfg)
	handler.SetLeadQueue(leadQueue)
	handler.SetNotifier(notifier)
	handler.SetBairroManager(bairros)

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.Static(cfg.Uploads.PublicPath, cfg.Uploads.Dir)
	api.SetupRoutes(router, handler)

	logger.Infof("Starting server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
