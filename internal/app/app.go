package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/templui/sfss/internal/config"
	"github.com/templui/sfss/internal/db"
	"github.com/templui/sfss/internal/repository"
	"github.com/templui/sfss/internal/service"
	"github.com/templui/sfss/internal/storage"
)

type App struct {
	Cfg             *config.Config
	DB              *sqlx.DB
	Storage         storage.Storage
	ShareRepository repository.ShareRepository
	AuthService     *service.AuthService
	EmailService    *service.EmailService
	ShareService    *service.ShareService
	AccessService   *service.AccessService
	SweepService    *service.SweepService
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Repositories
	shareRepository := repository.NewShareRepository(database)

	// Storage
	fileStorage, err := storage.New(cfg)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Services
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppURL,
		cfg.AppName,
		cfg.IsDevelopment(),
	)
	authService := service.NewAuthService(cfg.JWTSecret, cfg.JWTExpiry)
	shareService := service.NewShareService(shareRepository, fileStorage, emailService, service.ShareOptions{
		MaxFileSize:     cfg.UploadMaxSize,
		DefaultFolder:   cfg.UploadDefaultFolder,
		MaxDuration:     cfg.ShareMaxDuration,
		UploadURLExpiry: cfg.S3PresignExpiryUpload,
	})
	accessService := service.NewAccessService(shareRepository, fileStorage, emailService, cfg.S3PresignExpiryDownload)
	sweepService := service.NewSweepService(shareRepository, shareService)

	return &App{
		Cfg:             cfg,
		DB:              database,
		Storage:         fileStorage,
		ShareRepository: shareRepository,
		AuthService:     authService,
		EmailService:    emailService,
		ShareService:    shareService,
		AccessService:   accessService,
		SweepService:    sweepService,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return db.Close(a.DB)
	}
	return nil
}
