// Package app wires configuration into the services shared by the API
// server and the ingestion worker.
package app

import (
	"fmt"
	"log/slog"

	"github.com/alejandroruanova/cbam-emissions/internal/core/services/calcsession"
	"github.com/alejandroruanova/cbam-emissions/internal/core/services/hierarchy"
	"github.com/alejandroruanova/cbam-emissions/internal/core/services/ingestion"
	"github.com/alejandroruanova/cbam-emissions/internal/infrastructure/cache"
	"github.com/alejandroruanova/cbam-emissions/internal/infrastructure/database"
	"github.com/alejandroruanova/cbam-emissions/internal/infrastructure/database/repositories"
	"github.com/alejandroruanova/cbam-emissions/internal/infrastructure/parsers"
	"github.com/alejandroruanova/cbam-emissions/internal/infrastructure/storage"
	"github.com/alejandroruanova/cbam-emissions/internal/pkg/config"
	"github.com/alejandroruanova/cbam-emissions/internal/pkg/logger"
)

// Repositories are the GORM stores of every service table
type Repositories struct {
	Installations *repositories.InstallationRepository
	Products      *repositories.ProductRepository
	Processes     *repositories.ProcessRepository
	Links         *repositories.LinkRepository
	RawInputs     *repositories.RawInputRepository
	Masters       *repositories.MasterRepository
	Entries       *repositories.CalculationEntryRepository
	Batches       *repositories.BatchRepository
}

// Infrastructure holds the connections opened at startup
type Infrastructure struct {
	DB    *database.PostgresDB
	Repos Repositories
	Files *storage.LocalStorage
	Parse *parsers.ParserFactory
}

// OpenInfrastructure connects to Postgres, migrates the schema and builds
// the repositories, upload storage and parsers.
func OpenInfrastructure(cfg *config.Config) (*Infrastructure, error) {
	db, err := database.NewPostgresDB(&cfg.Database, logger.NewServiceLogger("database"))
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	maxBytes := cfg.Storage.MaxFileSizeMB * 1024 * 1024
	files, err := storage.NewLocalStorage(&storage.LocalStorageConfig{
		BasePath: cfg.Storage.BasePath,
		MaxBytes: maxBytes,
	}, logger.NewServiceLogger("storage"))
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	parserCfg := parsers.DefaultParserConfig()
	parserCfg.MaxFileSize = maxBytes

	repoLogger := logger.NewServiceLogger("repository")
	return &Infrastructure{
		DB: db,
		Repos: Repositories{
			Installations: repositories.NewInstallationRepository(db.DB, repoLogger),
			Products:      repositories.NewProductRepository(db.DB, repoLogger),
			Processes:     repositories.NewProcessRepository(db.DB, repoLogger),
			Links:         repositories.NewLinkRepository(db.DB, repoLogger),
			RawInputs:     repositories.NewRawInputRepository(db.DB, cfg.Storage.InsertBatchLen, repoLogger),
			Masters:       repositories.NewMasterRepository(db.DB, repoLogger),
			Entries:       repositories.NewCalculationEntryRepository(db.DB, repoLogger),
			Batches:       repositories.NewBatchRepository(db.DB, repoLogger),
		},
		Files: files,
		Parse: parsers.NewParserFactory(parserCfg),
	}, nil
}

// Processor builds the ingestion processor both binaries run.
func (i *Infrastructure) Processor() *ingestion.Processor {
	return ingestion.NewProcessor(i.Parse, i.Repos.Batches, i.Repos.RawInputs, logger.NewServiceLogger("ingestion"))
}

// HierarchyManager builds the hierarchy service.
func (i *Infrastructure) HierarchyManager() *hierarchy.Manager {
	return hierarchy.NewManager(hierarchy.Repositories{
		Installations: i.Repos.Installations,
		Products:      i.Repos.Products,
		Processes:     i.Repos.Processes,
		Links:         i.Repos.Links,
		RawInputs:     i.Repos.RawInputs,
	}, logger.NewServiceLogger("hierarchy"))
}

// SessionService builds the input dialog service on top of a Redis store.
func (i *Infrastructure) SessionService(redisCache *cache.RedisCache, cfg *config.SessionConfig) *calcsession.Service {
	store := cache.NewSessionStore(redisCache, cfg.TTL, logger.NewServiceLogger("session-store"))
	return calcsession.NewService(store, i.Repos.Entries, i.Repos.Masters, i.Repos.Processes, logger.NewServiceLogger("calcsession"))
}

// Close releases the database connection
func (i *Infrastructure) Close(log *slog.Logger) {
	if err := i.DB.Close(); err != nil {
		log.Error("failed to close database", logger.Err(err))
	}
}
