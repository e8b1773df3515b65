package container

import (
	"context"
	"fmt"

	"neuromorph/adapters/excel"
	"neuromorph/adapters/importer"
	"neuromorph/adapters/stats/engine"
	"neuromorph/adapters/store"
	"neuromorph/app"
	"neuromorph/internal"
	"neuromorph/internal/config"
	"neuromorph/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB *sqlx.DB

	// Repositories (data access layer)
	MeasurementRepo ports.MeasurementRepository

	// Adapters
	Engine   *engine.Engine
	Importer *importer.Importer
	Exporter *excel.StatisticsExporter

	// Services
	Comparisons *app.ComparisonService
	Imports     *app.ImportService
	Morphology  *app.MorphologyService

	log *internal.Logger
}

// New creates a new dependency injection container with an engine built
// from the configured statistics defaults
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	eng, err := engine.NewEngine(engine.WithConfig(cfg.Stats.EngineConfig()))
	if err != nil {
		return nil, fmt.Errorf("failed to create comparison engine: %w", err)
	}

	return &Container{
		Config:   cfg,
		Engine:   eng,
		Importer: importer.New(),
		Exporter: excel.NewStatisticsExporter(),
		log:      internal.DefaultLogger.WithComponent("Container"),
	}, nil
}

// Open connects the configured database and wires the services
func Open(ctx context.Context, cfg *config.Config) (*Container, error) {
	c, err := New(cfg)
	if err != nil {
		return nil, err
	}
	db, err := store.Open(ctx, cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Database.Driver, err)
	}
	if err := c.InitWithDatabase(db); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// InitWithDatabase initializes components that require database access
func (c *Container) InitWithDatabase(db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}

	c.DB = db
	c.MeasurementRepo = store.NewMeasurementRepository(db)
	c.Comparisons = app.NewComparisonService(c.MeasurementRepo, c.Engine, c.Exporter, c.Config.Stats.Workers)
	c.Imports = app.NewImportService(c.MeasurementRepo, c.Importer)
	c.Morphology = app.NewMorphologyService(c.MeasurementRepo)

	c.log.Debug("initialized with %s database", db.DriverName())
	return nil
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}
	return nil
}
