package container

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/capstone-2025-fall/trib-go/app/db"
	"github.com/capstone-2025-fall/trib-go/config"
	"github.com/capstone-2025-fall/trib-go/internal/api/cluster"
	generativeAI "github.com/capstone-2025-fall/trib-go/internal/api/generative_ai"
	"github.com/capstone-2025-fall/trib-go/internal/api/itinerary"
	"github.com/capstone-2025-fall/trib-go/internal/api/place"
	"github.com/capstone-2025-fall/trib-go/internal/api/routes"
)

// Container holds all application dependencies
type Container struct {
	Config           *config.Config
	Logger           *slog.Logger
	Pool             *pgxpool.Pool
	ItineraryHandler *itinerary.Handler
}

// NewContainer initializes and returns a new dependency container
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	// Initialize database
	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		return nil, err
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		return nil, err
	}

	// Initialize repositories
	placeRepo := place.NewPostgresRepository(pool, logger)

	// Initialize services
	clusterService := cluster.NewServiceImpl(cfg.Clustering.EpsKm, cfg.Clustering.MinSamples, logger)
	routesService := routes.NewServiceImpl(os.Getenv("GOOGLE_MAPS_API_KEY"), cfg.Routes.Timeout, logger)

	aiClient, err := generativeAI.NewAIClient(ctx, os.Getenv("GOOGLE_GEMINI_API_KEY"), cfg.Gemini.Model, logger)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize generative AI client: %w", err)
	}

	itineraryService := itinerary.NewServiceImpl(
		placeRepo,
		clusterService,
		routesService,
		aiClient,
		itinerary.Config{
			MaxRetries:     cfg.Itinerary.MaxRetries,
			MinStayMinutes: cfg.Itinerary.MinStayMinutes,
			Temperature:    cfg.Gemini.Temperature,
		},
		logger,
	)

	// Initialize handlers
	itineraryHandler := itinerary.NewHandler(itineraryService, logger)

	return &Container{
		Config:           cfg,
		Logger:           logger,
		Pool:             pool,
		ItineraryHandler: itineraryHandler,
	}, nil
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// WaitForDB waits for the database to be ready
func (c *Container) WaitForDB(ctx context.Context) bool {
	return database.WaitForDB(ctx, c.Pool, c.Logger)
}

// RunMigrations runs database migrations
func (c *Container) RunMigrations(connectionURL string) error {
	return database.RunMigrations(connectionURL, c.Logger)
}
