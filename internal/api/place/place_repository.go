package place

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/capstone-2025-fall/trib-go/app/observability/metrics"
	"github.com/capstone-2025-fall/trib-go/internal/types"
)

var _ Repository = (*PostgresRepository)(nil)

// Querier is the subset of pgxpool.Pool this repository needs. pgxmock
// satisfies it in tests.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repository looks up place metadata for a generation request.
type Repository interface {
	// GetPlacesByIDs fetches the places matching ids, preserving only rows
	// that exist. Fails with types.ErrNotFound when a non-empty id list
	// matches nothing.
	GetPlacesByIDs(ctx context.Context, ids []string) ([]types.Place, error)
}

type PostgresRepository struct {
	logger *slog.Logger
	db     Querier
}

func NewPostgresRepository(db Querier, logger *slog.Logger) *PostgresRepository {
	return &PostgresRepository{
		logger: logger,
		db:     db,
	}
}

const getPlacesByIDsQuery = `
	SELECT google_place_id, display_name, latitude, longitude,
	       primary_type, opening_hours_desc, editorial_summary,
	       price_start, price_end, price_currency, place_tag
	FROM places
	WHERE google_place_id = ANY($1)`

func (r *PostgresRepository) GetPlacesByIDs(ctx context.Context, ids []string) ([]types.Place, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: empty id list", types.ErrNotFound)
	}

	start := time.Now()
	rows, err := r.db.Query(ctx, getPlacesByIDsQuery, ids)
	metrics.Get().DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		r.logger.ErrorContext(ctx, "Failed to query places", slog.Any("error", err))
		return nil, fmt.Errorf("failed to query places: %w", err)
	}
	defer rows.Close()

	var places []types.Place
	for rows.Next() {
		var p types.Place
		err := rows.Scan(
			&p.ID, &p.DisplayName, &p.Latitude, &p.Longitude,
			&p.PrimaryType, &p.OpeningHoursDesc, &p.EditorialSummary,
			&p.PriceStart, &p.PriceEnd, &p.PriceCurrency, &p.PlaceTag,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan place row: %w", err)
		}
		places = append(places, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading place rows: %w", err)
	}

	if len(places) == 0 {
		return nil, types.ErrNotFound
	}
	r.logger.DebugContext(ctx, "Fetched places", slog.Int("requested", len(ids)), slog.Int("found", len(places)))
	return places, nil
}
