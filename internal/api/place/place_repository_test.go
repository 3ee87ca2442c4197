package place

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capstone-2025-fall/trib-go/internal/types"
)

var placeColumns = []string{
	"google_place_id", "display_name", "latitude", "longitude",
	"primary_type", "opening_hours_desc", "editorial_summary",
	"price_start", "price_end", "price_currency", "place_tag",
}

func newRepoFixture(t *testing.T) (*PostgresRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)

	repo := NewPostgresRepository(mockPool, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return repo, mockPool
}

func TestGetPlacesByIDs(t *testing.T) {
	ctx := context.Background()

	t.Run("fetches matching places", func(t *testing.T) {
		repo, mockPool := newRepoFixture(t)

		primaryType := "museum"
		priceStart := 10000
		mockPool.ExpectQuery("SELECT google_place_id, display_name").
			WithArgs([]string{"p1", "p2"}).
			WillReturnRows(pgxmock.NewRows(placeColumns).
				AddRow("p1", "Grand Palace", 37.55, 126.99, &primaryType, nil, nil, &priceStart, nil, nil, nil).
				AddRow("p2", "River Walk", 37.56, 127.00, nil, nil, nil, nil, nil, nil, nil))

		places, err := repo.GetPlacesByIDs(ctx, []string{"p1", "p2"})
		require.NoError(t, err)
		require.Len(t, places, 2)
		assert.Equal(t, "Grand Palace", places[0].DisplayName)
		require.NotNil(t, places[0].PrimaryType)
		assert.Equal(t, "museum", *places[0].PrimaryType)
		assert.Nil(t, places[1].PrimaryType)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("empty id list is not found", func(t *testing.T) {
		repo, _ := newRepoFixture(t)
		_, err := repo.GetPlacesByIDs(ctx, nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrNotFound))
	})

	t.Run("zero matching rows is not found", func(t *testing.T) {
		repo, mockPool := newRepoFixture(t)
		mockPool.ExpectQuery("SELECT google_place_id, display_name").
			WithArgs([]string{"ghost"}).
			WillReturnRows(pgxmock.NewRows(placeColumns))

		_, err := repo.GetPlacesByIDs(ctx, []string{"ghost"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrNotFound))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("query failure is wrapped", func(t *testing.T) {
		repo, mockPool := newRepoFixture(t)
		mockPool.ExpectQuery("SELECT google_place_id, display_name").
			WithArgs([]string{"p1"}).
			WillReturnError(errors.New("connection refused"))

		_, err := repo.GetPlacesByIDs(ctx, []string{"p1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to query places")
	})
}
