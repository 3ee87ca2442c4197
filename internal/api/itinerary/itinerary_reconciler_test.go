package itinerary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capstone-2025-fall/trib-go/internal/types"
)

func TestSpliceTravelTimes(t *testing.T) {
	it := &types.Itinerary{Days: []types.DayPlan{
		dayWith(1,
			visit(1, "A", "09:00", "09:00", 20),
			visit(2, "B", "09:20", "10:00", 15),
			visit(3, "C", "10:15", "10:15", 0),
		),
	}}

	out := SpliceTravelTimes(it, map[types.TravelLegKey]int{
		{Day: 1, FromOrder: 1}: 35,
	})

	assert.Equal(t, 35, out.Days[0].Visits[0].TravelTime)
	assert.Equal(t, 15, out.Days[0].Visits[1].TravelTime, "unmeasured legs keep the generated value")
	assert.Equal(t, 20, it.Days[0].Visits[0].TravelTime, "input must not be mutated")
}

func TestReconcileTimes(t *testing.T) {
	t.Run("anchors get zero dwell", func(t *testing.T) {
		it := &types.Itinerary{Days: []types.DayPlan{
			dayWith(1,
				visit(1, "Hotel", "09:00", "09:30", 20),
				visit(2, "Museum", "09:20", "11:00", 15),
				visit(3, "Hotel", "11:15", "12:00", 0),
			),
		}}
		out, err := ReconcileTimes(it, DefaultMinStayMinutes)
		require.NoError(t, err)

		first := out.Days[0].Visits[0]
		last := out.Days[0].Visits[2]
		assert.Equal(t, first.Arrival, first.Departure)
		assert.Equal(t, last.Arrival, last.Departure)
	})

	t.Run("short dwell clamps and cascades downstream", func(t *testing.T) {
		// Middle visit holds only 5 minutes of dwell; clamping to 30 pushes
		// everything after it by 25 minutes.
		it := &types.Itinerary{Days: []types.DayPlan{
			dayWith(1,
				visit(1, "Start", "09:00", "09:00", 20),
				visit(2, "Stop", "09:20", "09:25", 15),
				visit(3, "End", "09:40", "09:40", 0),
			),
		}}
		out, err := ReconcileTimes(it, 30)
		require.NoError(t, err)

		mid := out.Days[0].Visits[1]
		assert.Equal(t, "09:20", mid.Arrival)
		assert.Equal(t, "09:50", mid.Departure)
		assert.Equal(t, "10:05", out.Days[0].Visits[2].Arrival)
	})

	t.Run("gap absorbed by moving departure when dwell allows", func(t *testing.T) {
		// Second visit's departure leaves a 20-minute hole before the next
		// arrival. Dwell stays above the minimum if the departure moves, so
		// the arrival is preserved.
		it := &types.Itinerary{Days: []types.DayPlan{
			dayWith(1,
				visit(1, "Start", "09:00", "09:00", 10),
				visit(2, "Long Stop", "09:10", "10:30", 20),
				visit(3, "End", "11:10", "11:10", 0),
			),
		}}
		out, err := ReconcileTimes(it, 30)
		require.NoError(t, err)

		assert.Equal(t, "10:50", out.Days[0].Visits[1].Departure)
		assert.Equal(t, "11:10", out.Days[0].Visits[2].Arrival)
	})

	t.Run("first anchor mismatch recomputes next arrival", func(t *testing.T) {
		it := &types.Itinerary{Days: []types.DayPlan{
			dayWith(1,
				visit(1, "Start", "09:00", "09:00", 30),
				visit(2, "Stop", "10:00", "10:45", 10),
				visit(3, "End", "10:55", "10:55", 0),
			),
		}}
		out, err := ReconcileTimes(it, 30)
		require.NoError(t, err)

		// 09:00 + 30 = 09:30; the rest of the day was already consistent and
		// keeps its times.
		assert.Equal(t, "09:30", out.Days[0].Visits[1].Arrival)
		assert.Equal(t, "10:45", out.Days[0].Visits[1].Departure)
		assert.Equal(t, "10:55", out.Days[0].Visits[2].Arrival)
	})

	t.Run("reconciliation is idempotent", func(t *testing.T) {
		it := &types.Itinerary{Days: []types.DayPlan{
			dayWith(1,
				visit(1, "Start", "09:00", "09:00", 20),
				visit(2, "Stop", "09:20", "09:25", 15),
				visit(3, "Another", "09:40", "10:10", 25),
				visit(4, "End", "10:35", "10:35", 0),
			),
		}}
		once, err := ReconcileTimes(it, 30)
		require.NoError(t, err)
		twice, err := ReconcileTimes(once, 30)
		require.NoError(t, err)
		assert.Equal(t, once, twice)
	})

	t.Run("days with at most one visit are untouched", func(t *testing.T) {
		it := &types.Itinerary{Days: []types.DayPlan{
			dayWith(1, visit(1, "Solo", "09:00", "10:00", 0)),
			{Day: 2, Visits: []types.Visit{}},
		}}
		out, err := ReconcileTimes(it, 30)
		require.NoError(t, err)
		assert.Equal(t, "10:00", out.Days[0].Visits[0].Departure)
	})

	t.Run("schedule pushed past midnight renders 24h+ clock", func(t *testing.T) {
		it := &types.Itinerary{Days: []types.DayPlan{
			dayWith(1,
				visit(1, "Start", "23:00", "23:00", 40),
				visit(2, "Stop", "23:40", "23:45", 30),
				visit(3, "End", "00:15", "00:15", 0),
			),
		}}
		out, err := ReconcileTimes(it, 30)
		require.NoError(t, err)
		// 23:40 + 30 dwell + 30 travel = 24:40
		assert.Equal(t, "24:40", out.Days[0].Visits[2].Arrival)
	})

	t.Run("malformed time returns an error", func(t *testing.T) {
		it := &types.Itinerary{Days: []types.DayPlan{
			dayWith(1,
				visit(1, "A", "nine", "09:00", 10),
				visit(2, "B", "09:10", "09:40", 0),
			),
		}}
		_, err := ReconcileTimes(it, 30)
		assert.Error(t, err)
	})

	t.Run("input is never mutated", func(t *testing.T) {
		it := &types.Itinerary{Days: []types.DayPlan{
			dayWith(1,
				visit(1, "Start", "09:00", "09:30", 20),
				visit(2, "End", "10:00", "10:30", 0),
			),
		}}
		_, err := ReconcileTimes(it, 30)
		require.NoError(t, err)
		assert.Equal(t, "09:30", it.Days[0].Visits[0].Departure)
	})
}
