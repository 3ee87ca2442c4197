package itinerary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capstone-2025-fall/trib-go/internal/types"
)

func dayWith(day int, visits ...types.Visit) types.DayPlan {
	return types.DayPlan{Day: day, Visits: visits}
}

func visit(order int, name, arrival, departure string, travelTime int) types.Visit {
	return types.Visit{
		Order:       order,
		DisplayName: name,
		Arrival:     arrival,
		Departure:   departure,
		TravelTime:  travelTime,
	}
}

func TestValidateMustVisit(t *testing.T) {
	it := &types.Itinerary{Days: []types.DayPlan{
		dayWith(1,
			visit(1, "Morning Museum of Art", "09:00", "09:00", 20),
			visit(2, "Harbor Market", "09:20", "11:00", 0),
		),
	}}

	t.Run("empty requirement list is always valid", func(t *testing.T) {
		report := ValidateMustVisit(it, nil)
		assert.True(t, report.IsValid)
		assert.Empty(t, report.Missing)
		assert.Empty(t, report.Found)
		assert.Equal(t, 0, report.TotalRequired)
	})

	t.Run("case-insensitive substring match in either direction", func(t *testing.T) {
		report := ValidateMustVisit(it, []string{"morning museum", "HARBOR MARKET"})
		assert.True(t, report.IsValid)
		assert.Equal(t, []string{"morning museum", "HARBOR MARKET"}, report.Found)
		assert.Equal(t, 2, report.TotalFound)
	})

	t.Run("required name containing the scheduled name matches", func(t *testing.T) {
		report := ValidateMustVisit(it, []string{"Harbor Market (North Gate)"})
		assert.True(t, report.IsValid)
	})

	t.Run("missing place fails the check", func(t *testing.T) {
		report := ValidateMustVisit(it, []string{"Universal Studios"})
		assert.False(t, report.IsValid)
		assert.Equal(t, []string{"Universal Studios"}, report.Missing)
		assert.Equal(t, 1, report.TotalRequired)
		assert.Equal(t, 0, report.TotalFound)
	})
}

func TestValidateDaysCount(t *testing.T) {
	it := &types.Itinerary{Days: []types.DayPlan{
		dayWith(1, visit(1, "A", "09:00", "09:00", 0)),
		dayWith(2, visit(1, "B", "09:00", "09:00", 0)),
	}}

	t.Run("matching count", func(t *testing.T) {
		report := ValidateDaysCount(it, 2)
		assert.True(t, report.IsValid)
		assert.Equal(t, 0, report.Difference)
	})

	t.Run("too few days reports a negative difference", func(t *testing.T) {
		report := ValidateDaysCount(it, 5)
		assert.False(t, report.IsValid)
		assert.Equal(t, 2, report.Actual)
		assert.Equal(t, 5, report.Expected)
		assert.Equal(t, -3, report.Difference)
	})
}

func TestValidateOperatingHours(t *testing.T) {
	t.Run("daytime schedule passes", func(t *testing.T) {
		it := &types.Itinerary{Days: []types.DayPlan{
			dayWith(1,
				visit(1, "A", "09:00", "09:00", 15),
				visit(2, "B", "09:15", "11:00", 0),
			),
		}}
		report, err := ValidateOperatingHours(it)
		require.NoError(t, err)
		assert.True(t, report.IsValid)
		assert.Equal(t, 2, report.TotalVisits)
	})

	t.Run("window boundaries are inclusive", func(t *testing.T) {
		for _, arrival := range []string{"02:00", "03:30", "05:00"} {
			it := &types.Itinerary{Days: []types.DayPlan{
				dayWith(1, visit(1, "Night Spot", arrival, "06:00", 0)),
			}}
			report, err := ValidateOperatingHours(it)
			require.NoError(t, err)
			assert.False(t, report.IsValid, "arrival %s should be flagged", arrival)
			assert.Contains(t, report.Violations[0].Issue, "Unusual arrival time")
		}
	})

	t.Run("just outside the window passes", func(t *testing.T) {
		it := &types.Itinerary{Days: []types.DayPlan{
			dayWith(1, visit(1, "Late Bar", "01:59", "01:59", 0)),
			dayWith(2, visit(1, "Early Cafe", "05:01", "05:01", 0)),
		}}
		report, err := ValidateOperatingHours(it)
		require.NoError(t, err)
		assert.True(t, report.IsValid)
	})

	t.Run("departure checked only when arrival is fine", func(t *testing.T) {
		it := &types.Itinerary{Days: []types.DayPlan{
			dayWith(1, visit(1, "Club", "01:00", "03:00", 0)),
		}}
		report, err := ValidateOperatingHours(it)
		require.NoError(t, err)
		assert.False(t, report.IsValid)
		require.Len(t, report.Violations, 1)
		assert.Contains(t, report.Violations[0].Issue, "Unusual departure time")
	})

	t.Run("arrival violation suppresses the departure check", func(t *testing.T) {
		it := &types.Itinerary{Days: []types.DayPlan{
			dayWith(1, visit(1, "Club", "03:00", "04:00", 0)),
		}}
		report, err := ValidateOperatingHours(it)
		require.NoError(t, err)
		require.Len(t, report.Violations, 1)
		assert.Contains(t, report.Violations[0].Issue, "Unusual arrival time")
	})

	t.Run("malformed time is an error", func(t *testing.T) {
		it := &types.Itinerary{Days: []types.DayPlan{
			dayWith(1, visit(1, "A", "25:00", "26:00", 0)),
		}}
		_, err := ValidateOperatingHours(it)
		assert.Error(t, err)
	})
}

func TestValidateTravelTime(t *testing.T) {
	t.Run("well-formed day passes", func(t *testing.T) {
		it := &types.Itinerary{Days: []types.DayPlan{
			dayWith(1,
				visit(1, "A", "09:00", "09:00", 20),
				visit(2, "B", "09:20", "10:00", 15),
				visit(3, "C", "10:15", "10:15", 0),
			),
		}}
		report := ValidateTravelTime(it)
		assert.True(t, report.IsValid)
		assert.Equal(t, 3, report.TotalVisits)
	})

	t.Run("nonzero last travel time is a violation", func(t *testing.T) {
		it := &types.Itinerary{Days: []types.DayPlan{
			dayWith(1,
				visit(1, "A", "09:00", "09:00", 20),
				visit(2, "B", "09:20", "10:00", 30),
			),
		}}
		report := ValidateTravelTime(it)
		assert.False(t, report.IsValid)
		require.Len(t, report.Violations, 1)
		assert.Contains(t, report.Violations[0].Issue, "Last visit must have travel_time=0")
	})

	t.Run("zero travel time before the last visit is suspicious", func(t *testing.T) {
		it := &types.Itinerary{Days: []types.DayPlan{
			dayWith(1,
				visit(1, "A", "09:00", "09:00", 0),
				visit(2, "B", "09:00", "10:00", 0),
			),
		}}
		report := ValidateTravelTime(it)
		assert.False(t, report.IsValid)
		require.Len(t, report.Violations, 1)
		assert.Equal(t, "A", report.Violations[0].Place)
	})

	t.Run("single-visit day only requires zero", func(t *testing.T) {
		it := &types.Itinerary{Days: []types.DayPlan{
			dayWith(1, visit(1, "A", "09:00", "09:00", 0)),
		}}
		report := ValidateTravelTime(it)
		assert.True(t, report.IsValid)
	})
}

func TestValidateAll(t *testing.T) {
	it := &types.Itinerary{Days: []types.DayPlan{
		dayWith(1,
			visit(1, "Grand Palace", "09:00", "09:00", 20),
			visit(2, "River Walk", "09:20", "11:00", 0),
		),
	}}

	t.Run("all checks pass", func(t *testing.T) {
		report, err := ValidateAll(it, []string{"Grand Palace"}, 1)
		require.NoError(t, err)
		assert.True(t, report.AllValid)
	})

	t.Run("single failing check flips the aggregate", func(t *testing.T) {
		report, err := ValidateAll(it, []string{"Grand Palace"}, 3)
		require.NoError(t, err)
		assert.False(t, report.AllValid)
		assert.True(t, report.MustVisit.IsValid)
		assert.False(t, report.Days.IsValid)
		assert.True(t, report.Hours.IsValid)
		assert.True(t, report.TravelTime.IsValid)
	})
}
