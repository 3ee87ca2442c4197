package itinerary

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/capstone-2025-fall/trib-go/internal/types"
)

func TestBuildPrompt(t *testing.T) {
	places := testPlaces()
	clusters := []types.Cluster{{ID: 0, PlaceIDs: []string{"p1", "p2"}}}
	medoids := map[int]string{0: "p1"}
	matrices := map[int]types.DistanceMatrix{0: {{0, 10}, {10, 0}}}

	req := types.UserRequest{
		Query: "two days of food and museums",
		Rules: []string{"no seafood"},
		Days:  2,
		Preferences: types.ItineraryPreferences{
			MustVisit:  []string{"Grand Palace"},
			TravelMode: types.TravelModeTransit,
		},
	}

	prompt := buildPrompt(places, scorePlaces(places), clusters, medoids, matrices, []string{"p1"}, types.DistanceMatrix{{0}}, req)

	assert.Contains(t, prompt, `"two days of food and museums"`)
	assert.Contains(t, prompt, "no seafood")
	assert.Contains(t, prompt, "Grand Palace")
	assert.Contains(t, prompt, `"medoid": "p1"`)
	assert.Contains(t, prompt, "travel_time")
	assert.Contains(t, prompt, "TRANSIT")
	assert.Contains(t, prompt, "recommend one", "missing accommodation asks the model to pick one")
}

func TestViolationsFromReport(t *testing.T) {
	t.Run("valid report has no violations", func(t *testing.T) {
		report := types.ValidationReport{
			AllValid:   true,
			MustVisit:  types.MustVisitReport{IsValid: true},
			Days:       types.DayCountReport{IsValid: true},
			Hours:      types.HoursReport{IsValid: true},
			TravelTime: types.TravelTimeReport{IsValid: true},
		}
		assert.Empty(t, violationsFromReport(report))
	})

	t.Run("each failing category contributes", func(t *testing.T) {
		report := types.ValidationReport{
			MustVisit: types.MustVisitReport{IsValid: false, Missing: []string{"A"}},
			Days:      types.DayCountReport{IsValid: false, Actual: 2, Expected: 3, Difference: -1},
			Hours: types.HoursReport{IsValid: false, Violations: []types.HoursViolation{
				{Day: 1, Place: "X", Issue: "Unusual arrival time: 03:00"},
			}},
			TravelTime: types.TravelTimeReport{IsValid: true},
		}
		violations := violationsFromReport(report)
		assert.Len(t, violations, 3)

		categories := make([]string, len(violations))
		for i, v := range violations {
			categories[i] = v.Category
		}
		assert.Equal(t, []string{"must_visit", "days", "operating_hours"}, categories)
	})

	t.Run("examples capped per category", func(t *testing.T) {
		many := make([]types.HoursViolation, 10)
		for i := range many {
			many[i] = types.HoursViolation{Day: 1, Place: "P", Issue: "Unusual arrival time: 02:30"}
		}
		report := types.ValidationReport{
			MustVisit:  types.MustVisitReport{IsValid: true},
			Days:       types.DayCountReport{IsValid: true},
			Hours:      types.HoursReport{IsValid: false, Violations: many},
			TravelTime: types.TravelTimeReport{IsValid: true},
		}
		assert.Len(t, violationsFromReport(report), maxFeedbackExamples)
	})
}

func TestFeedbackPrompt(t *testing.T) {
	assert.Empty(t, feedbackPrompt(nil))

	out := feedbackPrompt([]violation{
		{Category: "days", Message: "the itinerary has 2 days but 3 were requested"},
	})
	assert.True(t, strings.Contains(out, "[days]"))
	assert.True(t, strings.Contains(out, "fix ALL of them"))
}
