package itinerary

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capstone-2025-fall/trib-go/internal/types"
)

const validItineraryJSON = `{
  "itinerary": [
    {
      "day": 1,
      "visits": [
        {"order": 1, "display_name": "A", "arrival": "09:00", "departure": "09:00", "travel_time": 20},
        {"order": 2, "display_name": "B", "arrival": "09:20", "departure": "11:00", "travel_time": 0}
      ]
    }
  ]
}`

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain json unchanged",
			input:    `{"itinerary": []}`,
			expected: `{"itinerary": []}`,
		},
		{
			name:     "json code fence",
			input:    "```json\n{\"itinerary\": []}\n```",
			expected: `{"itinerary": []}`,
		},
		{
			name:     "bare code fence",
			input:    "```\n{\"itinerary\": []}\n```",
			expected: `{"itinerary": []}`,
		},
		{
			name:     "surrounding prose trimmed to outermost braces",
			input:    "Here is your itinerary:\n{\"itinerary\": []}\nEnjoy your trip!",
			expected: `{"itinerary": []}`,
		},
		{
			name:     "trailing commas removed",
			input:    `{"itinerary": [{"day": 1,},],}`,
			expected: `{"itinerary": [{"day": 1}]}`,
		},
		{
			name:     "no braces returns input",
			input:    "no json here",
			expected: "no json here",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cleanJSONResponse(tt.input))
		})
	}
}

func TestParseItineraryResponse(t *testing.T) {
	t.Run("valid response", func(t *testing.T) {
		it, err := parseItineraryResponse(validItineraryJSON)
		require.NoError(t, err)
		require.Len(t, it.Days, 1)
		assert.Equal(t, "A", it.Days[0].Visits[0].DisplayName)
		assert.Equal(t, 20, it.Days[0].Visits[0].TravelTime)
	})

	t.Run("fenced response parses", func(t *testing.T) {
		it, err := parseItineraryResponse("```json\n" + validItineraryJSON + "\n```")
		require.NoError(t, err)
		assert.Len(t, it.Days, 1)
	})

	t.Run("invalid json wraps sentinel", func(t *testing.T) {
		_, err := parseItineraryResponse("I could not produce a schedule, sorry.")
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrInvalidResponse))
	})

	t.Run("empty itinerary rejected", func(t *testing.T) {
		_, err := parseItineraryResponse(`{"itinerary": []}`)
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrInvalidResponse))
	})

	t.Run("day without visits rejected", func(t *testing.T) {
		_, err := parseItineraryResponse(`{"itinerary": [{"day": 1, "visits": []}]}`)
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrInvalidResponse))
	})

	t.Run("non HH:MM times rejected", func(t *testing.T) {
		tests := []struct {
			name string
			body string
		}{
			{"twelve hour arrival", strings.Replace(validItineraryJSON, `"arrival": "09:00"`, `"arrival": "9am"`, 1)},
			{"missing minutes", strings.Replace(validItineraryJSON, `"departure": "11:00"`, `"departure": "11"`, 1)},
			{"hour out of range", strings.Replace(validItineraryJSON, `"arrival": "09:20"`, `"arrival": "25:00"`, 1)},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := parseItineraryResponse(tt.body)
				require.Error(t, err)
				assert.True(t, errors.Is(err, types.ErrInvalidResponse))
				assert.Contains(t, err.Error(), "expected HH:MM")
			})
		}
	})
}
