package itinerary

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/capstone-2025-fall/trib-go/internal/types"
)

var trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)

// cleanJSONResponse strips the decoration LLM output tends to carry: markdown
// code fences, surrounding prose, and trailing commas before closing brackets.
// The model's output is free text with no format guarantee.
func cleanJSONResponse(response string) string {
	response = strings.TrimSpace(response)

	// Remove markdown code block markers
	if strings.HasPrefix(response, "```json") {
		response = strings.TrimPrefix(response, "```json")
	} else if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```")
	}
	if strings.HasSuffix(response, "```") {
		response = strings.TrimSuffix(response, "```")
	}
	response = strings.TrimSpace(response)

	// Trim to the outermost {...} span in case the model added explanations
	firstBrace := strings.Index(response, "{")
	if firstBrace == -1 {
		return response
	}
	lastBrace := strings.LastIndex(response, "}")
	if lastBrace == -1 || lastBrace <= firstBrace {
		return response
	}
	response = strings.TrimSpace(response[firstBrace : lastBrace+1])

	return trailingCommaRe.ReplaceAllString(response, "$1")
}

// parseItineraryResponse turns raw model output into an itinerary. Failures
// here mean the model violated the output contract, which is an immediately
// retryable condition distinct from business-rule validation failures.
func parseItineraryResponse(raw string) (*types.Itinerary, error) {
	cleaned := cleanJSONResponse(raw)

	var it types.Itinerary
	if err := json.Unmarshal([]byte(cleaned), &it); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidResponse, err)
	}
	if len(it.Days) == 0 {
		return nil, fmt.Errorf("%w: empty itinerary", types.ErrInvalidResponse)
	}
	for _, day := range it.Days {
		if len(day.Visits) == 0 {
			return nil, fmt.Errorf("%w: day %d has no visits", types.ErrInvalidResponse, day.Day)
		}
		for _, visit := range day.Visits {
			if _, err := parseClockStrict(visit.Arrival); err != nil {
				return nil, fmt.Errorf("%w: day %d %q arrival: %v", types.ErrInvalidResponse, day.Day, visit.DisplayName, err)
			}
			if _, err := parseClockStrict(visit.Departure); err != nil {
				return nil, fmt.Errorf("%w: day %d %q departure: %v", types.ErrInvalidResponse, day.Day, visit.DisplayName, err)
			}
		}
	}
	return &it, nil
}
