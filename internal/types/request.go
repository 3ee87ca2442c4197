package types

import (
	"errors"

	"github.com/google/uuid"
)

// Sentinel errors shared across the pipeline. Services wrap these with
// fmt.Errorf("...: %w", ...) so callers can branch with errors.Is.
var (
	// ErrNotFound is returned when a non-empty id list matches no places.
	ErrNotFound = errors.New("no places found")
	// ErrMatrixComputation is returned by the routes provider on transport
	// failure, partial-data responses, or an invalid travel mode.
	ErrMatrixComputation = errors.New("route matrix computation failed")
	// ErrLLMCall is returned when the generation call fails after the
	// transport-level retry budget is spent.
	ErrLLMCall = errors.New("llm call failed")
	// ErrInvalidResponse is returned when the model's output cannot be parsed
	// into an itinerary. Retryable, but distinct from validation failures.
	ErrInvalidResponse = errors.New("invalid llm response")
)

// ItineraryPreferences carries the hard user constraints the validator
// enforces.
type ItineraryPreferences struct {
	MustVisit     []string   `json:"must_visit,omitempty"`
	Accommodation *string    `json:"accommodation,omitempty"`
	TravelMode    TravelMode `json:"travel_mode,omitempty"`
}

// UserRequest describes what the user asked for.
type UserRequest struct {
	Query       string               `json:"query"`
	Rules       []string             `json:"rule,omitempty"`
	Days        int                  `json:"days"`
	Preferences ItineraryPreferences `json:"preferences"`
}

// GenerateItineraryRequest is the API payload: place ids to consider plus the
// user request.
type GenerateItineraryRequest struct {
	PlaceIDs    []string    `json:"places"`
	UserRequest UserRequest `json:"user_request"`
}

// GenerateItineraryResult is the final artifact. Report is always attached so
// an exhausted retry budget surfaces as a success-with-caveats outcome instead
// of an error.
type GenerateItineraryResult struct {
	RequestID uuid.UUID        `json:"request_id"`
	Itinerary *Itinerary       `json:"itinerary"`
	Report    ValidationReport `json:"validation"`
	Attempts  int              `json:"attempts"`
}
