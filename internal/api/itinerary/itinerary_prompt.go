package itinerary

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/capstone-2025-fall/trib-go/internal/types"
)

// promptPlace is the per-place payload embedded in the generation prompt.
type promptPlace struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
	PrimaryType  *string `json:"primaryType"`
	PriceRange   string  `json:"priceRange,omitempty"`
	Score        float64 `json:"score"`
	OpeningHours *string `json:"openingHours"`
}

type promptCluster struct {
	ClusterID int      `json:"cluster_id"`
	Places    []string `json:"places"`
	Medoid    string   `json:"medoid"`
}

type promptClusterMatrix struct {
	PlaceIDs []string             `json:"place_ids"`
	Matrix   types.DistanceMatrix `json:"matrix"`
}

type promptMedoidMatrix struct {
	IDs         []string             `json:"ids"`
	Matrix      types.DistanceMatrix `json:"matrix"`
	Description string               `json:"description"`
}

// scorePlaces assigns a relevance score per place id. Embedding-based
// similarity scoring lives outside this service; until it is wired in, every
// place carries a neutral score so the prompt shape stays stable.
func scorePlaces(places []types.Place) map[string]float64 {
	scores := make(map[string]float64, len(places))
	for _, p := range places {
		scores[p.ID] = 0.0
	}
	return scores
}

func formatPlaces(places []types.Place, scores map[string]float64) string {
	entries := make([]promptPlace, len(places))
	for i, p := range places {
		entries[i] = promptPlace{
			ID:           p.ID,
			Name:         p.DisplayName,
			Lat:          p.Latitude,
			Lon:          p.Longitude,
			PrimaryType:  p.PrimaryType,
			PriceRange:   p.PriceRange(),
			Score:        scores[p.ID],
			OpeningHours: p.OpeningHoursDesc,
		}
	}
	return marshalIndent(entries)
}

func formatClusters(clusters []types.Cluster, medoids map[int]string) string {
	entries := make([]promptCluster, len(clusters))
	for i, c := range clusters {
		entries[i] = promptCluster{
			ClusterID: c.ID,
			Places:    c.PlaceIDs,
			Medoid:    medoids[c.ID],
		}
	}
	return marshalIndent(entries)
}

func formatClusterMatrices(clusters []types.Cluster, matrices map[int]types.DistanceMatrix) string {
	entries := make(map[string]promptClusterMatrix, len(clusters))
	for _, c := range clusters {
		if matrix, ok := matrices[c.ID]; ok {
			entries[fmt.Sprintf("%d", c.ID)] = promptClusterMatrix{PlaceIDs: c.PlaceIDs, Matrix: matrix}
		}
	}
	return marshalIndent(entries)
}

func formatMedoidMatrix(medoidIDs []string, matrix types.DistanceMatrix) string {
	return marshalIndent(promptMedoidMatrix{
		IDs:         medoidIDs,
		Matrix:      matrix,
		Description: fmt.Sprintf("travel time matrix in minutes, %dx%d", len(medoidIDs), len(medoidIDs)),
	})
}

func marshalIndent(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// buildPrompt assembles the generation context: the place inventory, the
// geographic structure, the precomputed travel-time matrices, and the layered
// priority system the schedule must respect.
func buildPrompt(
	places []types.Place,
	scores map[string]float64,
	clusters []types.Cluster,
	medoids map[int]string,
	clusterMatrices map[int]types.DistanceMatrix,
	medoidIDs []string,
	medoidMatrix types.DistanceMatrix,
	userRequest types.UserRequest,
) string {
	rules := "none"
	if len(userRequest.Rules) > 0 {
		rules = "- " + strings.Join(userRequest.Rules, "\n- ")
	}
	mustVisit := "none"
	if len(userRequest.Preferences.MustVisit) > 0 {
		mustVisit = strings.Join(userRequest.Preferences.MustVisit, ", ")
	}
	accommodation := "none (recommend one and use it as the last visit of each day)"
	if userRequest.Preferences.Accommodation != nil {
		accommodation = *userRequest.Preferences.Accommodation
	}

	var b strings.Builder
	fmt.Fprintf(&b, `You are a travel itinerary optimization expert.
Create the best possible %d-day itinerary from the given places and user request.

## Priorities

**Priority 1: user request compliance (highest)**
- query: %q
- rules:
%s
- must_visit (every one of these MUST appear in the itinerary): %s
- accommodation: %s
- days: %d

**Priority 2: operating hours**
- Schedule every place inside its usual operating hours.
- Use cluster_matrices for travel inside a cluster and medoid_matrix for travel between clusters.

**Priority 3: contextual ordering**
- Use each place's primaryType to pick a sensible visit time and stay duration
  (meals at meal times, nightlife after 18:00, museums during the day).

**Priority 4: maximize total score minus total travel time in minutes.**

## Constraints

- A day spans 10-12 hours from the first visit's arrival to the last visit's departure.
- The first and last visit of each day are transit anchors with zero dwell (departure = arrival).
- travel_time is the time in minutes from a visit to the NEXT visit of the same day;
  the last visit of a day must have travel_time = 0.
- arrival of visit N+1 = departure of visit N + travel_time of visit N.
- Travel mode: %s.

## Input data

### Places
`+"```json\n%s\n```"+`

### Clusters
`+"```json\n%s\n```"+`

### Intra-cluster travel time matrices (minutes)
`+"```json\n%s\n```"+`

### Medoid-to-medoid travel time matrix (minutes)
`+"```json\n%s\n```"+`

## Output format

Return ONLY a JSON object, no markdown fences, no explanations:

{
  "itinerary": [
    {
      "day": 1,
      "visits": [
        {
          "order": 1,
          "display_name": "place name",
          "latitude": 0.0,
          "longitude": 0.0,
          "arrival": "HH:MM",
          "departure": "HH:MM",
          "travel_time": 30
        }
      ]
    }
  ]
}
`,
		userRequest.Days,
		userRequest.Query,
		rules,
		mustVisit,
		accommodation,
		userRequest.Days,
		userRequest.Preferences.TravelMode,
		formatPlaces(places, scores),
		formatClusters(clusters, medoids),
		formatClusterMatrices(clusters, clusterMatrices),
		formatMedoidMatrix(medoidIDs, medoidMatrix),
	)
	return b.String()
}

// violation is one structured descriptor of a failed validation sub-check,
// suitable for echoing back into the next generation attempt.
type violation struct {
	Category string
	Message  string
}

// violationsFromReport maps a validation report to violation descriptors,
// capped at maxFeedbackExamples per category to bound prompt growth.
func violationsFromReport(report types.ValidationReport) []violation {
	var out []violation

	if !report.MustVisit.IsValid {
		missing := report.MustVisit.Missing
		if len(missing) > maxFeedbackExamples {
			missing = missing[:maxFeedbackExamples]
		}
		out = append(out, violation{
			Category: "must_visit",
			Message:  fmt.Sprintf("these required places are missing from the itinerary: %s", strings.Join(missing, ", ")),
		})
	}
	if !report.Days.IsValid {
		out = append(out, violation{
			Category: "days",
			Message: fmt.Sprintf("the itinerary has %d days but %d were requested (difference %+d)",
				report.Days.Actual, report.Days.Expected, report.Days.Difference),
		})
	}
	if !report.Hours.IsValid {
		examples := report.Hours.Violations
		if len(examples) > maxFeedbackExamples {
			examples = examples[:maxFeedbackExamples]
		}
		for _, v := range examples {
			out = append(out, violation{
				Category: "operating_hours",
				Message:  fmt.Sprintf("day %d, %s: %s", v.Day, v.Place, v.Issue),
			})
		}
	}
	if !report.TravelTime.IsValid {
		examples := report.TravelTime.Violations
		if len(examples) > maxFeedbackExamples {
			examples = examples[:maxFeedbackExamples]
		}
		for _, v := range examples {
			out = append(out, violation{
				Category: "travel_time",
				Message:  fmt.Sprintf("day %d, %s (order %d): %s", v.Day, v.Place, v.Order, v.Issue),
			})
		}
	}
	return out
}

// feedbackPrompt renders violation descriptors as a context augmentation for
// the next generation attempt.
func feedbackPrompt(violations []violation) string {
	if len(violations) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n## Problems with your previous attempt (fix ALL of them)\n\n")
	for _, v := range violations {
		fmt.Fprintf(&b, "- [%s] %s\n", v.Category, v.Message)
	}
	return b.String()
}

// parseRetryFeedback is appended when the previous response could not be
// parsed at all.
const parseRetryFeedback = "\n## Problems with your previous attempt\n\n" +
	"- [format] your previous response was not valid JSON matching the required schema; " +
	"return ONLY the JSON object, with no markdown fences or commentary, and write every " +
	"arrival and departure as 24-hour \"HH:MM\"\n"
