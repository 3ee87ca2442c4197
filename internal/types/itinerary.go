package types

// Visit is one scheduled stop in a day plan. Arrival and Departure are local
// wall-clock times in "HH:MM" form. TravelTime is the time in minutes to the
// next visit of the same day and must be 0 for the last visit of a day.
type Visit struct {
	Order       int      `json:"order"`
	DisplayName string   `json:"display_name"`
	Address     string   `json:"address,omitempty"`
	PlaceTag    string   `json:"place_tag,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	Arrival     string   `json:"arrival"`
	Departure   string   `json:"departure"`
	TravelTime  int      `json:"travel_time"`
}

// DayPlan is one day of the itinerary with its ordered visits.
type DayPlan struct {
	Day    int     `json:"day"`
	Visits []Visit `json:"visits"`
}

// Itinerary is the root artifact produced by the generation pipeline.
type Itinerary struct {
	Days           []DayPlan `json:"itinerary"`
	TravelMode     string    `json:"travel_mode,omitempty"`
	BudgetEstimate string    `json:"budget_estimate,omitempty"`
}

// Clone returns a deep copy. The reconciler mutates only copies so callers
// never observe partially updated schedules.
func (it *Itinerary) Clone() *Itinerary {
	if it == nil {
		return nil
	}
	out := &Itinerary{
		Days:           make([]DayPlan, len(it.Days)),
		TravelMode:     it.TravelMode,
		BudgetEstimate: it.BudgetEstimate,
	}
	for i, day := range it.Days {
		visits := make([]Visit, len(day.Visits))
		copy(visits, day.Visits)
		for j := range visits {
			if visits[j].Latitude != nil {
				lat := *visits[j].Latitude
				visits[j].Latitude = &lat
			}
			if visits[j].Longitude != nil {
				lon := *visits[j].Longitude
				visits[j].Longitude = &lon
			}
		}
		out.Days[i] = DayPlan{Day: day.Day, Visits: visits}
	}
	return out
}

// TravelLegKey addresses the travel time leaving a visit: the day index and the
// departing visit's order within that day.
type TravelLegKey struct {
	Day       int
	FromOrder int
}
