package types

// MustVisitReport records which required place names were matched against the
// generated schedule.
type MustVisitReport struct {
	IsValid       bool     `json:"is_valid"`
	Missing       []string `json:"missing"`
	Found         []string `json:"found"`
	TotalRequired int      `json:"total_required"`
	TotalFound    int      `json:"total_found"`
}

// DayCountReport compares the generated day count with the requested one.
// Difference is signed (actual - expected) for diagnostics.
type DayCountReport struct {
	IsValid    bool `json:"is_valid"`
	Actual     int  `json:"actual"`
	Expected   int  `json:"expected"`
	Difference int  `json:"difference"`
}

// HoursViolation flags one visit scheduled inside the implausible overnight
// window.
type HoursViolation struct {
	Day       int    `json:"day"`
	Place     string `json:"place"`
	Arrival   string `json:"arrival"`
	Departure string `json:"departure"`
	Issue     string `json:"issue"`
}

// HoursReport aggregates the plausible-hours heuristic results.
type HoursReport struct {
	IsValid         bool             `json:"is_valid"`
	Violations      []HoursViolation `json:"violations"`
	TotalViolations int              `json:"total_violations"`
	TotalVisits     int              `json:"total_visits"`
}

// TravelTimeViolation flags one visit breaking the travel_time structure: a
// last visit with a non-zero value, or a non-last visit with a suspicious zero.
type TravelTimeViolation struct {
	Day        int    `json:"day"`
	Place      string `json:"place"`
	Order      int    `json:"order"`
	TravelTime int    `json:"travel_time"`
	Issue      string `json:"issue"`
}

// TravelTimeReport aggregates the structural travel_time checks.
type TravelTimeReport struct {
	IsValid         bool                  `json:"is_valid"`
	Violations      []TravelTimeViolation `json:"violations"`
	TotalViolations int                   `json:"total_violations"`
	TotalVisits     int                   `json:"total_visits"`
}

// ValidationReport is the aggregate of all independent checks. AllValid is the
// conjunction of the sub-check results; it is derived data, recomputed on every
// validation call and never persisted.
type ValidationReport struct {
	AllValid   bool             `json:"all_valid"`
	MustVisit  MustVisitReport  `json:"must_visit"`
	Days       DayCountReport   `json:"days"`
	Hours      HoursReport      `json:"operating_hours"`
	TravelTime TravelTimeReport `json:"travel_time"`
}
