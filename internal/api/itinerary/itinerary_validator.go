package itinerary

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/capstone-2025-fall/trib-go/internal/types"
)

// Implausible-hours window: visits arriving or departing between 02:00 and
// 05:00 inclusive are flagged. This is a heuristic proxy for real
// operating-hours validation: it will miss daytime visits to closed venues
// and will flag legitimate overnight activity (e.g. a night market at 03:00).
const (
	unusualWindowStart = 2 * 60
	unusualWindowEnd   = 5 * 60
)

// maxFeedbackExamples caps how many violations per category are echoed back
// into the next generation prompt.
const maxFeedbackExamples = 3

// isUnusualTime reports whether a "HH:MM" time falls inside the implausible
// overnight window. Malformed input is a contract violation by the upstream
// parser, not a business condition, and returns an error.
func isUnusualTime(timeStr string) (bool, error) {
	minutes, err := parseClockStrict(timeStr)
	if err != nil {
		return false, err
	}
	return minutes >= unusualWindowStart && minutes <= unusualWindowEnd, nil
}

// parseClockStrict accepts only wall-clock "HH:MM" values (hour 0-23).
func parseClockStrict(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time format: %q, expected HH:MM", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid time format: %q, expected HH:MM", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid time format: %q, expected HH:MM", s)
	}
	return hour*60 + minute, nil
}

// ValidateMustVisit checks that every required place name appears somewhere in
// the schedule. Matching is bidirectional case-insensitive substring matching,
// intentionally fuzzy because the model may paraphrase place names; near-miss
// strings can therefore produce false positives and negatives.
func ValidateMustVisit(it *types.Itinerary, mustVisit []string) types.MustVisitReport {
	if len(mustVisit) == 0 {
		return types.MustVisitReport{IsValid: true, Missing: []string{}, Found: []string{}}
	}

	var visited []string
	for _, day := range it.Days {
		for _, visit := range day.Visits {
			visited = append(visited, strings.ToLower(visit.DisplayName))
		}
	}

	missing := []string{}
	found := []string{}
	for _, required := range mustVisit {
		requiredLower := strings.ToLower(required)
		matched := false
		for _, name := range visited {
			if strings.Contains(name, requiredLower) || strings.Contains(requiredLower, name) {
				matched = true
				break
			}
		}
		if matched {
			found = append(found, required)
		} else {
			missing = append(missing, required)
		}
	}

	return types.MustVisitReport{
		IsValid:       len(missing) == 0,
		Missing:       missing,
		Found:         found,
		TotalRequired: len(mustVisit),
		TotalFound:    len(found),
	}
}

// ValidateDaysCount checks the generated day count against the request.
func ValidateDaysCount(it *types.Itinerary, expectedDays int) types.DayCountReport {
	actual := len(it.Days)
	return types.DayCountReport{
		IsValid:    actual == expectedDays,
		Actual:     actual,
		Expected:   expectedDays,
		Difference: actual - expectedDays,
	}
}

// ValidateOperatingHours flags visits scheduled inside the implausible
// overnight window. See the window constants for the heuristic's limits.
func ValidateOperatingHours(it *types.Itinerary) (types.HoursReport, error) {
	violations := []types.HoursViolation{}
	totalVisits := 0

	for _, day := range it.Days {
		for _, visit := range day.Visits {
			totalVisits++

			arrivalUnusual, err := isUnusualTime(visit.Arrival)
			if err != nil {
				return types.HoursReport{}, err
			}
			if arrivalUnusual {
				violations = append(violations, types.HoursViolation{
					Day:       day.Day,
					Place:     visit.DisplayName,
					Arrival:   visit.Arrival,
					Departure: visit.Departure,
					Issue:     fmt.Sprintf("Unusual arrival time: %s", visit.Arrival),
				})
				continue
			}

			departureUnusual, err := isUnusualTime(visit.Departure)
			if err != nil {
				return types.HoursReport{}, err
			}
			if departureUnusual {
				violations = append(violations, types.HoursViolation{
					Day:       day.Day,
					Place:     visit.DisplayName,
					Arrival:   visit.Arrival,
					Departure: visit.Departure,
					Issue:     fmt.Sprintf("Unusual departure time: %s", visit.Departure),
				})
			}
		}
	}

	return types.HoursReport{
		IsValid:         len(violations) == 0,
		Violations:      violations,
		TotalViolations: len(violations),
		TotalVisits:     totalVisits,
	}, nil
}

// ValidateTravelTime checks the travel_time structure: the last visit of a day
// must carry 0 (hard invariant), and a non-last visit carrying 0 is flagged as
// suspicious.
func ValidateTravelTime(it *types.Itinerary) types.TravelTimeReport {
	violations := []types.TravelTimeViolation{}
	totalVisits := 0

	for _, day := range it.Days {
		for i, visit := range day.Visits {
			totalVisits++
			isLast := i == len(day.Visits)-1

			if isLast && visit.TravelTime != 0 {
				violations = append(violations, types.TravelTimeViolation{
					Day:        day.Day,
					Place:      visit.DisplayName,
					Order:      visit.Order,
					TravelTime: visit.TravelTime,
					Issue:      fmt.Sprintf("Last visit must have travel_time=0, but got %d", visit.TravelTime),
				})
			}
			if !isLast && visit.TravelTime == 0 {
				violations = append(violations, types.TravelTimeViolation{
					Day:        day.Day,
					Place:      visit.DisplayName,
					Order:      visit.Order,
					TravelTime: visit.TravelTime,
					Issue:      "Non-last visit has travel_time=0 (suspicious, should be > 0)",
				})
			}
		}
	}

	return types.TravelTimeReport{
		IsValid:         len(violations) == 0,
		Violations:      violations,
		TotalViolations: len(violations),
		TotalVisits:     totalVisits,
	}
}

// ValidateAll runs every check independently and aggregates the results.
// Business-rule failures land in the report; only malformed time strings
// return an error.
func ValidateAll(it *types.Itinerary, mustVisit []string, expectedDays int) (types.ValidationReport, error) {
	mustVisitReport := ValidateMustVisit(it, mustVisit)
	daysReport := ValidateDaysCount(it, expectedDays)
	hoursReport, err := ValidateOperatingHours(it)
	if err != nil {
		return types.ValidationReport{}, err
	}
	travelTimeReport := ValidateTravelTime(it)

	return types.ValidationReport{
		AllValid: mustVisitReport.IsValid && daysReport.IsValid &&
			hoursReport.IsValid && travelTimeReport.IsValid,
		MustVisit:  mustVisitReport,
		Days:       daysReport,
		Hours:      hoursReport,
		TravelTime: travelTimeReport,
	}, nil
}
