package itinerary

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/capstone-2025-fall/trib-go/internal/types"
)

// DefaultMinStayMinutes is the minimum dwell time enforced at middle visits
// during reconciliation.
const DefaultMinStayMinutes = 30

// parseClock converts "HH:MM" to minutes since midnight. Hours are not bounded
// above: a schedule pushed past midnight renders as 24+ hours and must survive
// a round trip through formatClock.
func parseClock(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time format: %q, expected HH:MM", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 {
		return 0, fmt.Errorf("invalid time format: %q, expected HH:MM", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid time format: %q, expected HH:MM", s)
	}
	return hour*60 + minute, nil
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// SpliceTravelTimes overwrites travel_time fields with real measured values
// where a leg key exists; visits absent from the map keep their generated
// value. Arrival/departure are untouched. The input is never mutated.
func SpliceTravelTimes(it *types.Itinerary, legTimes map[types.TravelLegKey]int) *types.Itinerary {
	out := it.Clone()
	for d := range out.Days {
		day := &out.Days[d]
		for v := range day.Visits {
			key := types.TravelLegKey{Day: day.Day, FromOrder: day.Visits[v].Order}
			if minutes, ok := legTimes[key]; ok {
				day.Visits[v].TravelTime = minutes
			}
		}
	}
	return out
}

// ReconcileTimes re-derives arrival/departure times per day, left to right,
// against the (possibly just-spliced) travel times:
//
//   - the first and last visit of a day are zero-dwell anchors (departure =
//     arrival);
//   - every middle visit keeps at least minStay minutes of dwell;
//   - each successor's arrival must equal departure + travel_time. A mismatch
//     after a middle visit is first absorbed by moving that visit's departure
//     (arrivals often carry semantic meaning, e.g. timed-entry slots, and are
//     disturbed only when strictly necessary); when absorption would violate
//     the minimum stay, the successor's arrival is pushed forward and the push
//     cascades to the end of the day.
//
// Copy-in/copy-out: the input itinerary is never mutated. Malformed time
// strings are a contract violation by the upstream parser and return an error.
// Days with at most one visit are left untouched. Applying ReconcileTimes to
// its own output produces no further changes.
func ReconcileTimes(it *types.Itinerary, minStay int) (*types.Itinerary, error) {
	out := it.Clone()
	for d := range out.Days {
		if err := reconcileDay(&out.Days[d], minStay); err != nil {
			return nil, fmt.Errorf("day %d: %w", out.Days[d].Day, err)
		}
	}
	return out, nil
}

func reconcileDay(day *types.DayPlan, minStay int) error {
	visits := day.Visits
	n := len(visits)
	if n <= 1 {
		return nil
	}

	cascading := false
	for i := 0; i < n; i++ {
		arrival, err := parseClock(visits[i].Arrival)
		if err != nil {
			return err
		}
		departure, err := parseClock(visits[i].Departure)
		if err != nil {
			return err
		}

		isAnchor := i == 0 || i == n-1
		if isAnchor {
			departure = arrival
		} else if departure-arrival < minStay {
			departure = arrival + minStay
		}
		visits[i].Departure = formatClock(departure)

		if i == n-1 {
			break
		}

		expectedNext := departure + visits[i].TravelTime
		nextArrival, err := parseClock(visits[i+1].Arrival)
		if err != nil {
			return err
		}
		if nextArrival == expectedNext && !cascading {
			continue
		}

		switch {
		case cascading, isAnchor:
			// Anchors cannot move their departure; a cascade recomputes
			// every downstream arrival unconditionally.
			visits[i+1].Arrival = formatClock(expectedNext)
		default:
			absorbedDeparture := nextArrival - visits[i].TravelTime
			if absorbedDeparture-arrival >= minStay {
				visits[i].Departure = formatClock(absorbedDeparture)
			} else {
				visits[i+1].Arrival = formatClock(expectedNext)
				cascading = true
			}
		}
	}
	return nil
}
