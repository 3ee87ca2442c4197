package types

import "fmt"

// Place is one candidate stop as fetched from the places table. Instances are
// immutable for the duration of a generation request.
type Place struct {
	ID               string  `json:"google_place_id"`
	DisplayName      string  `json:"display_name"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	PrimaryType      *string `json:"primary_type,omitempty"`
	OpeningHoursDesc *string `json:"opening_hours_desc,omitempty"`
	EditorialSummary *string `json:"editorial_summary,omitempty"`
	PriceStart       *int    `json:"price_start,omitempty"`
	PriceEnd         *int    `json:"price_end,omitempty"`
	PriceCurrency    *string `json:"price_currency,omitempty"`
	PlaceTag         *string `json:"place_tag,omitempty"`
}

// PriceRange renders the place's price information the way the prompt layer
// expects it ("KRW 10000-30000", "KRW 10000+"), or "" when unknown.
func (p Place) PriceRange() string {
	if p.PriceStart == nil {
		return ""
	}
	currency := "KRW"
	if p.PriceCurrency != nil {
		currency = *p.PriceCurrency
	}
	if p.PriceEnd != nil {
		return fmt.Sprintf("%s %d-%d", currency, *p.PriceStart, *p.PriceEnd)
	}
	return fmt.Sprintf("%s %d+", currency, *p.PriceStart)
}

// TravelMode selects the routing profile used for travel-time matrices.
type TravelMode string

const (
	TravelModeDrive   TravelMode = "DRIVE"
	TravelModeTransit TravelMode = "TRANSIT"
	TravelModeWalk    TravelMode = "WALK"
	TravelModeBicycle TravelMode = "BICYCLE"
)

// ParseTravelMode validates a client-supplied mode string.
func ParseTravelMode(s string) (TravelMode, error) {
	switch TravelMode(s) {
	case TravelModeDrive, TravelModeTransit, TravelModeWalk, TravelModeBicycle:
		return TravelMode(s), nil
	case "":
		return TravelModeTransit, nil
	}
	return "", fmt.Errorf("invalid travel mode %q", s)
}
