package models

import "math"

// Location represents the venue value object assembled by the location search field, containing its decomposed address components and its geographic coordinates.
// Coordinates are independently nullable until both are known; address fields are
// never absent, a missing source simply yields "".
type Location struct {
	VenueName    string   `json:"venueName"`
	VenueAddress string   `json:"venueAddress"`
	VenueCity    string   `json:"venueCity"`
	VenueZipCode string   `json:"venueZipCode"`
	State        string   `json:"state"`
	Country      string   `json:"country"`
	CountryCode  string   `json:"countryCode"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	DisplayName  string   `json:"displayName"`
}

// HasValidCoordinates reports whether both coordinates are present and finite.
// A map preview may only exist under this invariant.
func (l Location) HasValidCoordinates() bool {
	return isFinite(l.Latitude) && isFinite(l.Longitude)
}

func isFinite(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}
