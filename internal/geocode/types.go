package geocode

import (
	"strconv"

	"components-api/internal/models"
)

// Address mirrors the address substructure of a Nominatim place. Every field is
// optional; the upstream payload is treated as untrusted.
type Address struct {
	Name         string `json:"name"`
	Amenity      string `json:"amenity"`
	Building     string `json:"building"`
	Tourism      string `json:"tourism"`
	Leisure      string `json:"leisure"`
	Office       string `json:"office"`
	Shop         string `json:"shop"`
	Road         string `json:"road"`
	HouseNumber  string `json:"house_number"`
	Postcode     string `json:"postcode"`
	City         string `json:"city"`
	Town         string `json:"town"`
	Village      string `json:"village"`
	Municipality string `json:"municipality"`
	County       string `json:"county"`
	State        string `json:"state"`
	Province     string `json:"province"`
	Region       string `json:"region"`
	Country      string `json:"country"`
	CountryCode  string `json:"country_code"`
}

// Result mirrors the relevant parts of a Nominatim search payload.
// Lat/Lon arrive as strings and are only trusted once they parse as finite floats.
type Result struct {
	DisplayName string  `json:"display_name"`
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	Type        string  `json:"type"`
	Address     Address `json:"address"`
}

// Location maps the result onto the venue value object. Each field follows a
// fixed fallback chain; a field with no matching source stays "".
func (r Result) Location() models.Location {
	loc := models.Location{
		VenueName:    firstNonEmpty(r.Address.Name, r.Address.Amenity, r.Address.Building, r.Address.Tourism, r.Address.Leisure, r.Address.Office, r.Address.Shop),
		VenueAddress: buildStreet(r.Address),
		VenueCity:    firstNonEmpty(r.Address.City, r.Address.Town, r.Address.Village, r.Address.Municipality, r.Address.County),
		VenueZipCode: r.Address.Postcode,
		State:        firstNonEmpty(r.Address.State, r.Address.Province, r.Address.Region),
		Country:      r.Address.Country,
		CountryCode:  r.Address.CountryCode,
		DisplayName:  r.DisplayName,
	}

	if lat, ok := parseCoordinate(r.Lat); ok {
		loc.Latitude = &lat
	}
	if lon, ok := parseCoordinate(r.Lon); ok {
		loc.Longitude = &lon
	}

	return loc
}

func buildStreet(a Address) string {
	if a.Road == "" {
		return ""
	}
	if a.HouseNumber == "" {
		return a.Road
	}
	return a.Road + " " + a.HouseNumber
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func parseCoordinate(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
