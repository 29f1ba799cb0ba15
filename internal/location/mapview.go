package location

// DefaultZoom is the zoom level used when the map preview is first created.
const DefaultZoom = 15

// MapView is the server-held state of the map preview: center coordinates,
// zoom, and the marker position. It exists only while the session's
// coordinates are valid.
type MapView struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Zoom      int     `json:"zoom"`
}

// syncMapLocked reconciles the map preview with the current coordinates:
// valid coordinates create or reposition the map, invalid ones tear it down.
// Callers must hold s.mu, which keeps map operations applied in the order the
// coordinate changes arrived.
func (s *Session) syncMapLocked() {
	if !s.loc.HasValidCoordinates() {
		s.mapView = nil
		return
	}

	if s.mapView == nil {
		s.mapCreations++
		s.mapView = &MapView{
			Latitude:  *s.loc.Latitude,
			Longitude: *s.loc.Longitude,
			Zoom:      DefaultZoom,
		}
		return
	}

	s.mapView.Latitude = *s.loc.Latitude
	s.mapView.Longitude = *s.loc.Longitude
}

// MapCreations returns how many times a map instance has been created over
// the session's lifetime.
func (s *Session) MapCreations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mapCreations
}
