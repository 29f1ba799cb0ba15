// Package location implements the search-field session: the state machine
// behind the venue picker, toggling between search and manual entry modes,
// issuing debounced geocoding lookups, and keeping the map preview in sync
// with the currently held coordinates.
package location

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"components-api/internal/component"
	"components-api/internal/debounce"
	"components-api/internal/geocode"
	"components-api/internal/models"
	"components-api/internal/service"

	"github.com/rs/zerolog"
)

// Mode controls whether fields are auto-populated from search or freely typed.
type Mode string

const (
	ModeSearch Mode = "search"
	ModeManual Mode = "manual"
)

var (
	// ErrFieldsReadOnly is returned when fields are edited in search mode.
	ErrFieldsReadOnly = errors.New("location: fields are read-only in search mode")
	// ErrInvalidMode is returned for an unknown mode value.
	ErrInvalidMode = errors.New("location: unknown mode")
	// ErrResultOutOfRange is returned when a selection index has no result.
	ErrResultOutOfRange = errors.New("location: result index out of range")
)

// Searcher resolves a query to geocoding results; failures surface as an
// empty result set, never as an error.
type Searcher interface {
	Search(ctx context.Context, query string) []geocode.Result
}

// Session is the per-instance state of one location search field. All state
// transitions are applied under a single lock in arrival order, so rapid
// coordinate updates cannot interleave or double-initialize the map preview.
type Session struct {
	id       string
	searcher Searcher
	deb      *debounce.Debouncer
	scroll   *component.ScrollLock
	log      zerolog.Logger

	mu           sync.Mutex
	mode         Mode
	loc          models.Location
	query        string
	results      []geocode.Result
	dropdownOpen bool
	mapView      *MapView
	mapCreations int
}

// State is a point-in-time snapshot of the session, returned to the client
// after every operation.
type State struct {
	ID             string           `json:"id"`
	Mode           Mode             `json:"mode"`
	Query          string           `json:"query"`
	Location       models.Location  `json:"location"`
	Results        []geocode.Result `json:"results"`
	DropdownOpen   bool             `json:"dropdownOpen"`
	FieldsReadOnly bool             `json:"fieldsReadOnly"`
	Map            *MapView         `json:"map,omitempty"`
}

// FieldPatch carries manual edits to the bound fields. Nil fields are left
// untouched.
type FieldPatch struct {
	VenueName    *string  `json:"venueName"`
	VenueAddress *string  `json:"venueAddress"`
	VenueCity    *string  `json:"venueCity"`
	VenueZipCode *string  `json:"venueZipCode"`
	State        *string  `json:"state"`
	Country      *string  `json:"country"`
	CountryCode  *string  `json:"countryCode"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
}

// NewSession creates a session in search mode, seeded with the given initial
// field values. A map preview appears immediately when the initial coordinates
// are valid.
func NewSession(id string, searcher Searcher, debounceWait time.Duration, initial models.Location, log zerolog.Logger) *Session {
	s := &Session{
		id:       id,
		searcher: searcher,
		deb:      debounce.New(debounceWait),
		log:      log.With().Str("component", "location-session").Str("session_id", id).Logger(),
		mode:     ModeSearch,
		loc:      initial,
	}

	s.mu.Lock()
	s.syncMapLocked()
	s.mu.Unlock()

	return s
}

// ID returns the session's instance ID.
func (s *Session) ID() string {
	return s.id
}

// UpdateQuery records the current search query. Queries shorter than the
// minimum length close the dropdown and abort any scheduled or in-flight
// search; longer queries schedule a debounced search that cancels the
// previous in-flight request when it fires.
func (s *Session) UpdateQuery(query string) {
	query = strings.TrimSpace(query)

	s.mu.Lock()
	if s.mode != ModeSearch {
		s.mu.Unlock()
		return
	}
	s.query = query
	if utf8.RuneCountInString(query) < service.MinQueryLength {
		s.results = nil
		s.setDropdownLocked(false)
		s.mu.Unlock()
		s.deb.Cancel()
		return
	}
	s.mu.Unlock()

	s.deb.Do(func(ctx context.Context) {
		s.runSearch(ctx, query)
	})
}

func (s *Session) runSearch(ctx context.Context, query string) {
	results := s.searcher.Search(ctx, query)
	if ctx.Err() != nil {
		// Aborted by a newer search or teardown.
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != ModeSearch || s.query != query {
		// The session moved on while the lookup was in flight.
		return
	}
	s.results = results
	s.setDropdownLocked(true)
}

// setDropdownLocked transitions the dropdown, keeping the shared scroll lock
// count paired with open/close transitions. Callers must hold s.mu.
func (s *Session) setDropdownLocked(open bool) {
	if open == s.dropdownOpen {
		return
	}
	s.dropdownOpen = open
	if s.scroll == nil {
		return
	}
	if open {
		s.scroll.Acquire()
	} else {
		s.scroll.Release()
	}
}

// SelectResult fills every bound field from the result at index, updates the
// map preview, then clears the query and closes the dropdown.
func (s *Session) SelectResult(index int) (models.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.results) {
		return models.Location{}, ErrResultOutOfRange
	}

	s.loc = s.results[index].Location()
	s.syncMapLocked()
	s.query = ""
	s.results = nil
	s.setDropdownLocked(false)

	return s.loc, nil
}

// ClearFields resets every bound field to its empty value and removes any
// existing map preview.
func (s *Session) ClearFields() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loc = models.Location{}
	s.syncMapLocked()
}

// SetMode switches between search and manual entry. Switching clears in-flight
// and pending search state so no stale dropdown survives a round trip between
// modes. Setting the current mode again is a no-op.
func (s *Session) SetMode(mode Mode) error {
	if mode != ModeSearch && mode != ModeManual {
		return ErrInvalidMode
	}

	s.mu.Lock()
	if s.mode == mode {
		s.mu.Unlock()
		return nil
	}
	s.mode = mode
	s.query = ""
	s.results = nil
	s.setDropdownLocked(false)
	s.mu.Unlock()

	s.deb.Cancel()
	return nil
}

// UpdateFields applies manual edits. Fields are read-only while in search
// mode; edits are only accepted in manual mode.
func (s *Session) UpdateFields(patch FieldPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode != ModeManual {
		return ErrFieldsReadOnly
	}

	applyString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	applyString(&s.loc.VenueName, patch.VenueName)
	applyString(&s.loc.VenueAddress, patch.VenueAddress)
	applyString(&s.loc.VenueCity, patch.VenueCity)
	applyString(&s.loc.VenueZipCode, patch.VenueZipCode)
	applyString(&s.loc.State, patch.State)
	applyString(&s.loc.Country, patch.Country)
	applyString(&s.loc.CountryCode, patch.CountryCode)

	if patch.Latitude != nil {
		lat := *patch.Latitude
		s.loc.Latitude = &lat
	}
	if patch.Longitude != nil {
		lon := *patch.Longitude
		s.loc.Longitude = &lon
	}

	s.syncMapLocked()
	return nil
}

// Dismiss closes the dropdown. Called by the component registry when another
// component is interacted with.
func (s *Session) Dismiss() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setDropdownLocked(false)
}

// Location returns the currently held venue value object.
func (s *Session) Location() models.Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loc
}

// HasValidCoordinates reports whether the held coordinates are complete and
// finite.
func (s *Session) HasValidCoordinates() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loc.HasValidCoordinates()
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]geocode.Result, len(s.results))
	copy(results, s.results)

	var mv *MapView
	if s.mapView != nil {
		m := *s.mapView
		mv = &m
	}

	return State{
		ID:             s.id,
		Mode:           s.mode,
		Query:          s.query,
		Location:       s.loc,
		Results:        results,
		DropdownOpen:   s.dropdownOpen,
		FieldsReadOnly: s.mode == ModeSearch,
		Map:            mv,
	}
}

// Close aborts all scheduled and in-flight work and releases any scroll lock
// hold. The session must not be used afterwards.
func (s *Session) Close() {
	s.deb.Stop()

	s.mu.Lock()
	s.setDropdownLocked(false)
	s.mu.Unlock()
}
