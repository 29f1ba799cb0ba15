// Package selector implements the dashboard user selector component: a
// debounced user search against the dashboard API plus a commit call when a
// user is picked. Searching never mutates the current selection.
package selector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"components-api/internal/debounce"
	"components-api/internal/service"

	"github.com/rs/zerolog"
)

// User is a selectable dashboard user.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl"`
}

// State is a snapshot of the component for rendering.
type State struct {
	Query        string `json:"query"`
	Results      []User `json:"results"`
	Selected     []User `json:"selected"`
	DropdownOpen bool   `json:"dropdownOpen"`
}

// Selector is bound to one dashboard and talks to its selection endpoints.
// Search shares the location field's semantics: three-rune minimum, debounced
// requests, aborted lookups are silent, failures surface as an empty dropdown.
type Selector struct {
	baseURL     string
	dashboardID string
	client      *http.Client
	deb         *debounce.Debouncer
	log         zerolog.Logger

	mu           sync.Mutex
	query        string
	results      []User
	selected     []User
	dropdownOpen bool
}

// New creates a selector for the given dashboard.
func New(baseURL, dashboardID string, wait time.Duration, log zerolog.Logger) *Selector {
	return &Selector{
		baseURL:     strings.TrimRight(baseURL, "/"),
		dashboardID: dashboardID,
		client:      &http.Client{Timeout: 10 * time.Second},
		deb:         debounce.New(wait),
		log:         log.With().Str("component", "selector").Str("dashboard_id", dashboardID).Logger(),
	}
}

// UpdateQuery records the query and schedules a debounced user search.
func (s *Selector) UpdateQuery(query string) {
	query = strings.TrimSpace(query)

	s.mu.Lock()
	s.query = query
	if utf8.RuneCountInString(query) < service.MinQueryLength {
		s.results = nil
		s.dropdownOpen = false
		s.mu.Unlock()
		s.deb.Cancel()
		return
	}
	s.mu.Unlock()

	s.deb.Do(func(ctx context.Context) {
		s.runSearch(ctx, query)
	})
}

func (s *Selector) runSearch(ctx context.Context, query string) {
	users := s.SearchUsers(ctx, query)
	if ctx.Err() != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.query != query {
		return
	}
	s.results = users
	s.dropdownOpen = true
}

// SearchUsers performs the post-debounce lookup. Short queries and upstream
// failures both yield an empty result set; a cancelled lookup is silent.
func (s *Selector) SearchUsers(ctx context.Context, query string) []User {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < service.MinQueryLength {
		return nil
	}

	users, err := s.fetchUsers(ctx, query)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.log.Error().Err(err).Str("query", query).Msg("user search failed")
		}
		return nil
	}
	return users
}

func (s *Selector) fetchUsers(ctx context.Context, query string) ([]User, error) {
	reqURL := fmt.Sprintf("%s/dashboard/%s/users/search?q=%s", s.baseURL, s.dashboardID, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("selector: search request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("selector: search status %d", resp.StatusCode)
	}

	var users []User
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return nil, fmt.Errorf("selector: failed to decode users: %w", err)
	}
	return users, nil
}

// Select commits the chosen user via the dashboard selection endpoint and, on
// success, adds it to the selection and closes the dropdown.
func (s *Selector) Select(ctx context.Context, user User) error {
	body, err := json.Marshal(map[string]string{"userId": user.ID})
	if err != nil {
		return err
	}

	reqURL := fmt.Sprintf("%s/dashboard/%s/select", s.baseURL, s.dashboardID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, reqURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("selector: select request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("selector: select status %d", resp.StatusCode)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.selected {
		if u.ID == user.ID {
			s.closeDropdownLocked()
			return nil
		}
	}
	s.selected = append(s.selected, user)
	s.closeDropdownLocked()
	return nil
}

// Remove drops a user from the local selection. Unknown IDs are a no-op.
func (s *Selector) Remove(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, u := range s.selected {
		if u.ID == userID {
			s.selected = append(s.selected[:i], s.selected[i+1:]...)
			return
		}
	}
}

func (s *Selector) closeDropdownLocked() {
	s.query = ""
	s.results = nil
	s.dropdownOpen = false
}

// Dismiss closes the dropdown; part of the component registry contract.
func (s *Selector) Dismiss() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropdownOpen = false
}

// State returns a snapshot of the component.
func (s *Selector) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]User, len(s.results))
	copy(results, s.results)
	selected := make([]User, len(s.selected))
	copy(selected, s.selected)

	return State{
		Query:        s.query,
		Results:      results,
		Selected:     selected,
		DropdownOpen: s.dropdownOpen,
	}
}

// Close aborts scheduled and in-flight searches.
func (s *Selector) Close() {
	s.deb.Stop()
}
