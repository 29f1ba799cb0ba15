package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"components-api/internal/geocode"
	"components-api/internal/location"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSearcher struct {
	results []geocode.Result
}

func (s *stubSearcher) Search(ctx context.Context, query string) []geocode.Result {
	return s.results
}

func utrechtResult() geocode.Result {
	return geocode.Result{
		DisplayName: "Utrecht, Nederland",
		Lat:         "52.0907",
		Lon:         "5.1214",
		Address:     geocode.Address{Town: "Utrecht", Country: "Nederland", CountryCode: "nl"},
	}
}

func newLocationRouter(results ...geocode.Result) (*gin.Engine, *location.Manager) {
	gin.SetMode(gin.TestMode)

	manager := location.NewManager(&stubSearcher{results: results}, time.Millisecond, zerolog.Nop())
	handler := NewLocationHandler(manager)

	r := gin.New()
	handler.RegisterRoutes(r.Group("/components/location"))
	r.GET("/components/scroll", handler.ScrollState)
	return r, manager
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeState(t *testing.T, w *httptest.ResponseRecorder) location.State {
	t.Helper()
	var state location.State
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	return state
}

func createSession(t *testing.T, r *gin.Engine) location.State {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/components/location", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	return decodeState(t, w)
}

func getState(t *testing.T, r *gin.Engine, id string) location.State {
	t.Helper()
	w := doJSON(t, r, http.MethodGet, "/components/location/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	return decodeState(t, w)
}

func TestLocationHandler_CreateSession(t *testing.T) {
	r, manager := newLocationRouter()

	state := createSession(t, r)
	assert.NotEmpty(t, state.ID)
	assert.Equal(t, location.ModeSearch, state.Mode)
	assert.True(t, state.FieldsReadOnly)
	assert.Nil(t, state.Map)
	assert.Equal(t, 1, manager.Len())
}

func TestLocationHandler_CreateSessionWithInitialCoordinates(t *testing.T) {
	r, _ := newLocationRouter()

	body := map[string]any{
		"initial": map[string]any{
			"venueCity": "Utrecht",
			"latitude":  52.0907,
			"longitude": 5.1214,
		},
	}
	w := doJSON(t, r, http.MethodPost, "/components/location", body)
	require.Equal(t, http.StatusCreated, w.Code)

	state := decodeState(t, w)
	assert.Equal(t, "Utrecht", state.Location.VenueCity)
	require.NotNil(t, state.Map)
	assert.InDelta(t, 52.0907, state.Map.Latitude, 1e-9)
}

func TestLocationHandler_UnknownSession(t *testing.T) {
	r, _ := newLocationRouter()

	for _, tc := range []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/components/location/nope", nil},
		{http.MethodPut, "/components/location/nope/mode", map[string]string{"mode": "manual"}},
		{http.MethodPut, "/components/location/nope/query", map[string]string{"query": "x"}},
		{http.MethodPut, "/components/location/nope/fields", map[string]any{}},
		{http.MethodPost, "/components/location/nope/select", map[string]int{"index": 0}},
		{http.MethodDelete, "/components/location/nope/fields", nil},
		{http.MethodDelete, "/components/location/nope", nil},
	} {
		w := doJSON(t, r, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusNotFound, w.Code, "%s %s", tc.method, tc.path)
		assert.JSONEq(t, `{"error": "unknown session"}`, w.Body.String())
	}
}

func TestLocationHandler_QuerySelectFlow(t *testing.T) {
	r, _ := newLocationRouter(utrechtResult())
	id := createSession(t, r).ID

	w := doJSON(t, r, http.MethodPut, "/components/location/"+id+"/query", map[string]string{"query": "Utrecht"})
	require.Equal(t, http.StatusOK, w.Code)

	// The debounced search lands shortly after the query update returns.
	require.Eventually(t, func() bool {
		return getState(t, r, id).DropdownOpen
	}, time.Second, 2*time.Millisecond)

	w = doJSON(t, r, http.MethodPost, "/components/location/"+id+"/select", map[string]int{"index": 0})
	require.Equal(t, http.StatusOK, w.Code)

	state := decodeState(t, w)
	assert.Equal(t, "Utrecht", state.Location.VenueCity)
	assert.Equal(t, "", state.Query)
	assert.False(t, state.DropdownOpen)
	require.NotNil(t, state.Map)
}

func TestLocationHandler_ShortQueryKeepsDropdownClosed(t *testing.T) {
	r, _ := newLocationRouter(utrechtResult())
	id := createSession(t, r).ID

	w := doJSON(t, r, http.MethodPut, "/components/location/"+id+"/query", map[string]string{"query": "Ut"})
	require.Equal(t, http.StatusOK, w.Code)

	time.Sleep(20 * time.Millisecond)
	assert.False(t, getState(t, r, id).DropdownOpen)
}

func TestLocationHandler_SelectWithoutResults(t *testing.T) {
	r, _ := newLocationRouter()
	id := createSession(t, r).ID

	w := doJSON(t, r, http.MethodPost, "/components/location/"+id+"/select", map[string]int{"index": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error": "no result at that index"}`, w.Body.String())
}

func TestLocationHandler_SetMode(t *testing.T) {
	r, _ := newLocationRouter()
	id := createSession(t, r).ID

	w := doJSON(t, r, http.MethodPut, "/components/location/"+id+"/mode", map[string]string{"mode": "manual"})
	require.Equal(t, http.StatusOK, w.Code)
	state := decodeState(t, w)
	assert.Equal(t, location.ModeManual, state.Mode)
	assert.False(t, state.FieldsReadOnly)

	w = doJSON(t, r, http.MethodPut, "/components/location/"+id+"/mode", map[string]string{"mode": "hybrid"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error": "mode must be 'search' or 'manual'"}`, w.Body.String())

	w = doJSON(t, r, http.MethodPut, "/components/location/"+id+"/mode", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error": "missing required field 'mode'"}`, w.Body.String())
}

func TestLocationHandler_UpdateFields(t *testing.T) {
	r, _ := newLocationRouter()
	id := createSession(t, r).ID

	// Fields are read-only in search mode.
	w := doJSON(t, r, http.MethodPut, "/components/location/"+id+"/fields", map[string]any{"venueName": "Paradiso"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error": "fields are read-only in search mode"}`, w.Body.String())

	w = doJSON(t, r, http.MethodPut, "/components/location/"+id+"/mode", map[string]string{"mode": "manual"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPut, "/components/location/"+id+"/fields", map[string]any{
		"venueName": "Paradiso",
		"latitude":  52.3624,
		"longitude": 4.8835,
	})
	require.Equal(t, http.StatusOK, w.Code)

	state := decodeState(t, w)
	assert.Equal(t, "Paradiso", state.Location.VenueName)
	require.NotNil(t, state.Map)
}

func TestLocationHandler_ClearFields(t *testing.T) {
	r, _ := newLocationRouter(utrechtResult())
	id := createSession(t, r).ID

	doJSON(t, r, http.MethodPut, "/components/location/"+id+"/query", map[string]string{"query": "Utrecht"})
	require.Eventually(t, func() bool {
		return getState(t, r, id).DropdownOpen
	}, time.Second, 2*time.Millisecond)
	doJSON(t, r, http.MethodPost, "/components/location/"+id+"/select", map[string]int{"index": 0})

	w := doJSON(t, r, http.MethodDelete, "/components/location/"+id+"/fields", nil)
	require.Equal(t, http.StatusOK, w.Code)

	state := decodeState(t, w)
	assert.Equal(t, "", state.Location.VenueCity)
	assert.Nil(t, state.Location.Latitude)
	assert.Nil(t, state.Map)
}

func TestLocationHandler_RemoveSession(t *testing.T) {
	r, manager := newLocationRouter()
	id := createSession(t, r).ID

	w := doJSON(t, r, http.MethodDelete, "/components/location/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 0, manager.Len())

	w = doJSON(t, r, http.MethodDelete, "/components/location/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLocationHandler_ScrollState(t *testing.T) {
	r, _ := newLocationRouter(utrechtResult())
	id := createSession(t, r).ID

	w := doJSON(t, r, http.MethodGet, "/components/scroll", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"locked": false, "depth": 0}`, w.Body.String())

	doJSON(t, r, http.MethodPut, "/components/location/"+id+"/query", map[string]string{"query": "Utrecht"})
	require.Eventually(t, func() bool {
		return getState(t, r, id).DropdownOpen
	}, time.Second, 2*time.Millisecond)

	w = doJSON(t, r, http.MethodGet, "/components/scroll", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"locked": true, "depth": 1}`, w.Body.String())
}

func TestLocationHandler_QueryDismissesOtherSessions(t *testing.T) {
	r, _ := newLocationRouter(utrechtResult())
	first := createSession(t, r).ID
	second := createSession(t, r).ID

	doJSON(t, r, http.MethodPut, fmt.Sprintf("/components/location/%s/query", first), map[string]string{"query": "Utrecht"})
	require.Eventually(t, func() bool {
		return getState(t, r, first).DropdownOpen
	}, time.Second, 2*time.Millisecond)

	doJSON(t, r, http.MethodPut, fmt.Sprintf("/components/location/%s/query", second), map[string]string{"query": "Utrecht"})
	require.Eventually(t, func() bool {
		return getState(t, r, second).DropdownOpen
	}, time.Second, 2*time.Millisecond)

	assert.False(t, getState(t, r, first).DropdownOpen)
}
