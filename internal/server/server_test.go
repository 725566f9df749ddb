package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/pulsepoly/pulsepoly/internal/assistant"
	"github.com/pulsepoly/pulsepoly/internal/httpx"
	"github.com/pulsepoly/pulsepoly/internal/models"
	"github.com/pulsepoly/pulsepoly/internal/search"
)

type fakeEvents struct {
	byQuery map[string][]models.Event
	byID    map[string]*models.Event
	err     error
}

func (f *fakeEvents) Search(ctx context.Context, query string, limit, offset int) ([]models.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byQuery[query], nil
}

func (f *fakeEvents) ListByTag(ctx context.Context, tagSlug string, limit, offset int) ([]models.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byQuery[tagSlug], nil
}

func (f *fakeEvents) EventByID(ctx context.Context, identifier string) (*models.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	ev, ok := f.byID[identifier]
	if !ok {
		return nil, errors.Wrap(httpx.ErrNotFound, identifier)
	}
	return ev, nil
}

type fakeAggregator struct{}

func (f *fakeAggregator) ListEvents(ctx context.Context, limit, offset int) ([]models.Event, error) {
	return nil, nil
}

type fakeBoard struct {
	entries []models.LeaderboardEntry
	err     error
}

func (f *fakeBoard) Leaderboard(ctx context.Context, timeframe string, limit int) ([]models.LeaderboardEntry, error) {
	return f.entries, f.err
}

type fakeAssistant struct {
	reply string
	err   error
}

func (f *fakeAssistant) Commentary(ctx context.Context, ev *models.Event) (string, error) {
	return f.reply, f.err
}

func (f *fakeAssistant) Chat(ctx context.Context, message string) (string, error) {
	return f.reply, f.err
}

func (f *fakeAssistant) SuggestCategory(ctx context.Context, query string, categories []models.Category) (string, error) {
	return f.reply, f.err
}

type fakeSaved struct {
	queries []models.SavedQuery
}

func (f *fakeSaved) List() []models.SavedQuery { return f.queries }

func (f *fakeSaved) TogglePin(id string) (*models.SavedQuery, error) {
	for i := range f.queries {
		if f.queries[i].ID == id {
			f.queries[i].Pinned = !f.queries[i].Pinned
			return &f.queries[i], nil
		}
	}
	return nil, errors.Errorf("saved query not found: %s", id)
}

func (f *fakeSaved) Remove(id string) error {
	for i := range f.queries {
		if f.queries[i].ID == id {
			f.queries = append(f.queries[:i], f.queries[i+1:]...)
			return nil
		}
	}
	return errors.Errorf("saved query not found: %s", id)
}

func (f *fakeSaved) Clear() error {
	f.queries = nil
	return nil
}

func newTestServer(events *fakeEvents, board *fakeBoard, ai *fakeAssistant, saved *fakeSaved) *httptest.Server {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	svc := search.NewService(events, &fakeAggregator{}, nil, nil, 50, log)
	srv := New(svc, board, ai, saved, log)
	return httptest.NewServer(srv.Router())
}

func get(t *testing.T, url string) (*http.Response, map[string]json.RawMessage) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()

	var body map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil && resp.StatusCode != http.StatusNoContent {
		t.Fatalf("decoding %s response: %v", url, err)
	}
	return resp, body
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(&fakeEvents{}, &fakeBoard{}, &fakeAssistant{}, &fakeSaved{})
	defer ts.Close()

	resp, _ := get(t, ts.URL+"/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestSearchEndpoint(t *testing.T) {
	events := &fakeEvents{byQuery: map[string][]models.Event{
		"bitcoin": {{ID: "1", Title: "BTC up?"}},
	}}
	ts := newTestServer(events, &fakeBoard{}, &fakeAssistant{}, &fakeSaved{})
	defer ts.Close()

	resp, body := get(t, ts.URL+"/api/public-search?q=bitcoin")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var page struct {
		Events []models.Event `json:"events"`
	}
	if err := json.Unmarshal(body["page"], &page); err != nil {
		t.Fatalf("decoding page: %v", err)
	}
	if len(page.Events) != 1 || page.Events[0].ID != "1" {
		t.Errorf("unexpected events: %+v", page.Events)
	}

	resp, _ = get(t, ts.URL+"/api/public-search?q=bitcoin&page=zero")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for bad page, got %d", resp.StatusCode)
	}
}

func TestEventEndpointStatusMapping(t *testing.T) {
	events := &fakeEvents{byID: map[string]*models.Event{
		"7": {ID: "7", Title: "Known"},
	}}
	ts := newTestServer(events, &fakeBoard{}, &fakeAssistant{}, &fakeSaved{})
	defer ts.Close()

	resp, _ := get(t, ts.URL+"/api/events/7")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	resp, _ = get(t, ts.URL+"/api/events/missing")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestUpstreamErrorsBecomeBadGateway(t *testing.T) {
	events := &fakeEvents{err: errors.Wrap(httpx.ErrUnavailable, "dial tcp")}
	ts := newTestServer(events, &fakeBoard{}, &fakeAssistant{}, &fakeSaved{})
	defer ts.Close()

	resp, body := get(t, ts.URL+"/api/public-search?q=x")
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(body["error"]), "unreachable") {
		t.Errorf("expected connectivity message, got %s", body["error"])
	}

	events.err = &httpx.StatusError{Code: 500, Path: "/events"}
	resp, _ = get(t, ts.URL+"/api/public-search?q=x")
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("expected 502 for upstream status error, got %d", resp.StatusCode)
	}
}

func TestLeaderboardEndpoint(t *testing.T) {
	board := &fakeBoard{entries: []models.LeaderboardEntry{{Rank: 1, Name: "whale"}}}
	ts := newTestServer(&fakeEvents{}, board, &fakeAssistant{}, &fakeSaved{})
	defer ts.Close()

	resp, body := get(t, ts.URL+"/api/leaderboard?timeframe=week")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var entries []models.LeaderboardEntry
	if err := json.Unmarshal(body["leaderboard"], &entries); err != nil {
		t.Fatalf("decoding leaderboard: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "whale" {
		t.Errorf("unexpected entries: %+v", entries)
	}

	resp, _ = get(t, ts.URL+"/api/leaderboard?limit=1000")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for out-of-range limit, got %d", resp.StatusCode)
	}
}

func TestSavedQueryEndpoints(t *testing.T) {
	saved := &fakeSaved{queries: []models.SavedQuery{
		{ID: "q1", Query: "bitcoin", QueryType: models.QueryTypeSearch},
	}}
	ts := newTestServer(&fakeEvents{}, &fakeBoard{}, &fakeAssistant{}, saved)
	defer ts.Close()

	resp, body := get(t, ts.URL+"/api/saved-queries")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var queries []models.SavedQuery
	if err := json.Unmarshal(body["savedQueries"], &queries); err != nil {
		t.Fatalf("decoding saved queries: %v", err)
	}
	if len(queries) != 1 {
		t.Fatalf("expected 1 saved query, got %d", len(queries))
	}

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/saved-queries/q1/pin", nil)
	pinResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("pin request failed: %v", err)
	}
	pinResp.Body.Close()
	if pinResp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 pinning, got %d", pinResp.StatusCode)
	}
	if !saved.queries[0].Pinned {
		t.Error("expected query pinned")
	}

	req, _ = http.NewRequest(http.MethodDelete, ts.URL+"/api/saved-queries/q1", nil)
	delResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete request failed: %v", err)
	}
	delResp.Body.Close()
	if delResp.StatusCode != http.StatusNoContent {
		t.Errorf("expected 204 deleting, got %d", delResp.StatusCode)
	}
	if len(saved.queries) != 0 {
		t.Errorf("expected query removed, got %+v", saved.queries)
	}

	req, _ = http.NewRequest(http.MethodDelete, ts.URL+"/api/saved-queries/q1", nil)
	missResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete request failed: %v", err)
	}
	missResp.Body.Close()
	if missResp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 deleting unknown id, got %d", missResp.StatusCode)
	}
}

func TestAssistantEndpoints(t *testing.T) {
	events := &fakeEvents{byID: map[string]*models.Event{
		"7": {ID: "7", Title: "Known"},
	}}
	ai := &fakeAssistant{reply: "📊 Prediction ..."}
	ts := newTestServer(events, &fakeBoard{}, ai, &fakeSaved{})
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/assistant/analyze/7", "application/json", nil)
	if err != nil {
		t.Fatalf("analyze request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 analyzing, got %d", resp.StatusCode)
	}

	resp, err = http.Post(ts.URL+"/api/assistant/chat", "application/json", strings.NewReader(`{"message":"what are odds?"}`))
	if err != nil {
		t.Fatalf("chat request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 chatting, got %d", resp.StatusCode)
	}

	resp, err = http.Post(ts.URL+"/api/assistant/chat", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("chat request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for missing message, got %d", resp.StatusCode)
	}

	ai.err = assistant.ErrDisabled
	resp, err = http.Post(ts.URL+"/api/assistant/chat", "application/json", strings.NewReader(`{"message":"hi"}`))
	if err != nil {
		t.Fatalf("chat request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected 503 when assistant disabled, got %d", resp.StatusCode)
	}
}

func TestCategoriesEndpoint(t *testing.T) {
	ts := newTestServer(&fakeEvents{}, &fakeBoard{}, &fakeAssistant{}, &fakeSaved{})
	defer ts.Close()

	resp, body := get(t, ts.URL+"/api/categories")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var categories []models.Category
	if err := json.Unmarshal(body["categories"], &categories); err != nil {
		t.Fatalf("decoding categories: %v", err)
	}
	if len(categories) != 10 {
		t.Errorf("expected 10 categories, got %d", len(categories))
	}
}
