package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/pulsepoly/pulsepoly/internal/models"
)

func completionServer(t *testing.T, reply string, capture *chatRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header: %q", got)
		}
		if capture != nil {
			if err := json.NewDecoder(r.Body).Decode(capture); err != nil {
				t.Errorf("decoding request: %v", err)
			}
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": reply}},
			},
		})
	}))
}

func TestSuggestKeywordSanitizes(t *testing.T) {
	tests := []struct {
		reply string
		want  string
	}{
		{"bitcoin", "bitcoin"},
		{`"Bitcoin"`, "bitcoin"},
		{"Bitcoin price markets", "bitcoin"},
		{"  election.  ", "election"},
		{"'fed'!", "fed"},
		{"   ", ""},
	}

	for _, tt := range tests {
		var captured chatRequest
		srv := completionServer(t, tt.reply, &captured)
		c := NewClient(srv.URL, "test-key", "test-model", 5*time.Second)

		got, err := c.SuggestKeyword(context.Background(), "what about bitcoin going up")
		srv.Close()
		if err != nil {
			t.Fatalf("SuggestKeyword failed: %v", err)
		}
		if got != tt.want {
			t.Errorf("reply %q: expected keyword %q, got %q", tt.reply, tt.want, got)
		}
		if captured.Model != "test-model" {
			t.Errorf("expected configured model, got %q", captured.Model)
		}
		if captured.MaxTokens != 10 {
			t.Errorf("expected max_tokens 10, got %d", captured.MaxTokens)
		}
	}
}

func TestSuggestCategoryOutsideCatalogCollapsesToAll(t *testing.T) {
	categories := []models.Category{
		{ID: "politics"},
		{ID: "crypto"},
	}

	srv := completionServer(t, "sportsball", nil)
	defer srv.Close()
	c := NewClient(srv.URL, "test-key", "m", 5*time.Second)

	got, err := c.SuggestCategory(context.Background(), "nba finals", categories)
	if err != nil {
		t.Fatalf("SuggestCategory failed: %v", err)
	}
	if got != "all" {
		t.Errorf("expected all, got %q", got)
	}

	srv2 := completionServer(t, "Crypto", nil)
	defer srv2.Close()
	c2 := NewClient(srv2.URL, "test-key", "m", 5*time.Second)
	got, err = c2.SuggestCategory(context.Background(), "btc", categories)
	if err != nil {
		t.Fatalf("SuggestCategory failed: %v", err)
	}
	if got != "crypto" {
		t.Errorf("expected crypto, got %q", got)
	}
}

func TestCommentaryIncludesOdds(t *testing.T) {
	var captured chatRequest
	srv := completionServer(t, "📊 Prediction ...", &captured)
	defer srv.Close()
	c := NewClient(srv.URL, "test-key", "m", 5*time.Second)

	ev := &models.Event{
		Title: "Will it rain?",
		Outcomes: []models.Outcome{
			{Name: "Yes", Percent: 73, YesPrice: 0.73, NoPrice: 0.27},
			{Name: "No", Percent: 27, YesPrice: 0.27, NoPrice: 0.73},
		},
	}
	if _, err := c.Commentary(context.Background(), ev); err != nil {
		t.Fatalf("Commentary failed: %v", err)
	}
	if len(captured.Messages) != 2 {
		t.Fatalf("expected system and user messages, got %d", len(captured.Messages))
	}
	user := captured.Messages[1].Content
	for _, want := range []string{"Will it rain?", "Yes at 73%"} {
		if !strings.Contains(user, want) {
			t.Errorf("expected prompt to contain %q, got:\n%s", want, user)
		}
	}
}

func TestDisabledClient(t *testing.T) {
	c := NewClient("https://example.invalid", "", "m", time.Second)
	if _, err := c.SuggestKeyword(context.Background(), "x"); !errors.Is(err, ErrDisabled) {
		t.Errorf("expected ErrDisabled, got %v", err)
	}
	if _, err := c.Chat(context.Background(), "x"); !errors.Is(err, ErrDisabled) {
		t.Errorf("expected ErrDisabled, got %v", err)
	}
}
