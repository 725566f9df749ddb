package dataapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLeaderboardMapsTimeframes(t *testing.T) {
	tests := []struct {
		timeframe string
		want      string
	}{
		{"all", "ALL"},
		{"month", "MONTH"},
		{"week", "WEEK"},
		{"WEEK", "WEEK"},
		{"bogus", "ALL"},
		{"", "ALL"},
	}

	for _, tt := range tests {
		var got string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.URL.Query().Get("timePeriod")
			w.Write([]byte(`[]`))
		}))
		c := NewClient(srv.URL, 5*time.Second)
		if _, err := c.Leaderboard(context.Background(), tt.timeframe, 20); err != nil {
			t.Fatalf("Leaderboard(%q) failed: %v", tt.timeframe, err)
		}
		srv.Close()
		if got != tt.want {
			t.Errorf("timeframe %q: expected timePeriod %q, got %q", tt.timeframe, tt.want, got)
		}
	}
}

func TestLeaderboardDecodesAndRanks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"proxyWallet":"0xabc","name":"whale","amount":12345.67,"volume":"not-a-number"},
			{"proxyWallet":"0xdef","name":"minnow","amount":"89.5","marketsTraded":12}
		]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	entries, err := c.Leaderboard(context.Background(), "all", 20)
	if err != nil {
		t.Fatalf("Leaderboard failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Rank != 1 || entries[1].Rank != 2 {
		t.Errorf("expected sequential ranks, got %d and %d", entries[0].Rank, entries[1].Rank)
	}
	if entries[0].Profit != 12345.67 {
		t.Errorf("expected amount decoded, got %v", entries[0].Profit)
	}
	if entries[1].MarketsTraded != 12 {
		t.Errorf("expected marketsTraded decoded, got %d", entries[1].MarketsTraded)
	}
}
