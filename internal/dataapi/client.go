// Package dataapi wraps the Polymarket data API, currently just the
// trader leaderboard.
package dataapi

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/go-resty/resty/v2"

	"github.com/pulsepoly/pulsepoly/internal/httpx"
	"github.com/pulsepoly/pulsepoly/internal/models"
)

type Client struct {
	rc *resty.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{rc: httpx.New(baseURL, timeout)}
}

// timePeriod maps the lowercase timeframe names used by our API onto the
// upstream enum. Anything unrecognized falls back to the all-time board.
func timePeriod(timeframe string) string {
	switch strings.ToLower(timeframe) {
	case "month":
		return "MONTH"
	case "week":
		return "WEEK"
	default:
		return "ALL"
	}
}

// Leaderboard fetches the top traders for a timeframe (all, month or week).
func (c *Client) Leaderboard(ctx context.Context, timeframe string, limit int) ([]models.LeaderboardEntry, error) {
	body, err := httpx.Get(ctx, c.rc, "/v1/leaderboard", map[string]string{
		"timePeriod": timePeriod(timeframe),
		"limit":      strconv.Itoa(limit),
	})
	if err != nil {
		return nil, errors.Wrap(err, "fetch leaderboard")
	}

	var rows []struct {
		ProxyWallet   string     `json:"proxyWallet"`
		Name          string     `json:"name"`
		ProfileImage  string     `json:"profileImage"`
		Amount        flexNumber `json:"amount"`
		Volume        flexNumber `json:"volume"`
		MarketsTraded flexNumber `json:"marketsTraded"`
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, errors.Wrap(err, "decode leaderboard")
	}

	entries := make([]models.LeaderboardEntry, 0, len(rows))
	for i, row := range rows {
		entries = append(entries, models.LeaderboardEntry{
			Rank:          i + 1,
			ProxyWallet:   row.ProxyWallet,
			Name:          row.Name,
			ProfileImage:  row.ProfileImage,
			Profit:        float64(row.Amount),
			Volume:        float64(row.Volume),
			MarketsTraded: int(row.MarketsTraded),
		})
	}
	return entries, nil
}

// flexNumber decodes a JSON number or a numeric string; anything else
// decodes to zero. The leaderboard mixes both encodings across fields.
type flexNumber float64

func (f *flexNumber) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexNumber(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			*f = flexNumber(n)
		}
	}
	return nil
}
