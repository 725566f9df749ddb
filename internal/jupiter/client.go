// Package jupiter fetches events from the Jupiter prediction-market
// aggregator. Its payloads carry a different field vocabulary than the
// Gamma API; the normalize package maps both onto the same event model.
package jupiter

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/go-resty/resty/v2"

	"github.com/pulsepoly/pulsepoly/internal/httpx"
	"github.com/pulsepoly/pulsepoly/internal/models"
	"github.com/pulsepoly/pulsepoly/internal/normalize"
)

type Client struct {
	rc  *resty.Client
	log *logrus.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *logrus.Logger) *Client {
	return &Client{
		rc:  httpx.New(baseURL, timeout),
		log: log,
	}
}

// ListEvents pages through live aggregator events, newest first.
func (c *Client) ListEvents(ctx context.Context, limit, offset int) ([]models.Event, error) {
	body, err := httpx.Get(ctx, c.rc, "/events", map[string]string{
		"status": "live",
		"limit":  strconv.Itoa(limit),
		"offset": strconv.Itoa(offset),
	})
	if err != nil {
		return nil, errors.Wrap(err, "list aggregator events")
	}

	records, err := normalize.ExtractRecords(body)
	if err != nil {
		return nil, errors.Wrap(err, "extract records")
	}

	events := make([]models.Event, 0, len(records))
	for _, rec := range records {
		ev, err := normalize.Event(rec)
		if err != nil {
			c.log.WithError(err).Debug("Skipping unrecognized record")
			continue
		}
		events = append(events, *ev)
	}
	return events, nil
}
