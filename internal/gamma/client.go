// Package gamma talks to the Polymarket Gamma API and returns normalized
// events. All responses pass through the normalize package so the rest of
// the application never sees upstream field spellings.
package gamma

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/pulsepoly/pulsepoly/internal/httpx"
	"github.com/pulsepoly/pulsepoly/internal/models"
	"github.com/pulsepoly/pulsepoly/internal/normalize"

	"github.com/go-resty/resty/v2"
)

// ErrNotFound reports that a single-event or tag lookup missed.
var ErrNotFound = httpx.ErrNotFound

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

// Search runs a keyword search over active events. An empty result is not
// an error; callers decide whether to retry with a different keyword.
func (c *Client) Search(ctx context.Context, query string, limit, offset int) ([]models.Event, error) {
	body, err := httpx.Get(ctx, c.rc, "/public-search", map[string]string{
		"q":             query,
		"events_status": "active",
		"limit":         strconv.Itoa(limit),
		"offset":        strconv.Itoa(offset),
	})
	if err != nil {
		return nil, errors.Wrap(err, "search events")
	}
	return c.decodeEvents(body)
}

// ListByTag pages through active, unarchived events under a tag slug,
// ordered by volume descending. An empty slug lists across all tags.
func (c *Client) ListByTag(ctx context.Context, tagSlug string, limit, offset int) ([]models.Event, error) {
	params := map[string]string{
		"limit":     strconv.Itoa(limit),
		"offset":    strconv.Itoa(offset),
		"active":    "true",
		"archived":  "false",
		"closed":    "false",
		"order":     "volume",
		"ascending": "false",
	}
	if tagSlug != "" {
		params["tag_slug"] = tagSlug
	}
	body, err := httpx.Get(ctx, c.rc, "/events/pagination", params)
	if err != nil {
		return nil, errors.Wrap(err, "list events by tag")
	}
	return c.decodeEvents(body)
}

// EventByID fetches one event by numeric id or slug. Identifiers that look
// like slugs fall back to a slug query when the direct lookup 404s.
func (c *Client) EventByID(ctx context.Context, identifier string) (*models.Event, error) {
	body, err := httpx.Get(ctx, c.rc, "/events/"+identifier, nil)
	if err == nil {
		ev, derr := normalize.Event(body)
		if derr != nil {
			return nil, errors.Wrap(derr, "decode event")
		}
		return ev, nil
	}
	if !errors.Is(err, httpx.ErrNotFound) || !strings.Contains(identifier, "-") {
		return nil, errors.Wrap(err, "fetch event")
	}

	body, err = httpx.Get(ctx, c.rc, "/events", map[string]string{"slug": identifier})
	if err != nil {
		return nil, errors.Wrap(err, "fetch event by slug")
	}
	events, err := c.decodeEvents(body)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, errors.Wrap(ErrNotFound, identifier)
	}
	return &events[0], nil
}

// TagByID fetches one tag. A 404 means the id is unassigned.
func (c *Client) TagByID(ctx context.Context, id int) (*models.Tag, error) {
	body, err := httpx.Get(ctx, c.rc, "/tags/"+strconv.Itoa(id), nil)
	if err != nil {
		return nil, errors.Wrap(err, "fetch tag")
	}

	var raw struct {
		ID    json.Number `json:"id"`
		Label string      `json:"label"`
		Slug  string      `json:"slug"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, errors.Wrap(err, "decode tag")
	}

	tag := &models.Tag{ID: raw.ID.String(), Label: raw.Label, Slug: raw.Slug}
	if tag.ID == "" {
		tag.ID = strconv.Itoa(id)
	}
	return tag, nil
}

// decodeEvents normalizes every recognizable record in the payload.
// Records of an unknown shape are skipped with a log line rather than
// failing the whole page.
func (c *Client) decodeEvents(body []byte) ([]models.Event, error) {
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
