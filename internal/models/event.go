// Package models defines the core domain entities for the pulsepoly application.
// These models represent normalized prediction-market events, their outcomes,
// result pages, and user-saved queries. All models include built-in validation
// to ensure data integrity throughout the application.
//
// Terminology (matching Polymarket's own naming):
//   - Event: a prediction-market question page, which groups one or more markets.
//   - Outcome: one resolvable proposition within an event (a sub-market).
//     An event with exactly one outcome is a binary Yes/No event.
package models

import (
	"errors"
	"fmt"
	"time"
)

// Outcome is one normalized sub-market of an event. Percent is the implied
// probability of the outcome resolving Yes, as an integer 0–100. YesPrice and
// NoPrice are the matching 0–1 prices and always sum to 1 within rounding.
type Outcome struct {
	Name     string  `json:"name"`
	Percent  int     `json:"percent"`
	YesPrice float64 `json:"yesPrice"`
	NoPrice  float64 `json:"noPrice"`
	MarketID string  `json:"marketId,omitempty"`
}

// Validate checks that all outcome fields are internally consistent.
func (o *Outcome) Validate() error {
	if o.Name == "" {
		return errors.New("outcome name must not be empty")
	}
	if o.Percent < 0 || o.Percent > 100 {
		return fmt.Errorf("outcome percent %d out of range [0,100]", o.Percent)
	}
	if o.YesPrice < 0.0 || o.YesPrice > 1.0 {
		return errors.New("yes price must be between 0.0 and 1.0")
	}
	if o.NoPrice < 0.0 || o.NoPrice > 1.0 {
		return errors.New("no price must be between 0.0 and 1.0")
	}
	// Allow small tolerance for sum != 1.0 due to rounding
	sum := o.YesPrice + o.NoPrice
	if sum < 0.99 || sum > 1.01 {
		return errors.New("yes + no price should approximately equal 1.0")
	}
	return nil
}

// Event is the canonical event representation produced by the normalizer.
// It is constructed fresh per API response, never mutated afterwards, and
// superseded (not merged) when the same identifier is fetched again.
type Event struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Image       string     `json:"image,omitempty"`
	Volume      float64    `json:"volume"`
	Liquidity   float64    `json:"liquidity"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	Outcomes    []Outcome  `json:"outcomes"`
	MarketCount int        `json:"marketCount"`

	// BinaryYesPercent is meaningful only when MarketCount == 1; the
	// complementary No side is always 100 - BinaryYesPercent.
	BinaryYesPercent int `json:"binaryYesPercent"`

	Active bool `json:"active"`
	Closed bool `json:"closed"`
}

// Key returns the identity used for deduplication across a result set:
// the upstream id, else the slug, else a title+start-date composite.
func (e *Event) Key() string {
	if e.ID != "" {
		return e.ID
	}
	if e.Slug != "" {
		return e.Slug
	}
	start := ""
	if e.StartDate != nil {
		start = e.StartDate.Format(time.RFC3339)
	}
	return e.Title + "-" + start
}

// SortDate returns the best-available date for recency ranking: the first
// non-nil of start, creation, and end date. Events with no date at all sort
// as epoch zero (oldest).
func (e *Event) SortDate() time.Time {
	for _, t := range []*time.Time{e.StartDate, e.CreatedAt, e.EndDate} {
		if t != nil {
			return *t
		}
	}
	return time.Time{}
}

// TopOutcomes returns up to n outcomes. Outcomes are already ranked by
// descending percent at normalization time.
func (e *Event) TopOutcomes(n int) []Outcome {
	if n >= len(e.Outcomes) {
		return e.Outcomes
	}
	return e.Outcomes[:n]
}

// HasMoreOutcomes reports whether the event has outcomes beyond the top n,
// i.e. whether a "see more" affordance applies after truncation.
func (e *Event) HasMoreOutcomes(n int) bool {
	return len(e.Outcomes) > n
}

// Validate checks that all event fields are valid.
func (e *Event) Validate() error {
	if e.Key() == "" || e.Key() == "-" {
		return errors.New("event has no usable identity (id, slug, or title+date)")
	}
	if e.Volume < 0 {
		return errors.New("volume must not be negative")
	}
	if e.Liquidity < 0 {
		return errors.New("liquidity must not be negative")
	}
	if e.MarketCount < 0 {
		return errors.New("market count must not be negative")
	}
	if e.BinaryYesPercent < 0 || e.BinaryYesPercent > 100 {
		return fmt.Errorf("binary yes percent %d out of range [0,100]", e.BinaryYesPercent)
	}
	for i := range e.Outcomes {
		if err := e.Outcomes[i].Validate(); err != nil {
			return fmt.Errorf("outcome %d: %w", i, err)
		}
	}
	return nil
}
