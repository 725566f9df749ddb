package models

import (
	"errors"
	"time"
)

// QueryType distinguishes keyword searches from category browses.
type QueryType string

const (
	QueryTypeSearch   QueryType = "search"
	QueryTypeCategory QueryType = "category"
)

// SavedQuery is a user-saved search or category browse. One record is created
// on the first successful non-empty result for a distinct
// (query, queryType, tagID) combination; afterwards the record is only
// mutated by pin toggles and removed explicitly.
type SavedQuery struct {
	ID           string    `json:"id"`
	Query        string    `json:"query"`
	QueryType    QueryType `json:"queryType"`
	TagID        string    `json:"tagId,omitempty"`
	CategoryName string    `json:"categoryName,omitempty"`
	SavedAt      time.Time `json:"savedAt"`
	Pinned       bool      `json:"pinned"`
}

// Matches reports whether the record covers the same logical query.
func (q *SavedQuery) Matches(query string, queryType QueryType, tagID string) bool {
	return q.Query == query && q.QueryType == queryType && q.TagID == tagID
}

// Validate checks that all saved-query fields are valid.
func (q *SavedQuery) Validate() error {
	if q.ID == "" {
		return errors.New("saved query ID must not be empty")
	}
	if q.Query == "" {
		return errors.New("saved query text must not be empty")
	}
	if q.QueryType != QueryTypeSearch && q.QueryType != QueryTypeCategory {
		return errors.New("query type must be search or category")
	}
	if q.QueryType == QueryTypeCategory && q.TagID == "" {
		return errors.New("category queries require a tag ID")
	}
	if q.SavedAt.IsZero() {
		return errors.New("saved at must be set")
	}
	if q.SavedAt.After(time.Now().Add(time.Minute)) {
		return errors.New("saved at must not be in the future")
	}
	return nil
}
