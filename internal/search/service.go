// Package search orchestrates the user-facing operations: keyword search
// with an optional one-shot AI keyword retry, category browsing, the
// aggregator feed and single-event lookup. It owns pagination geometry and
// the saved-query side effect; shape handling stays in the normalize
// package and transport in the clients.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pulsepoly/pulsepoly/internal/models"
	"github.com/pulsepoly/pulsepoly/internal/normalize"
)

// EventSource is the Gamma-side event surface the service needs.
type EventSource interface {
	Search(ctx context.Context, query string, limit, offset int) ([]models.Event, error)
	ListByTag(ctx context.Context, tagSlug string, limit, offset int) ([]models.Event, error)
	EventByID(ctx context.Context, identifier string) (*models.Event, error)
}

// AggregatorSource lists events from the aggregator upstream.
type AggregatorSource interface {
	ListEvents(ctx context.Context, limit, offset int) ([]models.Event, error)
}

// KeywordSuggester proposes an alternative keyword for a query that found
// nothing. It may be unavailable; every failure is swallowed.
type KeywordSuggester interface {
	SuggestKeyword(ctx context.Context, query string) (string, error)
}

// QueryRecorder saves a query the first time it produces results.
type QueryRecorder interface {
	Record(query string, queryType models.QueryType, tagID, categoryName string) (*models.SavedQuery, bool, error)
}

type Service struct {
	events     EventSource
	aggregator AggregatorSource
	suggester  KeywordSuggester
	recorder   QueryRecorder
	log        *logrus.Logger

	pageSize int
}

func NewService(events EventSource, aggregator AggregatorSource, suggester KeywordSuggester, recorder QueryRecorder, pageSize int, log *logrus.Logger) *Service {
	return &Service{
		events:     events,
		aggregator: aggregator,
		suggester:  suggester,
		recorder:   recorder,
		log:        log,
		pageSize:   pageSize,
	}
}

// SearchResult is one page of search results plus the keyword that
// actually produced it. SuggestedQuery is set only when the original
// keyword found nothing and the AI retry found something.
type SearchResult struct {
	Page           models.ResultPage `json:"page"`
	Query          string            `json:"query"`
	SuggestedQuery string            `json:"suggestedQuery,omitempty"`
}

// Search runs a keyword search. When the first page comes back empty, the
// assistant is asked for a better keyword exactly once and the search is
// retried with it. Assistant failures never fail the search.
func (s *Service) Search(ctx context.Context, query string, page int) (*SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query must not be empty")
	}
	offset, err := s.offset(page)
	if err != nil {
		return nil, err
	}

	events, err := s.events.Search(ctx, query, s.pageSize, offset)
	if err != nil {
		return nil, err
	}

	result := &SearchResult{Query: query}
	if len(events) == 0 && page == 1 && s.suggester != nil {
		if retried, keyword := s.retryWithSuggestion(ctx, query); retried != nil {
			events = retried
			result.SuggestedQuery = keyword
		}
	}

	result.Page = normalize.BuildPage(events, s.pageSize)
	if page == 1 && len(result.Page.Events) > 0 {
		s.record(query, models.QueryTypeSearch, "", "")
	}
	return result, nil
}

// retryWithSuggestion asks the assistant for one alternative keyword and
// reruns the search with it. Returns nil when nothing usable came back.
func (s *Service) retryWithSuggestion(ctx context.Context, query string) ([]models.Event, string) {
	keyword, err := s.suggester.SuggestKeyword(ctx, query)
	if err != nil {
		s.log.WithError(err).Debug("Keyword suggestion failed")
		return nil, ""
	}
	if keyword == "" || strings.EqualFold(keyword, query) {
		return nil, ""
	}

	events, err := s.events.Search(ctx, keyword, s.pageSize, 0)
	if err != nil {
		s.log.WithError(err).Warn("Suggested keyword search failed")
		return nil, ""
	}
	if len(events) == 0 {
		return nil, ""
	}
	return events, keyword
}

// Browse lists one page of a category. CategoryAll lists across all tags
// and is never recorded as a saved query.
func (s *Service) Browse(ctx context.Context, categoryID string, page int) (models.ResultPage, error) {
	offset, err := s.offset(page)
	if err != nil {
		return models.ResultPage{}, err
	}

	var category models.Category
	if categoryID != CategoryAll {
		var ok bool
		category, ok = CategoryByID(categoryID)
		if !ok {
			return models.ResultPage{}, fmt.Errorf("unknown category: %s", categoryID)
		}
	}

	events, err := s.events.ListByTag(ctx, category.TagSlug, s.pageSize, offset)
	if err != nil {
		return models.ResultPage{}, err
	}

	result := normalize.BuildPage(events, s.pageSize)
	if page == 1 && len(result.Events) > 0 && categoryID != CategoryAll {
		s.record(category.Name, models.QueryTypeCategory, category.TagID, category.Name)
	}
	return result, nil
}

// Aggregated lists one page of the aggregator feed.
func (s *Service) Aggregated(ctx context.Context, page int) (models.ResultPage, error) {
	if s.aggregator == nil {
		return models.ResultPage{}, fmt.Errorf("aggregator source is disabled")
	}
	offset, err := s.offset(page)
	if err != nil {
		return models.ResultPage{}, err
	}

	events, err := s.aggregator.ListEvents(ctx, s.pageSize, offset)
	if err != nil {
		return models.ResultPage{}, err
	}
	return normalize.BuildPage(events, s.pageSize), nil
}

// EventByID fetches a single event by id or slug.
func (s *Service) EventByID(ctx context.Context, identifier string) (*models.Event, error) {
	return s.events.EventByID(ctx, identifier)
}

func (s *Service) offset(page int) (int, error) {
	if page < 1 {
		return 0, fmt.Errorf("page must be at least 1, got %d", page)
	}
	return (page - 1) * s.pageSize, nil
}

func (s *Service) record(query string, queryType models.QueryType, tagID, categoryName string) {
	if s.recorder == nil {
		return
	}
	if _, _, err := s.recorder.Record(query, queryType, tagID, categoryName); err != nil {
		s.log.WithError(err).Warn("Failed to record saved query")
	}
}
