package normalize

import (
	"sort"

	"github.com/pulsepoly/pulsepoly/internal/models"
)

// SortByRecency orders a freshly fetched page newest-first by each event's
// best-available date (start, creation, then end). Events with no date at
// all carry epoch zero and sink to the end. The sort is stable so upstream
// order breaks ties.
func SortByRecency(events []models.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].SortDate().After(events[j].SortDate())
	})
}

// Dedupe removes repeated events within one sequence, keyed by the derived
// identity (id, else slug, else title+start-date). First occurrence wins.
func Dedupe(events []models.Event) []models.Event {
	seen := make(map[string]struct{}, len(events))
	unique := make([]models.Event, 0, len(events))
	for _, ev := range events {
		key := ev.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, ev)
	}
	return unique
}

// Merge appends a new page onto an accumulated result set, dropping page
// entries whose identity already appears in the accumulated set. The page's
// internal order is preserved.
func Merge(existing, page []models.Event) []models.Event {
	seen := make(map[string]struct{}, len(existing))
	for _, ev := range existing {
		seen[ev.Key()] = struct{}{}
	}
	merged := make([]models.Event, 0, len(existing)+len(page))
	merged = append(merged, existing...)
	for _, ev := range page {
		if _, ok := seen[ev.Key()]; ok {
			continue
		}
		seen[ev.Key()] = struct{}{}
		merged = append(merged, ev)
	}
	return merged
}

// BuildPage turns one fetched batch into a ResultPage: in-page dedup, then
// recency sort. HasMore uses the page-size heuristic: true iff the deduped
// page holds exactly pageSize entries. The upstream exposes no total count,
// so this can cost one empty fetch at the true end of results; callers treat
// that as normal termination.
func BuildPage(events []models.Event, pageSize int) models.ResultPage {
	unique := Dedupe(events)
	SortByRecency(unique)
	return models.ResultPage{
		Events:  unique,
		HasMore: pageSize > 0 && len(unique) == pageSize,
	}
}
