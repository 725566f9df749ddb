package search

import "github.com/pulsepoly/pulsepoly/internal/models"

// CategoryAll is the pseudo-category that browses across every tag.
const CategoryAll = "all"

// catalog is the built-in browse catalog. Tag ids and slugs come from the
// upstream tag registry and change rarely; the fetch-tags command exists
// to re-verify them.
var catalog = []models.Category{
	{ID: "sports", Name: "Sports", TagID: "1", TagSlug: "sports"},
	{ID: "politics", Name: "Politics", TagID: "2", TagSlug: "politics"},
	{ID: "crypto", Name: "Crypto", TagID: "21", TagSlug: "crypto"},
	{ID: "technology", Name: "Technology", TagID: "22", TagSlug: "technology"},
	{ID: "basketball", Name: "Basketball", TagID: "28", TagSlug: "basketball"},
	{ID: "movies", Name: "Movies", TagID: "53", TagSlug: "movies"},
	{ID: "esports", Name: "Esports", TagID: "64", TagSlug: "esports"},
	{ID: "science", Name: "Science", TagID: "74", TagSlug: "science"},
	{ID: "weather", Name: "Weather", TagID: "84", TagSlug: "weather"},
	{ID: "music", Name: "Music", TagID: "100", TagSlug: "music"},
}

// Categories returns the browse catalog.
func Categories() []models.Category {
	out := make([]models.Category, len(catalog))
	copy(out, catalog)
	return out
}

// CategoryByID looks up one catalog entry.
func CategoryByID(id string) (models.Category, bool) {
	for _, cat := range catalog {
		if cat.ID == id {
			return cat, true
		}
	}
	return models.Category{}, false
}
