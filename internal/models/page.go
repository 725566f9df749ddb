package models

// ResultPage is one ordered page of normalized events plus the pagination
// continuation flag.
//
// HasMore is a documented approximation: it is true iff the page, after
// in-page deduplication, holds exactly the requested page size. The upstream
// APIs expose no total count, so an exact-multiple result set produces one
// extra empty fetch at the true end. Callers treat an empty follow-up page
// as normal termination, not an error.
type ResultPage struct {
	Events  []Event `json:"events"`
	HasMore bool    `json:"hasMore"`
}

// Tag is an upstream classification identifier used for filtered listings.
type Tag struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Slug  string `json:"slug"`
}

// Category is one entry of the built-in browse catalog, pairing a display
// name with the upstream tag used for listing queries.
type Category struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	TagID   string `json:"tagId"`
	TagSlug string `json:"tagSlug"`
}

// LeaderboardEntry is one row of the upstream trader leaderboard, passed
// through mostly untouched.
type LeaderboardEntry struct {
	Rank          int     `json:"rank"`
	ProxyWallet   string  `json:"proxyWallet"`
	Name          string  `json:"name"`
	ProfileImage  string  `json:"profileImage,omitempty"`
	Profit        float64 `json:"amount"`
	Volume        float64 `json:"volume"`
	MarketsTraded int     `json:"marketsTraded"`
}
