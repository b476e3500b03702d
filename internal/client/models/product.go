package models

// Product is a catalogue item with its latest per-store prices.
type Product struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Category    string         `json:"category,omitempty"`
	Description string         `json:"description,omitempty"`
	ImageURL    string         `json:"image_url,omitempty"`
	CreatedAt   string         `json:"created_at,omitempty"`
	UpdatedAt   string         `json:"updated_at,omitempty"`
	Prices      []*PriceRecord `json:"prices"`
}

// SearchResult is the /search response. Warning is set when the backend
// fell back to cached prices.
type SearchResult struct {
	Product *Product       `json:"product"`
	Prices  []*PriceRecord `json:"prices"`
	Warning string         `json:"warning,omitempty"`
	Message string         `json:"message,omitempty"`
}

// Suggestion is one autocomplete candidate.
type Suggestion struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// SuggestionList is the /products/suggest response.
type SuggestionList struct {
	Suggestions []Suggestion `json:"suggestions"`
}

// SearchHistoryItem is one server-side search history entry.
type SearchHistoryItem struct {
	ID           int64  `json:"id"`
	UserID       int64  `json:"user_id"`
	Query        string `json:"query"`
	ResultsCount int    `json:"results_count"`
	SearchedAt   string `json:"searched_at"`
}

// SearchHistory is the /search-history response.
type SearchHistory struct {
	History []SearchHistoryItem `json:"history"`
}
