package models

import "time"

// RecentSearch is a search recorded in the local store. ProductID and
// Lowest are empty when the backend returned no product or no valid price.
type RecentSearch struct {
	ID         int64
	Query      string
	ProductID  *int64
	Offers     int
	Lowest     *float64
	SearchedAt time.Time
}
