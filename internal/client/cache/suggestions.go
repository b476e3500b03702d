package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dmitrijs2005/grocerycompare/internal/client/models"
	"github.com/dmitrijs2005/grocerycompare/internal/common"
)

const suggestKeyPrefix = "suggest:"

// Suggestions caches autocomplete results per normalized query.
type Suggestions struct {
	store BytesCache
	ttl   time.Duration
}

func NewSuggestions(store BytesCache, ttl time.Duration) *Suggestions {
	return &Suggestions{store: store, ttl: ttl}
}

func suggestKey(query string) string {
	return suggestKeyPrefix + common.NormalizeQuery(query)
}

// Get returns the cached list for query. Cache failures count as misses.
func (s *Suggestions) Get(ctx context.Context, query string) ([]models.Suggestion, bool) {
	if s == nil || s.store == nil || s.ttl <= 0 {
		return nil, false
	}
	b, ok, err := s.store.GetBytes(ctx, suggestKey(query))
	if err != nil || !ok {
		return nil, false
	}
	var list []models.Suggestion
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, false
	}
	return list, true
}

func (s *Suggestions) Put(ctx context.Context, query string, list []models.Suggestion) error {
	if s == nil || s.store == nil || s.ttl <= 0 {
		return nil
	}
	if list == nil {
		list = []models.Suggestion{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return s.store.SetBytes(ctx, suggestKey(query), b, s.ttl)
}
