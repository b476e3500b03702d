package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// DefaultCurrency is assumed when a price record carries no currency.
const DefaultCurrency = "INR"

// RawPrice keeps a price exactly as the backend sent it. Scrapers emit
// numbers, numeric strings, null and occasionally garbage, so parsing is
// deferred to Float.
type RawPrice string

// NewRawPrice builds a RawPrice from a number.
func NewRawPrice(v float64) RawPrice {
	return RawPrice(strconv.FormatFloat(v, 'f', -1, 64))
}

// Float parses the price. ok is false for empty, non-numeric and
// non-finite values.
func (p RawPrice) Float() (v float64, ok bool) {
	s := strings.TrimSpace(string(p))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// UnmarshalJSON accepts any JSON value. Strings are unquoted, null becomes
// the empty price and everything else is kept verbatim.
func (p *RawPrice) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*p = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = RawPrice(s)
	default:
		*p = RawPrice(data)
	}
	return nil
}

// MarshalJSON writes parsable prices as numbers and anything else as a string.
func (p RawPrice) MarshalJSON() ([]byte, error) {
	if p == "" {
		return []byte("null"), nil
	}
	if v, ok := p.Float(); ok {
		return json.Marshal(v)
	}
	return json.Marshal(string(p))
}

// PriceRecord is one store's offer for a product.
//
// The backend has used two names for the store (store, store_name) and for
// the offer URL (link, product_url). Callers should use StoreID and URL
// rather than reading the fields directly.
type PriceRecord struct {
	ID         int64    `json:"id,omitempty"`
	ProductID  int64    `json:"product_id,omitempty"`
	Store      string   `json:"store,omitempty"`
	StoreName  string   `json:"store_name,omitempty"`
	Price      RawPrice `json:"price"`
	Currency   string   `json:"currency,omitempty"`
	InStock    bool     `json:"in_stock"`
	Link       string   `json:"link,omitempty"`
	ProductURL string   `json:"product_url,omitempty"`
	Cached     bool     `json:"cached,omitempty"`
	ScrapedAt  string   `json:"scraped_at,omitempty"`
}

// StoreID resolves the store identifier: store first, then store_name.
func (r *PriceRecord) StoreID() string {
	if r.Store != "" {
		return r.Store
	}
	return r.StoreName
}

// URL resolves the offer link: link first, then product_url.
func (r *PriceRecord) URL() string {
	if r.Link != "" {
		return r.Link
	}
	return r.ProductURL
}

// CurrencyCode returns the record currency or DefaultCurrency.
func (r *PriceRecord) CurrencyCode() string {
	if r.Currency != "" {
		return r.Currency
	}
	return DefaultCurrency
}
