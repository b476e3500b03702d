// Package models defines the wire data model shared by the grocery client:
// per-store price records, products, search results, predictions, users and
// autocomplete suggestions.
//
// Upstream payloads are produced by scrapers and are not always well formed.
// The types here accept what the backend actually sends (numeric prices as
// strings, null entries, legacy field names) and resolve the legacy field
// fallbacks in one place so the rest of the client never has to.
package models
