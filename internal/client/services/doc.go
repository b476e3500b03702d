// Package services orchestrates the backend client, the session and the
// local store on behalf of the CLI commands.
//
// AuthService covers signup, login, logout and the startup session check.
// CatalogService runs searches, product lookups, predictions and history
// queries, ranking prices with the pricing package and discarding responses
// overtaken by a newer request of the same kind. Suggester implements the
// debounced autocomplete.
package services
