// Package session owns the authenticated session of the CLI: the bearer
// token and the user it belongs to.
//
// A Manager starts in StateInit and leaves it exactly once, through
// Bootstrap, Establish or Purge. The token and the user are persisted in
// the local metadata store and are always written and removed together
// in a single transaction.
package session
