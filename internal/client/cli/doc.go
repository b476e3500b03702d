// Package cli provides the interactive grocery price CLI.
//
// NewApp wires configuration, the local store, the backend client, the
// session and the services; App.Run checks the stored session in the
// background, starts the connectivity watcher and runs the REPL until the
// user exits.
//
// Commands available without a session: signup, login, help, exit.
// With a session: search, suggest, product, predict, history, recent,
// whoami, logout. Protected commands print a loading notice while the
// stored session is still being checked and ask the user to log in when
// there is none.
package cli
