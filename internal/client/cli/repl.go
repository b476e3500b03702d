package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/grocerycompare/internal/client/session"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	guard() error
	Signup(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Search(ctx context.Context, query string) error
	Suggest(ctx context.Context, partial string) error
	Product(ctx context.Context, id string) error
	Predict(ctx context.Context, store string) error
	History(ctx context.Context) error
	Recent(ctx context.Context) error
	WhoAmI(ctx context.Context) error
}

const (
	helpPublic    = "Available commands: signup, login, help, exit"
	helpProtected = "Available commands: search <name>, suggest <text>, product <id>, predict [store], history, recent, whoami, logout, help, exit"
	msgLoading    = "Checking your saved session, please wait..."
	msgLogin      = "Please log in first (use 'login' or 'signup')."
	msgLoggedIn   = "Already logged in, use 'logout' first."
)

// runREPL reads commands line by line from in and dispatches them to a.
// The first word is the command, the rest of the line is its argument.
// It returns on EOF or "exit"/"quit".
//
//	Always:
//	  - help              show available commands
//	  - exit | quit       leave the program
//
//	Without a session:
//	  - signup | login    authenticate
//
//	With a session:
//	  - search <name>     compare prices for a product
//	  - suggest <text>    pick a product from autocomplete suggestions
//	  - product <id>      show a product and its prices
//	  - predict [store]   price prediction for the current product
//	  - history           search history stored by the backend
//	  - recent            searches made from this machine
//	  - whoami            show the logged in user
//	  - logout
//
// Handlers report their own errors; the loop keeps going.
func runREPL(ctx context.Context, a execIface, statusFn func() string, in *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("grocery %s> ", statusFn()))

		line, err := in.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		cmd, arg := splitCommand(line)
		if cmd == "" {
			continue
		}

		switch cmd {
		case "help":
			if a.guard() == nil {
				printlnFn(helpProtected)
			} else {
				printlnFn(helpPublic)
			}

		case "signup", "register":
			if anonymous(a) {
				_ = a.Signup(ctx)
			}

		case "login":
			if anonymous(a) {
				_ = a.Login(ctx)
			}

		case "exit", "quit":
			printlnFn("Bye!")
			return

		case "search", "s":
			if protect(a) {
				_ = a.Search(ctx, arg)
			}

		case "suggest":
			if protect(a) {
				_ = a.Suggest(ctx, arg)
			}

		case "product":
			if protect(a) {
				_ = a.Product(ctx, arg)
			}

		case "predict":
			if protect(a) {
				_ = a.Predict(ctx, arg)
			}

		case "history":
			if protect(a) {
				_ = a.History(ctx)
			}

		case "recent":
			if protect(a) {
				_ = a.Recent(ctx)
			}

		case "whoami":
			if protect(a) {
				_ = a.WhoAmI(ctx)
			}

		case "logout":
			if protect(a) {
				_ = a.Logout(ctx)
			}

		default:
			printlnFn("Unknown command:", cmd)
		}

		if errors.Is(err, io.EOF) {
			return
		}
	}
}

// protect reports whether a protected command may run and tells the user
// why not otherwise.
func protect(a execIface) bool {
	switch err := a.guard(); {
	case err == nil:
		return true
	case errors.Is(err, session.ErrSessionLoading):
		printlnFn(msgLoading)
	default:
		printlnFn(msgLogin)
	}
	return false
}

// anonymous reports whether signup or login may run: only once the stored
// session has been checked and found absent.
func anonymous(a execIface) bool {
	switch err := a.guard(); {
	case err == nil:
		printlnFn(msgLoggedIn)
	case errors.Is(err, session.ErrSessionLoading):
		printlnFn(msgLoading)
	default:
		return true
	}
	return false
}

func splitCommand(line string) (cmd, arg string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", ""
	}
	cmd, arg, _ = strings.Cut(line, " ")
	return strings.ToLower(cmd), strings.TrimSpace(arg)
}
