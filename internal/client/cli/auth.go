package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/grocerycompare/internal/client/services"
	"github.com/dmitrijs2005/grocerycompare/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Signup prompts for a username, email and password and creates an account.
// On success the new session is stored and the user is greeted.
func (a *App) Signup(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.auth.Signup(ctx, username, email, password)
	if err != nil {
		return a.fail(ctx, "signup", err)
	}

	fmt.Fprintf(a.out, "Welcome, %s!\n", user.Username)
	return nil
}

// Login prompts for credentials and signs in.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.auth.Login(ctx, email, password)
	if err != nil {
		return a.fail(ctx, "login", err)
	}

	fmt.Fprintf(a.out, "Welcome back, %s!\n", user.Username)
	return nil
}

// Logout ends the session on the backend (best effort) and clears the
// locally stored one.
func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return a.fail(ctx, "logout", err)
	}
	a.setCurrent(nil)
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	u := a.session.User()
	if u == nil {
		fmt.Fprintln(a.out, msgLogin)
		return nil
	}
	fmt.Fprintf(a.out, "%s <%s>\n", u.Username, u.Email)
	return nil
}

// fail prints err for the user and returns it. Superseded responses are
// dropped silently.
func (a *App) fail(ctx context.Context, op string, err error) error {
	if errors.Is(err, services.ErrStale) {
		return err
	}
	a.log.Debug(ctx, op+" failed", "error", err)
	fmt.Fprintf(a.out, "Error: %v\n", err)
	return err
}
