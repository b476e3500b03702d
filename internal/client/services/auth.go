package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/grocerycompare/internal/client/client"
	"github.com/dmitrijs2005/grocerycompare/internal/client/models"
	"github.com/dmitrijs2005/grocerycompare/internal/client/session"
	"github.com/dmitrijs2005/grocerycompare/internal/common"
	"github.com/dmitrijs2005/grocerycompare/internal/logging"
)

// SessionStore is the part of *session.Manager the services mutate.
type SessionStore interface {
	Token() string
	Bootstrap(ctx context.Context, v session.Verifier) error
	Establish(ctx context.Context, token string, user *models.User) error
	Purge(ctx context.Context) error
}

// revokeTimeout bounds the background logout request.
var revokeTimeout = 5 * time.Second

// AuthService defines authentication operations for the CLI.
type AuthService interface {
	Signup(ctx context.Context, username, email string, password []byte) (*models.User, error)
	Login(ctx context.Context, email string, password []byte) (*models.User, error)
	// Logout tells the backend and then drops the local session, even when
	// the backend call fails.
	Logout(ctx context.Context) error
	Bootstrap(ctx context.Context) error
	Ping(ctx context.Context) error
}

type authService struct {
	client   client.Client
	session  SessionStore
	validate *validator.Validate
	log      logging.Logger
}

func NewAuthService(c client.Client, s SessionStore, log logging.Logger) AuthService {
	if log == nil {
		log = logging.Nop()
	}
	return &authService{client: c, session: s, validate: validator.New(), log: log}
}

func (a *authService) Signup(ctx context.Context, username, email string, password []byte) (*models.User, error) {
	defer common.WipeByteArray(password)

	req := models.SignupRequest{
		Username: strings.TrimSpace(username),
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Password: string(password),
	}
	if err := a.check(req); err != nil {
		return nil, err
	}

	res, err := a.client.Signup(ctx, req)
	if err != nil {
		return nil, err
	}
	return a.establish(ctx, res)
}

func (a *authService) Login(ctx context.Context, email string, password []byte) (*models.User, error) {
	defer common.WipeByteArray(password)

	creds := models.Credentials{
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Password: string(password),
	}
	if err := a.check(creds); err != nil {
		return nil, err
	}

	res, err := a.client.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	return a.establish(ctx, res)
}

func (a *authService) establish(ctx context.Context, res *models.AuthResult) (*models.User, error) {
	if res == nil || res.Token == "" || res.User == nil {
		return nil, fmt.Errorf("incomplete auth response: %w", session.ErrInvalidSession)
	}
	if err := a.session.Establish(ctx, res.Token, res.User); err != nil {
		return nil, err
	}
	a.log.Info(ctx, "signed in", "user", res.User.Username)
	return res.User, nil
}

// Logout ends the session locally at once. The backend is told afterwards,
// in the background, with the token captured before the purge.
func (a *authService) Logout(ctx context.Context) error {
	token := a.session.Token()
	err := a.session.Purge(ctx)
	if token != "" {
		go a.revoke(context.WithoutCancel(ctx), token)
	}
	return err
}

func (a *authService) revoke(ctx context.Context, token string) {
	ctx, cancel := context.WithTimeout(client.WithBearer(ctx, token), revokeTimeout)
	defer cancel()
	if err := a.client.Logout(ctx); err != nil {
		a.log.Warn(ctx, "server logout failed", "error", err)
	}
}

func (a *authService) Bootstrap(ctx context.Context) error {
	return a.session.Bootstrap(ctx, a.client)
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

// check validates v and turns the first failure into a readable
// common.ErrValidation.
func (a *authService) check(v any) error {
	err := a.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	return fmt.Errorf("%w: %s", common.ErrValidation, fieldMessage(verrs[0]))
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
	case "email":
		return "invalid email format"
	}
	return field + " is invalid"
}
