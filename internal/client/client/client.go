package client

import (
	"context"

	"github.com/dmitrijs2005/grocerycompare/internal/client/models"
)

// Client is the backend API used by the services layer.
type Client interface {
	Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResult, error)
	Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error)
	Verify(ctx context.Context) (*models.VerifyResult, error)
	Logout(ctx context.Context) error

	Search(ctx context.Context, productName string) (*models.SearchResult, error)
	Product(ctx context.Context, id int64) (*models.Product, error)
	Predict(ctx context.Context, params models.PredictionParams) (*models.Prediction, error)
	Suggest(ctx context.Context, query string) ([]models.Suggestion, error)
	SearchHistory(ctx context.Context) ([]models.SearchHistoryItem, error)

	Ping(ctx context.Context) error
}

// TokenSource yields the bearer token to attach, or "" for none.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// UnauthorizedHandler is called whenever the backend answers 401.
type UnauthorizedHandler func(ctx context.Context)

type bearerKey struct{}

// WithBearer binds token to ctx. A request made with such a context sends
// token instead of asking the TokenSource, and a 401 answer to it does not
// reach the UnauthorizedHandler, since it concerns a session already gone.
func WithBearer(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerKey{}, token)
}

// BearerFromContext returns the token bound by WithBearer.
func BearerFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(bearerKey{}).(string)
	return token, ok
}
