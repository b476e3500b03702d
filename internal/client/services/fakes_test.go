package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/grocerycompare/internal/client/models"
	"github.com/dmitrijs2005/grocerycompare/internal/client/session"
)

// fakeClient implements client.Client. Each call is recorded; the hook
// fields, when set, override the canned results.
type fakeClient struct {
	mu sync.Mutex

	AuthRet   *models.AuthResult
	AuthErr   error
	VerifyRet *models.VerifyResult
	VerifyErr error
	LogoutErr error
	LogoutFn  func(ctx context.Context) error
	PingErr   error

	SearchFn    func(ctx context.Context, name string) (*models.SearchResult, error)
	ProductFn   func(ctx context.Context, id int64) (*models.Product, error)
	PredictFn   func(ctx context.Context, p models.PredictionParams) (*models.Prediction, error)
	SuggestFn   func(ctx context.Context, q string) ([]models.Suggestion, error)
	HistoryRet  []models.SearchHistoryItem
	HistoryErr  error

	LastSignup  models.SignupRequest
	LastLogin   models.Credentials
	LastPredict models.PredictionParams
	Calls       map[string]int
	SuggestArgs []string
}

func (f *fakeClient) hit(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Calls == nil {
		f.Calls = map[string]int{}
	}
	f.Calls[name]++
}

func (f *fakeClient) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls[name]
}

func (f *fakeClient) Signup(ctx context.Context, r models.SignupRequest) (*models.AuthResult, error) {
	f.hit("signup")
	f.LastSignup = r
	return f.AuthRet, f.AuthErr
}

func (f *fakeClient) Login(ctx context.Context, c models.Credentials) (*models.AuthResult, error) {
	f.hit("login")
	f.LastLogin = c
	return f.AuthRet, f.AuthErr
}

func (f *fakeClient) Verify(ctx context.Context) (*models.VerifyResult, error) {
	f.hit("verify")
	return f.VerifyRet, f.VerifyErr
}

func (f *fakeClient) Logout(ctx context.Context) error {
	f.hit("logout")
	if f.LogoutFn != nil {
		return f.LogoutFn(ctx)
	}
	return f.LogoutErr
}

func (f *fakeClient) Search(ctx context.Context, name string) (*models.SearchResult, error) {
	f.hit("search")
	return f.SearchFn(ctx, name)
}

func (f *fakeClient) Product(ctx context.Context, id int64) (*models.Product, error) {
	f.hit("product")
	return f.ProductFn(ctx, id)
}

func (f *fakeClient) Predict(ctx context.Context, p models.PredictionParams) (*models.Prediction, error) {
	f.hit("predict")
	f.LastPredict = p
	return f.PredictFn(ctx, p)
}

func (f *fakeClient) Suggest(ctx context.Context, q string) ([]models.Suggestion, error) {
	f.hit("suggest")
	f.mu.Lock()
	f.SuggestArgs = append(f.SuggestArgs, q)
	f.mu.Unlock()
	return f.SuggestFn(ctx, q)
}

func (f *fakeClient) SearchHistory(ctx context.Context) ([]models.SearchHistoryItem, error) {
	f.hit("history")
	return f.HistoryRet, f.HistoryErr
}

func (f *fakeClient) Ping(ctx context.Context) error {
	f.hit("ping")
	return f.PingErr
}

// fakeSession records SessionStore calls.
type fakeSession struct {
	StoredToken  string
	User         *models.User
	Purged       int
	Bootstrapped session.Verifier
	EstablishErr error
	PurgeErr     error
}

func (s *fakeSession) Token() string { return s.StoredToken }

func (s *fakeSession) Bootstrap(ctx context.Context, v session.Verifier) error {
	s.Bootstrapped = v
	return nil
}

func (s *fakeSession) Establish(ctx context.Context, token string, user *models.User) error {
	if s.EstablishErr != nil {
		return s.EstablishErr
	}
	s.StoredToken, s.User = token, user
	return nil
}

func (s *fakeSession) Purge(ctx context.Context) error {
	s.Purged++
	s.StoredToken, s.User = "", nil
	return s.PurgeErr
}
