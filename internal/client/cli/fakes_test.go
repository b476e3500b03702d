package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/grocerycompare/internal/client/models"
	"github.com/dmitrijs2005/grocerycompare/internal/client/services"
	"github.com/dmitrijs2005/grocerycompare/internal/client/session"
	"github.com/dmitrijs2005/grocerycompare/internal/logging"
)

type fakeAuth struct {
	signupUser, signupEmail string
	signupPass              []byte
	loginEmail              string
	loginPass               []byte
	user                    *models.User
	err                     error
	logoutCalls             int
	pingErr                 error
	pings                   int
	mu                      sync.Mutex
}

func (f *fakeAuth) Signup(_ context.Context, username, email string, pw []byte) (*models.User, error) {
	f.signupUser, f.signupEmail, f.signupPass = username, email, append([]byte(nil), pw...)
	return f.user, f.err
}

func (f *fakeAuth) Login(_ context.Context, email string, pw []byte) (*models.User, error) {
	f.loginEmail, f.loginPass = email, append([]byte(nil), pw...)
	return f.user, f.err
}

func (f *fakeAuth) Logout(context.Context) error {
	f.logoutCalls++
	return f.err
}

func (f *fakeAuth) Bootstrap(context.Context) error { return nil }

func (f *fakeAuth) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pings++
	return f.pingErr
}

type fakeCatalog struct {
	searchFn  func(string) (*services.SearchView, error)
	productFn func(int64) (*services.ProductView, error)
	predictFn func(models.PredictionParams) (*models.Prediction, error)
	history   []models.SearchHistoryItem
	recent    []*models.RecentSearch
	err       error

	searched []string
	limit    int
}

func (f *fakeCatalog) Search(_ context.Context, q string) (*services.SearchView, error) {
	f.searched = append(f.searched, q)
	return f.searchFn(q)
}

func (f *fakeCatalog) Product(_ context.Context, id int64) (*services.ProductView, error) {
	return f.productFn(id)
}

func (f *fakeCatalog) Predict(_ context.Context, p models.PredictionParams) (*models.Prediction, error) {
	return f.predictFn(p)
}

func (f *fakeCatalog) History(context.Context) ([]models.SearchHistoryItem, error) {
	return f.history, f.err
}

func (f *fakeCatalog) Recent(_ context.Context, limit int) ([]*models.RecentSearch, error) {
	f.limit = limit
	return f.recent, f.err
}

func (f *fakeCatalog) Close() {}

type fakeSession struct {
	state session.State
	user  *models.User
}

func (f *fakeSession) Guard() error {
	switch f.state {
	case session.StateInit:
		return session.ErrSessionLoading
	case session.StateAuthenticated:
		return nil
	}
	return session.ErrLoginRequired
}

func (f *fakeSession) User() *models.User   { return f.user }
func (f *fakeSession) State() session.State { return f.state }

type recordLogger struct {
	mu    sync.Mutex
	lines []string
}

func (r *recordLogger) rec(msg string) {
	r.mu.Lock()
	r.lines = append(r.lines, msg)
	r.mu.Unlock()
}

func (r *recordLogger) Debug(_ context.Context, msg string, _ ...any) { r.rec(msg) }
func (r *recordLogger) Info(_ context.Context, msg string, _ ...any)  { r.rec(msg) }
func (r *recordLogger) Warn(_ context.Context, msg string, _ ...any)  { r.rec(msg) }
func (r *recordLogger) Error(_ context.Context, msg string, _ ...any) { r.rec(msg) }
func (r *recordLogger) With(...any) logging.Logger                    { return r }

func (r *recordLogger) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lines)
}

// newTestApp builds an App over fakes writing to a buffer and reading input.
func newTestApp(input string) (*App, *bytes.Buffer, *fakeAuth, *fakeCatalog, *fakeSession) {
	out := &bytes.Buffer{}
	auth := &fakeAuth{}
	cat := &fakeCatalog{}
	sess := &fakeSession{state: session.StateAuthenticated, user: &models.User{ID: 1, Username: "alice", Email: "alice@example.org"}}
	a := &App{
		auth:             auth,
		catalog:          cat,
		session:          sess,
		log:              logging.Nop(),
		reader:           bufio.NewReader(strings.NewReader(input)),
		out:              out,
		suggestMinLength: services.DefaultSuggestMinLength,
	}
	return a, out, auth, cat, sess
}

func stubInputs(t *testing.T, answers []string, password []byte) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	i := 0
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if i >= len(answers) {
			return "", io.EOF
		}
		i++
		return answers[i-1], nil
	}
	getPassword = func(_ io.Writer) ([]byte, error) { return append([]byte(nil), password...), nil }
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
}
