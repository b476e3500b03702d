package session

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/grocerycompare/internal/client/client"
	"github.com/dmitrijs2005/grocerycompare/internal/client/models"
	"github.com/dmitrijs2005/grocerycompare/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/grocerycompare/internal/client/repositories/searches"
	"github.com/dmitrijs2005/grocerycompare/internal/common"
)

type fakeVerifier struct {
	calls     int
	sawToken  string
	tokenFrom func() string
	res       *models.VerifyResult
	err       error
}

func (f *fakeVerifier) Verify(ctx context.Context) (*models.VerifyResult, error) {
	f.calls++
	if f.tokenFrom != nil {
		f.sawToken = f.tokenFrom()
	}
	return f.res, f.err
}

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func jwtToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func stored(t *testing.T, db *sql.DB) map[string][]byte {
	t.Helper()
	m, err := metadata.NewSQLiteRepository(db).List(context.Background())
	require.NoError(t, err)
	return m
}

var alice = &models.User{ID: 1, Username: "alice", Email: "alice@example.com"}

func TestGuard_FollowsState(t *testing.T) {
	m := NewManager(openDB(t), nil)
	ctx := context.Background()

	assert.Equal(t, StateInit, m.State())
	assert.ErrorIs(t, m.Guard(), ErrSessionLoading)

	require.NoError(t, m.Establish(ctx, "tok", alice))
	assert.NoError(t, m.Guard())

	require.NoError(t, m.Purge(ctx))
	assert.ErrorIs(t, m.Guard(), ErrLoginRequired)
	assert.Equal(t, "unauthenticated", m.State().String())
}

func TestBootstrap_NoToken_NoRequest(t *testing.T) {
	m := NewManager(openDB(t), nil)
	v := &fakeVerifier{}

	require.NoError(t, m.Bootstrap(context.Background(), v))

	assert.Zero(t, v.calls)
	assert.Equal(t, StateUnauthenticated, m.State())
	assert.Empty(t, m.Token())
	assert.Nil(t, m.User())
}

func TestBootstrap_OrphanUserIsPurged(t *testing.T) {
	db := openDB(t)
	require.NoError(t, metadata.NewSQLiteRepository(db).Set(context.Background(), common.MetadataKeyUser, []byte(`{"id":1}`)))

	m := NewManager(db, nil)
	v := &fakeVerifier{}
	require.NoError(t, m.Bootstrap(context.Background(), v))

	assert.Zero(t, v.calls)
	assert.Empty(t, stored(t, db))
}

func TestBootstrap_ExpiredJWTPurgedLocally(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	require.NoError(t, NewManager(db, nil).Establish(ctx, jwtToken(t, time.Now().Add(-time.Hour)), alice))

	m := NewManager(db, nil)
	v := &fakeVerifier{}
	require.NoError(t, m.Bootstrap(ctx, v))

	assert.Zero(t, v.calls)
	assert.Equal(t, StateUnauthenticated, m.State())
	assert.Empty(t, stored(t, db))
}

func TestBootstrap_ValidTokenRestoresSession(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	token := jwtToken(t, time.Now().Add(time.Hour))
	require.NoError(t, NewManager(db, nil).Establish(ctx, token, alice))

	m := NewManager(db, nil)
	fresh := &models.User{ID: 1, Username: "alice2", Email: "alice@example.com"}
	v := &fakeVerifier{tokenFrom: m.Token, res: &models.VerifyResult{Valid: true, User: fresh}}

	require.NoError(t, m.Bootstrap(ctx, v))

	assert.Equal(t, 1, v.calls)
	assert.Equal(t, token, v.sawToken, "verify must carry the stored token")
	assert.Equal(t, StateAuthenticated, m.State())
	assert.Equal(t, token, m.Token())
	require.NotNil(t, m.User())
	assert.Equal(t, "alice2", m.User().Username)
	assert.JSONEq(t, `{"id":1,"username":"alice2","email":"alice@example.com"}`, string(stored(t, db)[common.MetadataKeyUser]))
}

func TestBootstrap_ValidWithoutUserKeepsStoredUser(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	require.NoError(t, NewManager(db, nil).Establish(ctx, "opaque-token", alice))

	m := NewManager(db, nil)
	require.NoError(t, m.Bootstrap(ctx, &fakeVerifier{res: &models.VerifyResult{Valid: true}}))

	assert.Equal(t, StateAuthenticated, m.State())
	assert.Equal(t, "alice", m.User().Username)
}

func TestBootstrap_RejectedTokenPurges(t *testing.T) {
	tests := []struct {
		name string
		v    *fakeVerifier
	}{
		{name: "error", v: &fakeVerifier{err: errors.New("Authentication failed")}},
		{name: "invalid flag", v: &fakeVerifier{res: &models.VerifyResult{Valid: false}}},
		{name: "nil result", v: &fakeVerifier{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := openDB(t)
			ctx := context.Background()
			require.NoError(t, NewManager(db, nil).Establish(ctx, "opaque-token", alice))

			m := NewManager(db, nil)
			require.NoError(t, m.Bootstrap(ctx, tt.v))

			assert.Equal(t, 1, tt.v.calls)
			assert.Equal(t, StateUnauthenticated, m.State())
			assert.Empty(t, m.Token())
			assert.Empty(t, stored(t, db))
		})
	}
}

func TestEstablish_WritesBothKeys(t *testing.T) {
	db := openDB(t)
	m := NewManager(db, nil)

	require.NoError(t, m.Establish(context.Background(), "tok", alice))

	s := stored(t, db)
	assert.Equal(t, []byte("tok"), s[common.MetadataKeyToken])
	assert.JSONEq(t, `{"id":1,"username":"alice","email":"alice@example.com"}`, string(s[common.MetadataKeyUser]))

	u := m.User()
	u.Username = "mutated"
	assert.Equal(t, "alice", m.User().Username, "User returns a copy")
}

func TestEstablish_RejectsPartialSession(t *testing.T) {
	db := openDB(t)
	m := NewManager(db, nil)
	ctx := context.Background()

	assert.ErrorIs(t, m.Establish(ctx, "", alice), ErrInvalidSession)
	assert.ErrorIs(t, m.Establish(ctx, "tok", nil), ErrInvalidSession)
	assert.Empty(t, stored(t, db))
	assert.Equal(t, StateInit, m.State())
}

func TestPurge_ClearsSessionAndRecentSearches(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	m := NewManager(db, nil)
	require.NoError(t, m.Establish(ctx, "tok", alice))
	require.NoError(t, metadata.NewSQLiteRepository(db).Set(ctx, "unrelated", []byte("keep")))
	require.NoError(t, searches.NewSQLiteRepository(db).Add(ctx, &models.RecentSearch{Query: "milk"}))

	m.HandleUnauthorized(ctx)

	assert.Equal(t, StateUnauthenticated, m.State())
	assert.Equal(t, map[string][]byte{"unrelated": []byte("keep")}, stored(t, db))
	recent, err := searches.NewSQLiteRepository(db).Recent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestPurge_StoreFailureStillSignsOut(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	m := NewManager(db, nil)
	require.NoError(t, m.Establish(ctx, "tok", alice))
	require.NoError(t, db.Close())

	require.Error(t, m.Purge(ctx))
	assert.Equal(t, StateUnauthenticated, m.State())
	assert.Empty(t, m.Token())
}

func TestExpired(t *testing.T) {
	m := NewManager(nil, nil)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	assert.True(t, m.expired(jwtToken(t, now.Add(-time.Second))))
	assert.True(t, m.expired(jwtToken(t, now)))
	assert.False(t, m.expired(jwtToken(t, now.Add(time.Minute))))
	assert.False(t, m.expired("not-a-jwt"))

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "1"}).SignedString([]byte("k"))
	require.NoError(t, err)
	assert.False(t, m.expired(noExp))
}

func TestConcurrentAccess(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	m := NewManager(db, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = m.Token()
			_ = m.User()
			_ = m.Guard()
		}()
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_ = m.Establish(ctx, "tok", alice)
			} else {
				_ = m.Purge(ctx)
			}
		}(i)
	}
	wg.Wait()

	s := stored(t, db)
	_, hasToken := s[common.MetadataKeyToken]
	_, hasUser := s[common.MetadataKeyUser]
	assert.Equal(t, hasToken, hasUser, "token and user are never stored independently")
}

// blockingVerifier parks Verify until release is closed.
type blockingVerifier struct {
	entered chan struct{}
	release chan struct{}
	res     *models.VerifyResult
}

func newBlockingVerifier(res *models.VerifyResult) *blockingVerifier {
	return &blockingVerifier{entered: make(chan struct{}), release: make(chan struct{}), res: res}
}

func (b *blockingVerifier) Verify(ctx context.Context) (*models.VerifyResult, error) {
	close(b.entered)
	<-b.release
	return b.res, nil
}

var bob = &models.User{ID: 2, Username: "bob", Email: "bob@example.com"}

func TestBootstrap_LaterTransitionWins(t *testing.T) {
	tests := []struct {
		name      string
		verdict   *models.VerifyResult
		meanwhile func(ctx context.Context, m *Manager) error
		wantState State
		wantToken string
		wantUser  *models.User
	}{
		{
			name:      "login during rejected verify",
			verdict:   &models.VerifyResult{Valid: false},
			meanwhile: func(ctx context.Context, m *Manager) error { return m.Establish(ctx, "fresh-token", bob) },
			wantState: StateAuthenticated,
			wantToken: "fresh-token",
			wantUser:  bob,
		},
		{
			name:      "login during accepted verify",
			verdict:   &models.VerifyResult{Valid: true, User: alice},
			meanwhile: func(ctx context.Context, m *Manager) error { return m.Establish(ctx, "fresh-token", bob) },
			wantState: StateAuthenticated,
			wantToken: "fresh-token",
			wantUser:  bob,
		},
		{
			name:      "purge during accepted verify",
			verdict:   &models.VerifyResult{Valid: true, User: alice},
			meanwhile: func(ctx context.Context, m *Manager) error { return m.Purge(ctx) },
			wantState: StateUnauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := openDB(t)
			ctx := context.Background()
			require.NoError(t, NewManager(db, nil).Establish(ctx, "old-token", alice))

			m := NewManager(db, nil)
			v := newBlockingVerifier(tt.verdict)
			done := make(chan error, 1)
			go func() { done <- m.Bootstrap(ctx, v) }()

			<-v.entered
			require.NoError(t, tt.meanwhile(ctx, m))
			close(v.release)
			require.NoError(t, <-done)

			assert.Equal(t, tt.wantState, m.State())
			assert.Equal(t, tt.wantToken, m.Token())
			if tt.wantUser == nil {
				assert.Nil(t, m.User())
				assert.Empty(t, stored(t, db))
				return
			}
			require.NotNil(t, m.User())
			assert.Equal(t, tt.wantUser.Username, m.User().Username)
			assert.Equal(t, []byte(tt.wantToken), stored(t, db)[common.MetadataKeyToken])
		})
	}
}

func TestBootstrap_SkippedAfterEarlierTransition(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	m := NewManager(db, nil)
	require.NoError(t, m.Establish(ctx, "fresh-token", bob))

	v := &fakeVerifier{res: &models.VerifyResult{Valid: false}}
	require.NoError(t, m.Bootstrap(ctx, v))

	assert.Zero(t, v.calls)
	assert.Equal(t, StateAuthenticated, m.State())
	assert.Equal(t, "fresh-token", m.Token())
}

func TestUnauthorizedResponseEndsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Token has expired"}`))
	}))
	t.Cleanup(srv.Close)

	db := openDB(t)
	ctx := context.Background()
	m := NewManager(db, nil)
	require.NoError(t, m.Establish(ctx, "tok", alice))

	c := client.NewHTTPClient(srv.URL,
		client.WithTokenSource(m),
		client.WithUnauthorizedHandler(m.HandleUnauthorized),
	)

	_, err := c.Search(ctx, "milk")
	require.ErrorIs(t, err, client.ErrUnauthorized)

	assert.Equal(t, StateUnauthenticated, m.State())
	assert.ErrorIs(t, m.Guard(), ErrLoginRequired)
	assert.Empty(t, m.Token())
	assert.Empty(t, stored(t, db))
}
