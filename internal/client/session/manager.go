package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/grocerycompare/internal/client/models"
	"github.com/dmitrijs2005/grocerycompare/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/grocerycompare/internal/client/repositories/searches"
	"github.com/dmitrijs2005/grocerycompare/internal/common"
	"github.com/dmitrijs2005/grocerycompare/internal/dbx"
	"github.com/dmitrijs2005/grocerycompare/internal/logging"
)

type State int

const (
	StateInit State = iota
	StateUnauthenticated
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

var (
	ErrSessionLoading = errors.New("session is loading")
	ErrLoginRequired  = errors.New("login required")
	ErrInvalidSession = errors.New("token and user are required")
)

// Verifier checks the current token with the backend.
type Verifier interface {
	Verify(ctx context.Context) (*models.VerifyResult, error)
}

type Manager struct {
	db  *sql.DB
	log logging.Logger
	now func() time.Time

	// transition serializes Establish, Purge and the bootstrap outcome.
	transition sync.Mutex

	mu    sync.RWMutex
	state State
	token string
	user  *models.User
}

func NewManager(db *sql.DB, log logging.Logger) *Manager {
	if log == nil {
		log = logging.Nop()
	}
	return &Manager{db: db, log: log, now: time.Now}
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Token returns the current bearer token or "".
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// User returns a copy of the current user, or nil when unauthenticated.
func (m *Manager) User() *models.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil || m.state != StateAuthenticated {
		return nil
	}
	u := *m.user
	return &u
}

// Guard decides access to protected commands.
func (m *Manager) Guard() error {
	switch m.State() {
	case StateInit:
		return ErrSessionLoading
	case StateAuthenticated:
		return nil
	default:
		return ErrLoginRequired
	}
}

// Bootstrap resolves the initial state from the persisted session. Without
// a stored token no request is made. A token whose exp claim has passed is
// purged locally; any other token is checked with v. The outcome is applied
// only while the state is still StateInit: a login, logout or 401 that
// happened meanwhile wins and the bootstrap result is dropped.
func (m *Manager) Bootstrap(ctx context.Context, v Verifier) error {
	token, user, err := m.load(ctx)
	if err != nil {
		m.log.Warn(ctx, "stored session unreadable", "error", err)
		return m.resolve(ctx, m.purgeLocked)
	}

	if token == "" {
		if user != nil {
			return m.resolve(ctx, m.purgeLocked)
		}
		return m.resolve(ctx, func(context.Context) error {
			m.setState(StateUnauthenticated, "", nil)
			return nil
		})
	}

	if m.expired(token) {
		m.log.Info(ctx, "stored token expired")
		return m.resolve(ctx, m.purgeLocked)
	}

	// the verify request reads the token through Token()
	m.mu.Lock()
	if m.state != StateInit {
		m.mu.Unlock()
		return nil
	}
	m.token = token
	m.mu.Unlock()

	res, err := v.Verify(ctx)
	if err != nil || res == nil || !res.Valid {
		if err != nil {
			m.log.Info(ctx, "stored token rejected", "error", err)
		}
		return m.resolve(ctx, m.purgeLocked)
	}

	if res.User != nil {
		user = res.User
	}
	if user == nil {
		return m.resolve(ctx, m.purgeLocked)
	}
	return m.resolve(ctx, func(ctx context.Context) error {
		return m.establishLocked(ctx, token, user)
	})
}

// resolve runs apply under the transition lock if the session is still
// initializing.
func (m *Manager) resolve(ctx context.Context, apply func(context.Context) error) error {
	m.transition.Lock()
	defer m.transition.Unlock()

	if m.State() != StateInit {
		m.log.Debug(ctx, "bootstrap result dropped", "state", m.State().String())
		return nil
	}
	return apply(ctx)
}

// Establish persists token and user and enters StateAuthenticated.
func (m *Manager) Establish(ctx context.Context, token string, user *models.User) error {
	m.transition.Lock()
	defer m.transition.Unlock()
	return m.establishLocked(ctx, token, user)
}

func (m *Manager) establishLocked(ctx context.Context, token string, user *models.User) error {
	if token == "" || user == nil {
		return ErrInvalidSession
	}

	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	err = dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, common.MetadataKeyToken, []byte(token)); err != nil {
			return err
		}
		return repo.Set(ctx, common.MetadataKeyUser, raw)
	})
	if err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	u := *user
	m.setState(StateAuthenticated, token, &u)
	return nil
}

// Purge drops the session and the local search log. The in-memory state
// becomes StateUnauthenticated even if the store cannot be updated.
func (m *Manager) Purge(ctx context.Context) error {
	m.transition.Lock()
	defer m.transition.Unlock()
	return m.purgeLocked(ctx)
}

func (m *Manager) purgeLocked(ctx context.Context) error {
	m.setState(StateUnauthenticated, "", nil)

	err := dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := metadata.NewSQLiteRepository(tx).Delete(ctx, common.MetadataKeyToken, common.MetadataKeyUser); err != nil {
			return err
		}
		return searches.NewSQLiteRepository(tx).Clear(ctx)
	})
	if err != nil {
		m.log.Error(ctx, "purge session", "error", err)
		return fmt.Errorf("purge session: %w", err)
	}
	return nil
}

// HandleUnauthorized is the client's 401 hook.
func (m *Manager) HandleUnauthorized(ctx context.Context) {
	m.log.Info(ctx, "backend rejected token, signing out")
	_ = m.Purge(ctx)
}

func (m *Manager) setState(s State, token string, user *models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
	m.token = token
	m.user = user
}

func (m *Manager) load(ctx context.Context) (string, *models.User, error) {
	repo := metadata.NewSQLiteRepository(m.db)

	token, err := repo.Get(ctx, common.MetadataKeyToken)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return "", nil, err
	}

	raw, err := repo.Get(ctx, common.MetadataKeyUser)
	if errors.Is(err, common.ErrNotFound) {
		return string(token), nil, nil
	}
	if err != nil {
		return "", nil, err
	}

	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return "", nil, fmt.Errorf("decode stored user: %w", err)
	}
	return string(token), &user, nil
}

// expired reports whether token is a JWT whose exp is in the past. Opaque
// tokens and tokens without exp are left to the backend.
func (m *Manager) expired(token string) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !m.now().Before(claims.ExpiresAt.Time)
}
