package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/fiu-sentinel/console/internal/models"
)

// Selection is the operator's current drill-down position. Unlike the auth
// fields it is not persisted; a reload re-derives it from the URL path.
type Selection struct {
	TenantID  string `json:"tenantId"`
	ProcessID string `json:"processId"`
}

// Preferences holds named UI preferences.
type Preferences struct {
	Theme string `json:"theme"`
}

// Manager owns the operator session. A session is either fully authenticated
// (token and user both present) or fully unauthenticated; no state in between
// is ever observable. All mutation goes through Login, Logout and Restore.
type Manager struct {
	mu     sync.RWMutex
	store  Store
	logger *zap.Logger

	authenticated bool
	token         string
	user          *models.AuthUser
	selection     Selection
	preferences   Preferences
}

// NewManager creates a session manager on top of the given durable store.
func NewManager(store Store, logger *zap.Logger) *Manager {
	return &Manager{
		store:       store,
		logger:      logger,
		preferences: Preferences{Theme: "light"},
	}
}

// Login marks the session authenticated and persists both entries. No
// validation of token shape or expiry happens here; the upstream platform is
// the authority on both.
func (m *Manager) Login(ctx context.Context, token string, user models.AuthUser) error {
	m.mu.Lock()
	m.authenticated = true
	m.token = token
	u := user
	m.user = &u
	m.mu.Unlock()

	serialized, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to serialize auth user: %w", err)
	}
	if err := m.store.Set(ctx, TokenKey, token); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}
	if err := m.store.Set(ctx, UserKey, string(serialized)); err != nil {
		return fmt.Errorf("failed to persist auth user: %w", err)
	}

	m.logger.Info("operator logged in", zap.String("user_id", user.UserID))
	return nil
}

// Logout clears the session state and removes both persisted entries.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.authenticated = false
	m.token = ""
	m.user = nil
	m.selection = Selection{}
	m.mu.Unlock()

	if err := m.store.Delete(ctx, TokenKey, UserKey); err != nil {
		return fmt.Errorf("failed to clear persisted session: %w", err)
	}

	m.logger.Info("operator logged out")
	return nil
}

// Restore runs once at startup. If both persisted entries are present and
// the user entry parses, the session comes back authenticated; any missing
// or malformed entry degrades to logged-out and clears both entries.
// Malformed persisted state is never fatal.
func (m *Manager) Restore(ctx context.Context) error {
	token, tokenErr := m.store.Get(ctx, TokenKey)
	rawUser, userErr := m.store.Get(ctx, UserKey)

	if tokenErr != nil || userErr != nil {
		if !errors.Is(tokenErr, ErrKeyNotFound) && tokenErr != nil {
			return fmt.Errorf("failed to read persisted token: %w", tokenErr)
		}
		if !errors.Is(userErr, ErrKeyNotFound) && userErr != nil {
			return fmt.Errorf("failed to read persisted user: %w", userErr)
		}
		return m.reset(ctx)
	}

	var user models.AuthUser
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil || user.UserID == "" {
		m.logger.Warn("persisted session invalid, clearing", zap.Error(err))
		return m.reset(ctx)
	}

	m.mu.Lock()
	m.authenticated = true
	m.token = token
	m.user = &user
	m.mu.Unlock()

	m.logger.Info("session restored", zap.String("user_id", user.UserID))
	return nil
}

// Invalidate clears the session after an upstream 401 without treating it as
// an operator-initiated logout.
func (m *Manager) Invalidate(ctx context.Context) {
	m.mu.Lock()
	m.authenticated = false
	m.token = ""
	m.user = nil
	m.mu.Unlock()

	if err := m.store.Delete(ctx, TokenKey, UserKey); err != nil {
		m.logger.Warn("failed to clear persisted session", zap.Error(err))
	}
	m.logger.Info("session invalidated by upstream")
}

func (m *Manager) reset(ctx context.Context) error {
	m.mu.Lock()
	m.authenticated = false
	m.token = ""
	m.user = nil
	m.mu.Unlock()

	if err := m.store.Delete(ctx, TokenKey, UserKey); err != nil {
		return fmt.Errorf("failed to clear persisted session: %w", err)
	}
	return nil
}

// IsAuthenticated reports whether a complete session is present.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.authenticated
}

// Token returns the bearer token, or the empty string when unauthenticated.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// AuthUser returns a copy of the authenticated user, or nil.
func (m *Manager) AuthUser() *models.AuthUser {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// SetSelection records the current drill-down position.
func (m *Manager) SetSelection(sel Selection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selection = sel
}

// CurrentSelection returns the current drill-down position.
func (m *Manager) CurrentSelection() Selection {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.selection
}

// SetTheme records a UI theme preference.
func (m *Manager) SetTheme(theme string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.preferences.Theme = theme
}

// UIPreferences returns the named preferences.
func (m *Manager) UIPreferences() Preferences {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.preferences
}
