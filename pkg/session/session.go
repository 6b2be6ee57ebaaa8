// Package session owns the authenticated principal and its bearer credential.
// It is the only writer of that state; every other package reads it through
// the Manager.
package session

import (
	"context"
	"net/http"
	"sync"

	"github.com/tidwall/gjson"

	"github.com/desklago/leadhub/internal/utils"
	"github.com/desklago/leadhub/pkg/api"
)

// Manager holds the current session and keeps the durable store in sync.
// Access is single-threaded from the CLI's point of view, but the mutex keeps
// the change-notification path safe for the local dashboard server too.
type Manager struct {
	mu        sync.Mutex
	store     *Store
	client    *api.Client
	principal *Principal
	token     string
	listeners []func()
}

// NewManager loads any persisted session from the store. The credential is
// not trusted until Initialize has verified it against the API.
func NewManager(store *Store, client *api.Client) (*Manager, error) {
	m := &Manager{store: store, client: client}

	token, err := store.get(keyToken)
	if err != nil {
		return nil, err
	}
	m.token = token

	if raw, err := store.get(keyUser); err == nil && raw != "" {
		if p, err := decodeStored(raw); err == nil {
			m.principal = p
		}
	}
	return m, nil
}

// Token returns the current bearer credential, or "".
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// Current returns the authenticated principal, or nil.
func (m *Manager) Current() *Principal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.principal
}

// IsAuthenticated reports whether both a credential and a principal are held.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token != "" && m.principal != nil
}

// Subscribe registers a callback invoked after every session change.
func (m *Manager) Subscribe(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Initialize verifies a persisted credential against the API. Any failure at
// all (bad token, network error, malformed payload) fails closed: the session
// is cleared and the user has to log in again.
func (m *Manager) Initialize(ctx context.Context) error {
	if m.Token() == "" {
		return nil
	}

	body, err := m.client.Do(ctx, http.MethodPost, "/verify-token", nil)
	if err != nil {
		utils.Log.Debug("token verification failed: ", err)
		return m.Logout()
	}

	if !gjson.GetBytes(body, "success").Bool() {
		return m.Logout()
	}
	principal, err := DecodePrincipal([]byte(gjson.GetBytes(body, "data.user").Raw))
	if err != nil {
		utils.Log.Debug("malformed verify-token payload: ", err)
		return m.Logout()
	}

	m.mu.Lock()
	m.principal = principal
	m.mu.Unlock()
	if err := m.persist(); err != nil {
		return err
	}
	m.notify()
	return nil
}

// LoginResult is the structured outcome of a login attempt. Rejected
// credentials are not an error; callers render Reason inline.
type LoginResult struct {
	OK      bool
	Reason  string
	Network bool
}

// Login authenticates against the API and, on success, persists the session.
func (m *Manager) Login(ctx context.Context, email, password string) (LoginResult, error) {
	body, err := m.client.Do(ctx, http.MethodPost, "/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		if api.IsNetwork(err) {
			return LoginResult{Reason: "network error occurred, check your connection", Network: true}, nil
		}
		return LoginResult{Reason: err.Error()}, nil
	}

	token := gjson.GetBytes(body, "data.token").Str
	if !gjson.GetBytes(body, "success").Bool() || token == "" {
		return LoginResult{Reason: "invalid response from server"}, nil
	}

	// Login responses carry the user under "admin"; fall back to "user" for
	// the non-admin login shape.
	userRaw := gjson.GetBytes(body, "data.admin").Raw
	if userRaw == "" {
		userRaw = gjson.GetBytes(body, "data.user").Raw
	}
	principal, err := DecodePrincipal([]byte(userRaw))
	if err != nil {
		return LoginResult{Reason: "invalid response from server"}, nil
	}

	m.mu.Lock()
	m.token = token
	m.principal = principal
	m.mu.Unlock()

	if err := m.persist(); err != nil {
		return LoginResult{}, err
	}
	m.notify()
	return LoginResult{OK: true}, nil
}

// Logout clears the principal, credential and persisted copies. Idempotent.
func (m *Manager) Logout() error {
	m.mu.Lock()
	m.token = ""
	m.principal = nil
	m.mu.Unlock()

	if err := m.store.clear(); err != nil {
		return err
	}
	m.notify()
	return nil
}

func (m *Manager) persist() error {
	m.mu.Lock()
	token := m.token
	principal := m.principal
	m.mu.Unlock()

	if err := m.store.set(keyToken, token); err != nil {
		return err
	}
	encoded, err := principal.encode()
	if err != nil {
		return err
	}
	return m.store.set(keyUser, encoded)
}

func (m *Manager) notify() {
	m.mu.Lock()
	listeners := make([]func(), len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}
