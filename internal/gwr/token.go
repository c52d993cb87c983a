package gwr

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// tokenEnvelope is the persisted token file shape.
type tokenEnvelope struct {
	Token string `json:"token"`
}

// TokenManager owns the auth token lifecycle: load from the persisted
// envelope, mint a new token via the sync handshake, invalidate on explicit
// rejection. Token access is serialized so the poll loop never observes a
// half-updated token during a concurrent re-sync.
type TokenManager struct {
	path      string
	transport poster

	mu    sync.Mutex
	token string
}

// NewTokenManager creates a token manager persisting to path and performing
// the sync handshake through transport.
func NewTokenManager(path string, transport poster) *TokenManager {
	return &TokenManager{path: path, transport: transport}
}

// Load reads the persisted token envelope. A missing, empty, or unparseable
// file means a sync handshake is needed.
func (m *TokenManager) Load() (string, bool) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return "", false
	}

	var env tokenEnvelope
	if err := json.Unmarshal(data, &env); err != nil || env.Token == "" {
		return "", false
	}

	m.mu.Lock()
	m.token = env.Token
	m.mu.Unlock()
	return env.Token, true
}

// Sync performs the login handshake. The gateway only accepts the login
// while a human has put it in sync mode by pressing its physical button;
// outside that window it answers with the 404 sentinel. Placeholder
// credentials are two fresh random identifiers, as the gateway ignores
// their content.
//
// A minted token is persisted whole-file before being returned; a persist
// failure surfaces to the caller rather than being swallowed.
func (m *TokenManager) Sync(ctx context.Context) (string, error) {
	user := uuid.NewString()
	pass := uuid.NewString()

	body, err := m.transport.Post(ctx, encodeLogin(user, pass))
	if err != nil {
		return "", err
	}
	if body == "" {
		return "", ErrGatewayUnavailable
	}
	if isNotInSyncMode(body) {
		log.Warn().Msg("Gateway is not in sync mode, press the sync button on the gateway")
		return "", ErrNotInSyncMode
	}

	token, err := decodeToken(body)
	if err != nil {
		return "", err
	}

	if err := m.persist(token); err != nil {
		return "", err
	}

	m.mu.Lock()
	m.token = token
	m.mu.Unlock()

	log.Info().Str("path", m.path).Msg("Gateway token minted and persisted")
	return token, nil
}

// Token returns the current in-memory token, or "" when not synced.
func (m *TokenManager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// Invalidate drops the in-memory token, forcing the next operation to
// re-sync.
func (m *TokenManager) Invalidate() {
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()
	log.Debug().Msg("Gateway token invalidated")
}

// persist writes the token envelope via a temp file and rename, so readers
// see either the old envelope or the new one, never a partial write.
func (m *TokenManager) persist(token string) error {
	data, err := json.Marshal(tokenEnvelope{Token: token})
	if err != nil {
		return err
	}

	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, m.path)
}
