package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"coursehub/internal/model"
)

const (
	// DefaultSessionLifetime applies when the manager is built without a TTL.
	DefaultSessionLifetime = 24 * time.Hour
	// DefaultCookieName is the cookie carrying the session token.
	DefaultCookieName = "coursehub.sid"

	tokenBytes = 32
)

// ErrSessionNotFound is returned when a token has no live session.
var ErrSessionNotFound = errors.New("session not found")

// Payload is the role-scoped part of a session.
type Payload struct {
	Role      model.Role `json:"role"`
	AccountID uint       `json:"account_id"`
	Username  string     `json:"username"`
}

// Session is a server-side record keyed by an opaque token. It carries at
// most one payload, so it is authenticated as at most one role.
type Session struct {
	Token     string    `json:"-"`
	Payload   *Payload  `json:"payload,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Marker returns the role marker (the username bound for role) and whether it is present.
func (s *Session) Marker(role model.Role) (string, bool) {
	if s == nil || s.Payload == nil || s.Payload.Role != role || s.Payload.Username == "" {
		return "", false
	}
	return s.Payload.Username, true
}

// Bound reports whether the session has been persisted with a payload.
func (s *Session) Bound() bool {
	return s != nil && s.Payload != nil
}

func (s *Session) clone() *Session {
	cp := *s
	if s.Payload != nil {
		p := *s.Payload
		cp.Payload = &p
	}
	return &cp
}

// Store persists sessions by token.
type Store interface {
	Get(ctx context.Context, token string) (*Session, error)
	Save(ctx context.Context, sess *Session) error
	Delete(ctx context.Context, token string) error
}

// SessionManagerInterface defines the session operations the auth flows rely on.
type SessionManagerInterface interface {
	Rotate(ctx context.Context, previousToken string, payload Payload) (*Session, error)
	Destroy(ctx context.Context, token string) error
}

// ManagerConfig configures a Manager.
type ManagerConfig struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Manager owns the session lifecycle: create, read, bind, destroy.
type Manager struct {
	store  Store
	cfg    ManagerConfig
	now    func() time.Time
	random func([]byte) (int, error)
}

// Ensure Manager implements SessionManagerInterface
var _ SessionManagerInterface = (*Manager)(nil)

// NewManager creates a session manager over store.
func NewManager(store Store, cfg ManagerConfig) *Manager {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultSessionLifetime
	}
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}
	return &Manager{
		store:  store,
		cfg:    cfg,
		now:    time.Now,
		random: rand.Read,
	}
}

// CookieName returns the name of the session cookie.
func (m *Manager) CookieName() string {
	return m.cfg.CookieName
}

// Create returns a new empty session under a fresh token. Nothing is
// persisted until a payload is bound.
func (m *Manager) Create() (*Session, error) {
	token, err := m.generateToken()
	if err != nil {
		return nil, err
	}
	now := m.now().UTC()
	return &Session{
		Token:     token,
		CreatedAt: now,
		ExpiresAt: now.Add(m.cfg.TTL),
	}, nil
}

// Read returns the live session for token or ErrSessionNotFound.
func (m *Manager) Read(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}
	sess, err := m.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if !m.now().Before(sess.ExpiresAt) {
		_ = m.store.Delete(ctx, token)
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Resolve returns the session for token, or a new empty one when token is
// unknown or expired.
func (m *Manager) Resolve(ctx context.Context, token string) (*Session, error) {
	sess, err := m.Read(ctx, token)
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, ErrSessionNotFound) {
		return nil, err
	}
	return m.Create()
}

// Bind replaces the session's payload and persists it for a full TTL.
func (m *Manager) Bind(ctx context.Context, sess *Session, payload Payload) error {
	if sess == nil || sess.Token == "" {
		return fmt.Errorf("bind session: missing token")
	}
	p := payload
	sess.Payload = &p
	sess.ExpiresAt = m.now().UTC().Add(m.cfg.TTL)
	if err := m.store.Save(ctx, sess.clone()); err != nil {
		return fmt.Errorf("bind session: %w", err)
	}
	return nil
}

// Rotate retires previousToken and binds payload to a session under a fresh
// token. A token the client arrived with never becomes authenticated.
func (m *Manager) Rotate(ctx context.Context, previousToken string, payload Payload) (*Session, error) {
	if err := m.Destroy(ctx, previousToken); err != nil {
		return nil, fmt.Errorf("rotate session: %w", err)
	}
	sess, err := m.Create()
	if err != nil {
		return nil, fmt.Errorf("rotate session: %w", err)
	}
	if err := m.Bind(ctx, sess, payload); err != nil {
		return nil, fmt.Errorf("rotate session: %w", err)
	}
	return sess, nil
}

// Destroy removes the session. Destroying an absent session succeeds.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := m.store.Delete(ctx, token); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}

// Cookie returns the cookie that delivers sess to the client.
func (m *Manager) Cookie(sess *Session) *http.Cookie {
	return &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		MaxAge:   int(sess.ExpiresAt.Sub(m.now()).Seconds()),
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ExpiredCookie returns a cookie that clears the session token on the client.
func (m *Manager) ExpiredCookie() *http.Cookie {
	return &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (m *Manager) generateToken() (string, error) {
	raw := make([]byte, tokenBytes)
	if _, err := m.random(raw); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(raw), nil
}
