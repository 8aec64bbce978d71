package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/validation"
)

// DefaultKey is the storage key the signed-in user lives under.
const DefaultKey = "grocery_user"

// DefaultSessionCookie is the cookie the grocery API keeps its session in.
const DefaultSessionCookie = "session"

var ErrNotSignedIn = errors.New("not signed in")

type User struct {
	ID         clients.ID `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	PictureURL string     `json:"picture_url,omitempty"`
}

type savedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type savedSession struct {
	User    User          `json:"user"`
	Cookies []savedCookie `json:"cookies,omitempty"`
}

type Option func(*Manager)

func WithLogger(l *zap.Logger) Option { return func(m *Manager) { m.logger = l } }

func WithNotifier(n cart.Notifier) Option { return func(m *Manager) { m.notifier = n } }

func WithKey(key string) Option { return func(m *Manager) { m.key = key } }

func WithSessionCookie(name string) Option { return func(m *Manager) { m.cookieName = name } }

// Manager owns the signed-in user. It saves the user together with the API
// session cookies so a later run picks up where this one left off.
type Manager struct {
	api        *clients.AuthClient
	kv         cart.KV
	key        string
	cookieName string
	logger     *zap.Logger
	notifier   cart.Notifier

	mu   sync.RWMutex
	user *User
}

func NewManager(api *clients.AuthClient, kv cart.KV, opts ...Option) *Manager {
	m := &Manager{
		api:        api,
		kv:         kv,
		key:        DefaultKey,
		cookieName: DefaultSessionCookie,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Current returns the signed-in user.
func (m *Manager) Current() (User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return User{}, false
	}
	return *m.user, true
}

// Require is Current for callers that need a user.
func (m *Manager) Require() (User, error) {
	u, ok := m.Current()
	if !ok {
		return User{}, ErrNotSignedIn
	}
	return u, nil
}

// Restore reloads the saved session and confirms it with the API. Anything
// short of an authenticated answer signs the user out.
func (m *Manager) Restore(ctx context.Context) (User, bool) {
	raw, err := m.kv.Get(ctx, m.key)
	switch {
	case errors.Is(err, cart.ErrNotFound):
	case err != nil:
		m.logger.Warn("read saved session", zap.Error(err))
	default:
		var saved savedSession
		if err := json.Unmarshal(raw, &saved); err != nil {
			m.logger.Warn("discarding unreadable saved session", zap.Error(err))
			m.forget(ctx)
		} else {
			m.setUser(&saved.User)
			m.api.Base().SetCookies(toHTTPCookies(saved.Cookies))
		}
	}

	status, err := m.api.Status(ctx)
	if err != nil {
		m.logger.Warn("auth status check failed", zap.Error(err))
		m.signOutLocal(ctx)
		return User{}, false
	}
	if !status.Authenticated || status.User == nil {
		m.signOutLocal(ctx)
		return User{}, false
	}

	u := fromSession(*status.User)
	if prev, ok := m.Current(); ok && prev.ID == u.ID && u.PictureURL == "" {
		u.PictureURL = prev.PictureURL
	}
	m.signIn(ctx, u)
	return u, true
}

func (m *Manager) Login(ctx context.Context, email, password string) (User, error) {
	id, err := m.api.Login(ctx, email, password)
	if err != nil {
		return User{}, fmt.Errorf("login: %w", err)
	}

	u := User{ID: id, Email: email}
	// the login answer carries no name; the session does
	if status, err := m.api.Status(ctx); err == nil && status.User != nil {
		u = fromSession(*status.User)
	} else if err != nil {
		m.logger.Debug("auth status after login", zap.Error(err))
	}

	m.signIn(ctx, u)
	return u, nil
}

// Register validates the sign-up form and asks the API to mail a one-time
// code. The account exists once VerifyEmail succeeds.
func (m *Manager) Register(ctx context.Context, form validation.Registration, loc validation.Locale, countryName string) (string, error) {
	if err := form.Validate(loc).Err(); err != nil {
		return "", err
	}

	req := clients.RegisterRequest{
		Name:     form.FullName(),
		Email:    strings.TrimSpace(form.Email),
		Password: form.Password,
		Address:  form.FullAddress(loc, countryName),
	}
	if strings.TrimSpace(form.Phone) != "" {
		req.Contact = validation.FormatPhone(form.Phone, loc.Region)
	}

	msg, err := m.api.Register(ctx, req)
	if err != nil {
		return "", fmt.Errorf("register: %w", err)
	}
	return msg, nil
}

// VerifyEmail completes registration and signs the new user in.
func (m *Manager) VerifyEmail(ctx context.Context, req clients.VerifyRequest) (User, error) {
	su, err := m.api.VerifyEmail(ctx, req)
	if err != nil {
		return User{}, fmt.Errorf("verify email: %w", err)
	}
	u := fromSession(su)
	m.signIn(ctx, u)
	return u, nil
}

// Logout ends the session. The local session is cleared even when the API
// call fails; that failure is still returned.
func (m *Manager) Logout(ctx context.Context) error {
	u, ok := m.Current()
	if !ok {
		return nil
	}

	err := m.api.Logout(ctx, u.ID)
	m.signOutLocal(ctx)
	if err != nil {
		m.logger.Warn("remote logout failed", zap.Error(err), zap.String("customer_id", u.ID.String()))
		return fmt.Errorf("logout: %w", err)
	}
	m.notify("Logged out successfully!")
	return nil
}

func (m *Manager) signIn(ctx context.Context, u User) {
	m.setUser(&u)

	var cookies []savedCookie
	for _, c := range m.api.Base().Cookies() {
		cookies = append(cookies, savedCookie{Name: c.Name, Value: c.Value})
	}
	raw, err := json.Marshal(savedSession{User: u, Cookies: cookies})
	if err != nil {
		m.logger.Warn("encode session", zap.Error(err))
		return
	}
	if err := m.kv.Put(ctx, m.key, raw); err != nil {
		m.logger.Warn("save session", zap.Error(err))
	}
}

func (m *Manager) signOutLocal(ctx context.Context) {
	m.setUser(nil)
	m.api.Base().ClearCookies()
	m.forget(ctx)
}

func (m *Manager) forget(ctx context.Context) {
	if err := m.kv.Delete(ctx, m.key); err != nil && !errors.Is(err, cart.ErrNotFound) {
		m.logger.Warn("delete saved session", zap.Error(err))
	}
}

func (m *Manager) setUser(u *User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = u
}

func (m *Manager) notify(msg string) {
	if m.notifier != nil {
		m.notifier.Notify(msg)
	}
}

func fromSession(su clients.SessionUser) User {
	return User{ID: su.CustomerID, Name: su.Name, Email: su.Email, PictureURL: su.PictureURL}
}

func toHTTPCookies(saved []savedCookie) []*http.Cookie {
	out := make([]*http.Cookie, 0, len(saved))
	for _, c := range saved {
		out = append(out, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	return out
}
