package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
)

var ErrStateMismatch = errors.New("oauth state mismatch")

// Opener shows url to the user, typically by launching a browser.
type Opener func(url string) error

type googleResult struct {
	user    User
	session string
	err     string
}

const closePage = `<!doctype html><html><body><p>%s You can close this window.</p></body></html>`

// LoginGoogle runs the Google sign-in through the browser. The API finishes
// the OAuth exchange and then redirects to a one-shot loopback listener
// with the user, the session cookie value and the state nonce. Callbacks
// whose state does not match are refused and the wait goes on until ctx
// ends.
func (m *Manager) LoginGoogle(ctx context.Context, open Opener) (User, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return User{}, fmt.Errorf("google login: listen: %w", err)
	}

	state := uuid.NewString()
	results := make(chan googleResult, 1)

	r := chi.NewRouter()
	r.Get("/callback", func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		if q.Get("state") != state {
			m.logger.Warn("ignoring google callback", zap.Error(ErrStateMismatch))
			http.Error(w, ErrStateMismatch.Error(), http.StatusForbidden)
			return
		}

		res := googleResult{err: q.Get("error")}
		if res.err == "" {
			res.user = User{
				ID:         clients.ID(q.Get("customer_id")),
				Name:       q.Get("name"),
				Email:      q.Get("email"),
				PictureURL: q.Get("picture_url"),
			}
			res.session = q.Get("session")
			if res.user.ID == "" {
				res.err = "Google login failed"
			}
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if res.err != "" {
			fmt.Fprintf(w, closePage, "Sign-in failed.")
		} else {
			fmt.Fprintf(w, closePage, "Signed in.")
		}
		select {
		case results <- res:
		default:
		}
	})

	srv := &http.Server{Handler: r, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Warn("google callback listener", zap.Error(err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	callback := fmt.Sprintf("http://%s/callback?state=%s", ln.Addr().String(), state)
	if err := open(m.api.GoogleLoginURL(callback)); err != nil {
		return User{}, fmt.Errorf("google login: open browser: %w", err)
	}

	var res googleResult
	select {
	case <-ctx.Done():
		return User{}, fmt.Errorf("google login: %w", ctx.Err())
	case res = <-results:
	}
	if res.err != "" {
		return User{}, fmt.Errorf("google login: %s", res.err)
	}

	if res.session != "" {
		m.api.Base().SetCookies([]*http.Cookie{{Name: m.cookieName, Value: res.session, Path: "/"}})
	}
	m.signIn(ctx, res.user)
	return res.user, nil
}
