package clients

import (
	"context"
	"net/http"
	"net/url"
)

type AuthClient struct{ c *Client }

func NewAuthClient(c *Client) *AuthClient { return &AuthClient{c: c} }

// Base exposes the shared client so the session layer can save and restore
// cookies.
func (ac *AuthClient) Base() *Client { return ac.c }

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Address  string `json:"address"`
	Contact  string `json:"contact"`
}

type VerifyRequest struct {
	Email    string `json:"email"`
	OTP      string `json:"otp"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// SessionUser is the user as the API reports it.
type SessionUser struct {
	CustomerID ID     `json:"customer_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	PictureURL string `json:"picture_url,omitempty"`
}

type AuthStatus struct {
	Authenticated bool         `json:"authenticated"`
	User          *SessionUser `json:"user,omitempty"`
}

// Register starts sign-up; the API mails a one-time code to finish it with
// VerifyEmail.
func (ac *AuthClient) Register(ctx context.Context, req RegisterRequest) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	if err := ac.c.doJSON(ctx, http.MethodPost, "/register", nil, req, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (ac *AuthClient) VerifyEmail(ctx context.Context, req VerifyRequest) (SessionUser, error) {
	var out struct {
		Success bool        `json:"success"`
		Message string      `json:"message"`
		User    SessionUser `json:"user"`
	}
	if err := ac.c.doJSON(ctx, http.MethodPost, "/verify-email", nil, req, &out); err != nil {
		return SessionUser{}, err
	}
	return out.User, nil
}

func (ac *AuthClient) Login(ctx context.Context, email, password string) (ID, error) {
	in := map[string]string{"email": email, "password": password}
	var out struct {
		Message    string `json:"message"`
		CustomerID ID     `json:"customer_id"`
	}
	if err := ac.c.doJSON(ctx, http.MethodPost, "/login", nil, in, &out); err != nil {
		return "", err
	}
	return out.CustomerID, nil
}

func (ac *AuthClient) Logout(ctx context.Context, customerID ID) error {
	return ac.c.doJSON(ctx, http.MethodPost, "/logout/"+url.PathEscape(customerID.String()), nil, struct{}{}, nil)
}

func (ac *AuthClient) Status(ctx context.Context) (AuthStatus, error) {
	var out AuthStatus
	if err := ac.c.doJSON(ctx, http.MethodGet, "/auth/status", nil, nil, &out); err != nil {
		return AuthStatus{}, err
	}
	return out, nil
}

func (ac *AuthClient) Me(ctx context.Context) (SessionUser, error) {
	var out SessionUser
	if err := ac.c.doJSON(ctx, http.MethodGet, "/me", nil, nil, &out); err != nil {
		return SessionUser{}, err
	}
	return out, nil
}

// Restore reactivates a soft-deleted account.
func (ac *AuthClient) Restore(ctx context.Context, email string) (string, error) {
	var out result
	if err := ac.c.doJSON(ctx, http.MethodPost, "/restore", nil, map[string]string{"email": email}, &out); err != nil {
		return "", err
	}
	return out.text(), out.err()
}

// GoogleLoginURL is where the browser goes to start the Google OAuth flow;
// next is echoed back once the API has finished the exchange.
func (ac *AuthClient) GoogleLoginURL(next string) string {
	if next == "" {
		next = "/"
	}
	return ac.c.URL("/login/google", url.Values{"next": {next}}.Encode())
}
