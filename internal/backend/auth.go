package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/tacbarber/barberdesk/internal/barber"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login posts the credentials. A 2xx answer with an unreadable body still
// counts as a successful login, with an empty user.
func (c *Client) Login(ctx context.Context, email, password string) (barber.SessionUser, error) {
	var user barber.SessionUser
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, credentials{Email: email, Password: password}, &user); err != nil {
		return barber.SessionUser{}, err
	}
	user.Normalize()
	if user.Email == "" {
		user.Email = email
	}
	return user, nil
}

func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/auth/solicitar-recuperacion", nil, map[string]string{"email": email}, nil)
}

func (c *Client) ValidateResetToken(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodGet, "/auth/validar-token", url.Values{"token": {token}}, nil, nil)
}

func (c *Client) ResetPassword(ctx context.Context, token, password string) error {
	body := map[string]string{"token": token, "password": password}
	return c.do(ctx, http.MethodPost, "/auth/resetear-password", nil, body, nil)
}
