package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/five82/assetdesk/internal/session"
)

// Login exchanges credentials for a token pair and stores it.
func (c *Client) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return fmt.Errorf("email and password are required")
	}
	var pair TokenPair
	err := c.do(ctx, request{
		method:    http.MethodPost,
		path:      "/auth/login",
		body:      Credentials{Email: email, Password: password},
		anonymous: true,
	}, &pair)
	if err != nil {
		return err
	}
	if pair.AccessToken == "" {
		return fmt.Errorf("login response carried no access token")
	}
	if err := c.sessions.Save(ctx, session.Session{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	c.logger.Info(ctx, "logged in", "email", email)
	return nil
}

// Logout tells the server (best effort) and always clears the local session.
// The returned error is the local one; server failures are only logged.
func (c *Client) Logout(ctx context.Context) error {
	sess, err := c.sessions.Load(ctx)
	if err == nil && sess.AccessToken != "" {
		if err := c.do(ctx, request{method: http.MethodPost, path: "/auth/logout"}, nil); err != nil {
			c.logger.Warn(ctx, "server logout failed", "error", err)
		}
	}
	if err := c.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	c.logger.Info(ctx, "logged out")
	return nil
}

// Me returns the user owning the current session.
func (c *Client) Me(ctx context.Context) (User, error) {
	sess, err := c.sessions.Load(ctx)
	if err != nil {
		return User{}, fmt.Errorf("load session: %w", err)
	}
	if sess.Empty() {
		return User{}, ErrNoSession
	}
	var u User
	if err := c.do(ctx, request{method: http.MethodGet, path: "/auth/me"}, &u); err != nil {
		return User{}, err
	}
	return u, nil
}
