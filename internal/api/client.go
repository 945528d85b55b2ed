package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/five82/assetdesk/internal/logging"
	"github.com/five82/assetdesk/internal/session"
)

const (
	defaultBaseURL   = "http://localhost:8000/api/v1"
	defaultUserAgent = "assetdesk/0.1"
	defaultTimeout   = 10 * time.Second
	refreshPath      = "/auth/refresh"
	refreshTimeout   = 15 * time.Second
)

// Client talks to the asset management REST API. It attaches the stored
// access token to every call and, on a 401, refreshes the session once and
// replays the request.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	sessions  session.Store
	logger    logging.Logger
	refreshes singleflight.Group
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger sets the logger used for reauthentication events.
func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient builds a Client for the API rooted at baseURL, reading and
// writing tokens through store.
func NewClient(baseURL string, store session.Store, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, errors.New("session store is nil")
	}
	c := &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: defaultTimeout},
		userAgent: defaultUserAgent,
		sessions:  store,
		logger:    logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Session returns the stored session.
func (c *Client) Session(ctx context.Context) (session.Session, error) {
	return c.sessions.Load(ctx)
}

type request struct {
	method string
	path   string
	query  url.Values
	body   any
	// anonymous requests never carry a token and never trigger a refresh.
	anonymous bool
}

type response struct {
	status int
	body   []byte
}

func (c *Client) do(ctx context.Context, req request, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	var payload []byte
	if req.body != nil {
		b, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = b
	}

	var sess session.Session
	if !req.anonymous {
		s, err := c.sessions.Load(ctx)
		if err != nil {
			return fmt.Errorf("load session: %w", err)
		}
		sess = s
	}

	resp, err := c.send(ctx, req, payload, sess.AccessToken)
	if err != nil {
		return err
	}
	if resp.status == http.StatusUnauthorized && !req.anonymous && sess.RefreshToken != "" {
		next, err := c.refresh(ctx, sess)
		if err != nil {
			return err
		}
		resp, err = c.send(ctx, req, payload, next.AccessToken)
		if err != nil {
			return err
		}
	}
	return decodeResponse(req.path, resp, dest)
}

// refresh exchanges the refresh token for a new pair. Concurrent callers
// share one exchange; a caller whose stale token was already replaced gets
// the replacement without another round trip. The exchange outlives the
// caller that started it, so one cancelled caller cannot fail the others.
func (c *Client) refresh(ctx context.Context, stale session.Session) (session.Session, error) {
	ch := c.refreshes.DoChan("refresh", func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()

		current, err := c.sessions.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load session: %w", err)
		}
		if current.AccessToken != "" && current.AccessToken != stale.AccessToken {
			return current, nil
		}
		if current.RefreshToken == "" {
			return nil, &SessionExpiredError{Err: ErrNoSession}
		}

		c.logger.Info(ctx, "access token rejected, refreshing")
		var pair TokenPair
		err = c.do(ctx, request{
			method:    http.MethodPost,
			path:      refreshPath,
			body:      map[string]string{"refresh_token": current.RefreshToken},
			anonymous: true,
		}, &pair)
		if err == nil && pair.AccessToken == "" {
			err = errors.New("refresh response carried no access token")
		}
		if err != nil {
			c.logger.Warn(ctx, "refresh failed, clearing session", "error", err)
			if clearErr := c.sessions.Clear(ctx); clearErr != nil {
				c.logger.Error(ctx, "clear session", "error", clearErr)
			}
			return nil, &SessionExpiredError{Err: err}
		}

		next := session.Session{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}
		if next.RefreshToken == "" {
			next.RefreshToken = current.RefreshToken
		}
		if err := c.sessions.Save(ctx, next); err != nil {
			return nil, fmt.Errorf("save session: %w", err)
		}
		c.logger.Info(ctx, "session refreshed")
		return next, nil
	})
	select {
	case <-ctx.Done():
		return session.Session{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return session.Session{}, res.Err
		}
		return res.Val.(session.Session), nil
	}
}

func (c *Client) send(ctx context.Context, req request, payload []byte, token string) (response, error) {
	reqURL := c.baseURL.JoinPath(req.path)
	if len(req.query) > 0 {
		reqURL.RawQuery = req.query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, reqURL.String(), body)
	if err != nil {
		return response{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return response{}, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return response{}, fmt.Errorf("read response: %w", err)
	}
	return response{status: resp.StatusCode, body: data}, nil
}

// decodeResponse maps error statuses to *Error and unwraps the success
// envelope's data into dest.
func decodeResponse(path string, resp response, dest any) error {
	if resp.status >= 400 {
		return newError(path, resp.status, resp.body)
	}
	if dest == nil || len(bytes.TrimSpace(resp.body)) == 0 {
		return nil
	}
	raw, err := envelopeData(resp.body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api_url %q: missing host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
