// Package supabase is a small client for a Supabase project: GoTrue auth and PostgREST tables.
package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"
)

type ctxKey int

const accessTokenKey ctxKey = iota

// WithAccessToken makes requests issued with ctx act on behalf of the signed-in user.
func WithAccessToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, accessTokenKey, token)
}

func accessToken(ctx context.Context) string {
	token, _ := ctx.Value(accessTokenKey).(string)
	return token
}

// Error is an error response from the auth or the REST endpoints.
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`

	// GoTrue spells it differently
	ErrorCode        string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
}

func (e *Error) Error() string {
	msg := e.Message
	for _, m := range []string{e.ErrorDescription, e.Msg, e.ErrorCode} {
		if msg != "" {
			break
		}
		msg = m
	}
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("supabase: %d %s", e.Status, msg)
}

type Client struct {
	url     string
	anonKey string
	rest    *rest.Client
}

type Option func(*Client)

// WithHTTPClient swaps the HTTP client, e.g. for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.rest.HTTPClient = hc
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.rest.HTTPClient.Timeout = d
	}
}

func NewClient(url, anonKey string, opts ...Option) *Client {
	c := &Client{
		url:     strings.TrimRight(url, "/"),
		anonKey: anonKey,
		rest:    &rest.Client{HTTPClient: &http.Client{Timeout: 10 * time.Second}},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) URL() string { return c.url }

func (c *Client) headers(token string) map[string]string {
	if token == "" {
		token = c.anonKey
	}
	return map[string]string{
		"apikey":        c.anonKey,
		"Authorization": "Bearer " + token,
		"Content-Type":  "application/json",
		"Accept":        "application/json",
	}
}

// do sends the request and decodes a 2xx body into dest (when not nil).
func (c *Client) do(ctx context.Context, req rest.Request, dest interface{}) error {
	res, err := c.rest.SendWithContext(ctx, req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", req.Method, req.BaseURL)
	}
	if res.StatusCode >= http.StatusBadRequest {
		apiErr := &Error{Status: res.StatusCode}
		_ = json.Unmarshal([]byte(res.Body), apiErr)
		return apiErr
	}
	if dest == nil || strings.TrimSpace(res.Body) == "" {
		return nil
	}
	if err = json.Unmarshal([]byte(res.Body), dest); err != nil {
		return errors.Wrapf(err, "decoding %s %s", req.Method, req.BaseURL)
	}
	return nil
}
