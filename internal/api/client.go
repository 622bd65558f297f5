// Package api is the HTTP client for the Articles REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const maxBodySize = 1 << 20

// TokenSource yields the stored session token, read before every
// authenticated request.
type TokenSource func() (string, bool)

type Options struct {
	BaseURL    string
	AuthScheme string // "" sends the raw token
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

type Client struct {
	baseURL string
	scheme  string
	http    *http.Client
	tokens  TokenSource
	log     *slog.Logger
}

func New(opts Options, tokens TokenSource) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if tokens == nil {
		tokens = func() (string, bool) { return "", false }
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		scheme:  opts.AuthScheme,
		http:    hc,
		tokens:  tokens,
		log:     logger,
	}
}

func (c *Client) Login(ctx context.Context, creds Credentials) (LoginResponse, error) {
	var out LoginResponse
	err := c.do(ctx, "login", http.MethodPost, "/login", false, creds, &out)
	return out, err
}

func (c *Client) ListArticles(ctx context.Context) (ListResponse, error) {
	var out ListResponse
	err := c.do(ctx, "list articles", http.MethodGet, "/articles", true, nil, &out)
	return out, err
}

func (c *Client) CreateArticle(ctx context.Context, in ArticleInput) (ArticleResponse, error) {
	var out ArticleResponse
	err := c.do(ctx, "create article", http.MethodPost, "/articles", true, in, &out)
	return out, err
}

func (c *Client) UpdateArticle(ctx context.Context, id int, in ArticleInput) (ArticleResponse, error) {
	var out ArticleResponse
	err := c.do(ctx, "update article", http.MethodPut, articlePath(id), true, in, &out)
	return out, err
}

func (c *Client) DeleteArticle(ctx context.Context, id int) (MessageResponse, error) {
	var out MessageResponse
	err := c.do(ctx, "delete article", http.MethodDelete, articlePath(id), true, nil, &out)
	return out, err
}

func articlePath(id int) string {
	return "/articles/" + strconv.Itoa(id)
}

type validator interface {
	validate() error
}

func (c *Client) do(ctx context.Context, op, method, path string, auth bool, body any, out validator) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encoding body: %w", op, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)

	if auth {
		token, ok := c.tokens()
		if !ok || token == "" {
			return fmt.Errorf("%s: %w", op, ErrNoToken)
		}
		req.Header.Set("Authorization", c.authorization(token))
	}

	log := c.log.With(slog.String("request_id", reqID), slog.String("op", op))
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("request failed", slog.String("error", err.Error()))
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("%s: reading body: %w", op, err)
	}

	log.Debug("request done",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("took", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newError(op, resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrBadResponse, err)
	}
	if err := out.validate(); err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrBadResponse, err)
	}
	return nil
}

func (c *Client) authorization(token string) string {
	if c.scheme == "" {
		return token
	}
	return c.scheme + " " + token
}
