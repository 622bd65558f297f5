// Package session owns the login lifecycle: the persisted token, the status
// message, the busy flag and which view the client should show.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/matheuskafuri/articles/internal/api"
	"github.com/matheuskafuri/articles/internal/logging"
	"github.com/matheuskafuri/articles/internal/storage"
)

const (
	FarewellMessage = "Goodbye!"
	ExpiredMessage  = "Your session has expired, please log in again"
	loginFallback   = "Login failed"
	saveFallback    = "Could not save session"
)

// ErrNoSession is returned when an operation needs a token and none is stored.
var ErrNoSession = errors.New("no active session")

type View int

const (
	ViewLogin View = iota
	ViewArticles
)

func (v View) String() string {
	switch v {
	case ViewArticles:
		return "articles"
	default:
		return "login"
	}
}

// TokenStore is the durable key/value store holding the token.
type TokenStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}

type Authenticator interface {
	Login(ctx context.Context, creds api.Credentials) (api.LoginResponse, error)
}

// Snapshot is a read-only copy of the session state for renderers.
type Snapshot struct {
	Message  string
	Busy     bool
	View     View
	LoggedIn bool
}

type Controller struct {
	store TokenStore
	auth  Authenticator
	log   *slog.Logger

	mu         sync.RWMutex
	message    string
	busy       bool
	view       View
	afterLogin func(context.Context)
	onLogout   []func()
}

func New(store TokenStore, auth Authenticator, logger *slog.Logger) *Controller {
	return &Controller{
		store: store,
		auth:  auth,
		log:   logging.Component(logger, "session"),
		view:  ViewLogin,
	}
}

// OnLogin registers the hook run after a successful login, typically the
// article list reload.
func (c *Controller) OnLogin(fn func(context.Context)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.afterLogin = fn
}

// OnLogout registers a listener run whenever the session ends, by logout or
// by expiry.
func (c *Controller) OnLogout(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onLogout = append(c.onLogout, fn)
}

// Token reads the persisted token. A store read error counts as no token.
func (c *Controller) Token() (string, bool) {
	token, ok, err := c.store.Get(storage.TokenKey)
	if err != nil {
		c.log.Error("reading token", slog.String("error", err.Error()))
		return "", false
	}
	return token, ok && token != ""
}

func (c *Controller) LoggedIn() bool {
	_, ok := c.Token()
	return ok
}

func (c *Controller) Snapshot() Snapshot {
	loggedIn := c.LoggedIn()
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{
		Message:  c.message,
		Busy:     c.busy,
		View:     c.view,
		LoggedIn: loggedIn,
	}
}

// Begin opens an operation: the message is flushed and busy turns on.
func (c *Controller) Begin() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.message = ""
	c.busy = true
}

// Settle closes an operation with its outcome message.
func (c *Controller) Settle(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.message = message
	c.busy = false
}

// Login validates creds locally, then exchanges them for a token. On success
// the token is persisted, the view switches to articles and the login hook
// runs. On failure the token is left as it was.
func (c *Controller) Login(ctx context.Context, creds api.Credentials) error {
	if err := ValidateCredentials(creds); err != nil {
		return err
	}

	c.Begin()
	resp, err := c.auth.Login(ctx, creds)
	if err != nil {
		msg := api.ServerMessage(err)
		if msg == "" {
			msg = loginFallback
		}
		c.log.Warn("login failed", slog.String("username", creds.Username), slog.String("error", err.Error()))
		c.Settle(msg)
		return fmt.Errorf("logging in: %w", err)
	}

	if err := c.store.Set(storage.TokenKey, resp.Token); err != nil {
		c.log.Error("saving token", slog.String("error", err.Error()))
		c.Settle(saveFallback)
		return fmt.Errorf("saving token: %w", err)
	}

	c.mu.Lock()
	c.message = resp.Message
	c.busy = false
	c.view = ViewArticles
	hook := c.afterLogin
	c.mu.Unlock()

	c.log.Info("logged in", slog.String("username", creds.Username))
	if hook != nil {
		hook(ctx)
	}
	return nil
}

// Logout drops the token and returns to the login view. It never touches the
// network and is safe to call without a session.
func (c *Controller) Logout() {
	c.end(FarewellMessage)
	c.log.Info("logged out")
}

// RequireSession guards the articles view. Without a token it redirects to
// login and reports false; callers must not issue data requests then.
func (c *Controller) RequireSession() bool {
	loggedIn := c.LoggedIn()
	c.mu.Lock()
	defer c.mu.Unlock()
	if !loggedIn {
		c.view = ViewLogin
		return false
	}
	c.view = ViewArticles
	return true
}

// ShowLogin switches to the login view without ending the session.
func (c *Controller) ShowLogin() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view = ViewLogin
}

// ExpireSession is the forced logout taken when the server rejects the token.
func (c *Controller) ExpireSession() {
	c.end(ExpiredMessage)
	c.log.Warn("session expired")
}

func (c *Controller) end(message string) {
	if err := c.store.Remove(storage.TokenKey); err != nil {
		c.log.Error("removing token", slog.String("error", err.Error()))
	}

	c.mu.Lock()
	c.message = message
	c.busy = false
	c.view = ViewLogin
	listeners := append([]func(){}, c.onLogout...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}
