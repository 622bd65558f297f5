// Package articles keeps the client-side article collection in step with the
// server. Every operation is one round trip framed by the session's
// Begin/Settle envelope, and the collection only changes on success.
package articles

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/matheuskafuri/articles/internal/api"
	"github.com/matheuskafuri/articles/internal/logging"
	"github.com/matheuskafuri/articles/internal/session"
)

const (
	listFallback   = "Could not fetch articles"
	createFallback = "Could not create article"
	updateFallback = "Could not update article"
	deleteFallback = "Could not delete article"
)

type API interface {
	ListArticles(ctx context.Context) (api.ListResponse, error)
	CreateArticle(ctx context.Context, in api.ArticleInput) (api.ArticleResponse, error)
	UpdateArticle(ctx context.Context, id int, in api.ArticleInput) (api.ArticleResponse, error)
	DeleteArticle(ctx context.Context, id int) (api.MessageResponse, error)
}

type Manager struct {
	api  API
	sess *session.Controller
	log  *slog.Logger

	mu       sync.RWMutex
	items    []api.Article
	selected int // 0 = nothing selected for editing
}

// New creates a manager bound to sess. It clears itself whenever the
// session ends.
func New(client API, sess *session.Controller, logger *slog.Logger) *Manager {
	m := &Manager{
		api:  client,
		sess: sess,
		log:  logging.Component(logger, "articles"),
	}
	sess.OnLogout(m.Reset)
	return m
}

// Articles returns a copy of the collection in display order.
func (m *Manager) Articles() []api.Article {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.items)
}

// Select marks id for editing. Unknown ids are ignored.
func (m *Manager) Select(id int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if indexOf(m.items, id) < 0 {
		return false
	}
	m.selected = id
	return true
}

func (m *Manager) ClearSelection() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selected = 0
}

// Selected returns the article being edited, if any.
func (m *Manager) Selected() (api.Article, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i := indexOf(m.items, m.selected); i >= 0 {
		return m.items[i], true
	}
	return api.Article{}, false
}

// Reset drops all cached data.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = nil
	m.selected = 0
}

// List replaces the collection with the server's, in server order.
func (m *Manager) List(ctx context.Context) error {
	if err := m.begin(); err != nil {
		return err
	}
	resp, err := m.api.ListArticles(ctx)
	if err != nil {
		return m.fail("list", listFallback, err)
	}

	m.mu.Lock()
	m.items = slices.Clone(resp.Articles)
	if indexOf(m.items, m.selected) < 0 {
		m.selected = 0
	}
	m.mu.Unlock()

	m.log.Debug("articles loaded", slog.Int("count", len(resp.Articles)))
	m.sess.Settle(resp.Message)
	return nil
}

// Create submits a new article and appends the stored record.
func (m *Manager) Create(ctx context.Context, in api.ArticleInput) error {
	if err := m.begin(); err != nil {
		return err
	}
	resp, err := m.api.CreateArticle(ctx, in)
	if err != nil {
		return m.fail("create", createFallback, err)
	}

	m.mu.Lock()
	if i := indexOf(m.items, resp.Article.ID); i >= 0 {
		m.items[i] = *resp.Article
	} else {
		m.items = append(m.items, *resp.Article)
	}
	m.mu.Unlock()

	m.log.Info("article created", slog.Int("article_id", resp.Article.ID))
	m.sess.Settle(resp.Message)
	return nil
}

// Update replaces the record with id in place. A record missing from the
// collection is not inserted. The edit selection is cleared on success.
func (m *Manager) Update(ctx context.Context, id int, in api.ArticleInput) error {
	if err := m.begin(); err != nil {
		return err
	}
	resp, err := m.api.UpdateArticle(ctx, id, in)
	if err != nil {
		return m.fail("update", updateFallback, err)
	}

	m.mu.Lock()
	if i := indexOf(m.items, id); i >= 0 {
		updated := *resp.Article
		updated.ID = id
		m.items[i] = updated
	}
	m.selected = 0
	m.mu.Unlock()

	m.log.Info("article updated", slog.Int("article_id", id))
	m.sess.Settle(resp.Message)
	return nil
}

// Delete removes the record with id and clears it from the edit selection.
func (m *Manager) Delete(ctx context.Context, id int) error {
	if err := m.begin(); err != nil {
		return err
	}
	resp, err := m.api.DeleteArticle(ctx, id)
	if err != nil {
		return m.fail("delete", deleteFallback, err)
	}

	m.mu.Lock()
	if i := indexOf(m.items, id); i >= 0 {
		m.items = slices.Delete(m.items, i, i+1)
	}
	if m.selected == id {
		m.selected = 0
	}
	m.mu.Unlock()

	m.log.Info("article deleted", slog.Int("article_id", id))
	m.sess.Settle(resp.Message)
	return nil
}

// begin checks for a token before opening the operation, sending the
// client back to login without a request when there is none.
func (m *Manager) begin() error {
	if !m.sess.RequireSession() {
		m.Reset()
		return session.ErrNoSession
	}
	m.sess.Begin()
	return nil
}

// fail settles a failed operation. A rejected token ends the session
// instead of surfacing the raw error.
func (m *Manager) fail(op, fallback string, err error) error {
	if api.IsUnauthorized(err) {
		m.log.Warn("token rejected", slog.String("op", op))
		m.sess.ExpireSession()
		return fmt.Errorf("%s: %w", op, session.ErrNoSession)
	}

	msg := api.ServerMessage(err)
	if msg == "" {
		msg = fallback
	}
	m.log.Warn("operation failed", slog.String("op", op), slog.String("error", err.Error()))
	m.sess.Settle(msg)
	return fmt.Errorf("%s: %w", op, err)
}

func indexOf(items []api.Article, id int) int {
	if id == 0 {
		return -1
	}
	return slices.IndexFunc(items, func(a api.Article) bool { return a.ID == id })
}
