package app

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheuskafuri/articles/internal/api"
	"github.com/matheuskafuri/articles/internal/apitest"
	"github.com/matheuskafuri/articles/internal/config"
	"github.com/matheuskafuri/articles/internal/session"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		API:      config.APIConfig{BaseURL: baseURL, Timeout: "2s", AuthScheme: "Bearer"},
		LogLevel: "debug",
	}
}

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestEndToEnd(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()

	var logs bytes.Buffer
	storePath := filepath.Join(t.TempDir(), "local.db")
	a, err := New(Options{Config: testConfig(srv.BaseURL()), StorePath: storePath, LogWriter: &logs})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, a.Session.Login(ctx, api.Credentials{Username: "Foo", Password: "12345678"}))
	assert.Equal(t, "Here are your articles, Foo!", a.Session.Snapshot().Message)
	assert.Len(t, a.Articles.Articles(), 3)
	require.NoError(t, a.Close())

	// The token survives a restart
	reopened, err := New(Options{Config: testConfig(srv.BaseURL()), StorePath: storePath})
	require.NoError(t, err)
	defer reopened.Close()

	assert.True(t, reopened.Session.RequireSession())
	require.NoError(t, reopened.Articles.List(ctx))
	assert.Len(t, reopened.Articles.Articles(), 3)

	reopened.Session.Logout()
	assert.False(t, reopened.Session.Snapshot().LoggedIn)
	assert.Equal(t, session.ViewLogin, reopened.Session.Snapshot().View)

	assert.Contains(t, logs.String(), "request_id=")
	assert.Contains(t, logs.String(), "component=session")
}
