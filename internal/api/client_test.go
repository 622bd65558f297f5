package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticToken(token string) TokenSource {
	return func() (string, bool) { return token, token != "" }
}

func newTestClient(t *testing.T, handler http.HandlerFunc, tokens TokenSource) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Options{BaseURL: srv.URL + "/api/", AuthScheme: "Bearer"}, tokens)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestLogin_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		var creds Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "Foo", creds.Username)
		assert.Equal(t, "12345678", creds.Password)

		writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome back, Foo!", "token": "tok"})
	}, nil)

	resp, err := c.Login(context.Background(), Credentials{Username: "Foo", Password: "12345678"})
	require.NoError(t, err)
	assert.Equal(t, "tok", resp.Token)
	assert.Equal(t, "Welcome back, Foo!", resp.Message)
}

func TestLogin_Unauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
	}, nil)

	_, err := c.Login(context.Background(), Credentials{Username: "Foo", Password: "wrongpass"})
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, "Invalid credentials", ServerMessage(err))

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "login", apiErr.Op)
}

func TestLogin_MissingTokenIsSchemaError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	}, nil)

	_, err := c.Login(context.Background(), Credentials{Username: "Foo", Password: "12345678"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadResponse)
	assert.False(t, IsUnauthorized(err))
	assert.Empty(t, ServerMessage(err))
}

func TestListArticles_SendsToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/articles", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "Here are your articles, Foo!",
			"articles": []Article{
				{ID: 1, Title: "Closures", Text: "...", Topic: "JavaScript"},
				{ID: 2, Title: "Hooks", Text: "...", Topic: "React"},
			},
		})
	}, staticToken("tok"))

	resp, err := c.ListArticles(context.Background())
	require.NoError(t, err)
	require.Len(t, resp.Articles, 2)
	assert.Equal(t, 1, resp.Articles[0].ID)
	assert.Equal(t, "React", resp.Articles[1].Topic)
}

func TestListArticles_RawTokenScheme(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tok", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{"message": "ok", "articles": []Article{}})
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL}, staticToken("tok"))
	resp, err := c.ListArticles(context.Background())
	require.NoError(t, err)
	assert.Empty(t, resp.Articles)
	assert.NotNil(t, resp.Articles)
}

func TestListArticles_NoTokenSkipsRequest(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	}, staticToken(""))

	_, err := c.ListArticles(context.Background())
	assert.ErrorIs(t, err, ErrNoToken)
	assert.False(t, called)
}

func TestListArticles_SchemaErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing articles", `{"message":"ok"}`},
		{"bare array", `[{"article_id":1}]`},
		{"zero id", `{"articles":[{"article_id":0,"title":"x"}]}`},
		{"duplicate id", `{"articles":[{"article_id":3},{"article_id":3}]}`},
		{"not json", `<html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				io.WriteString(w, tt.body)
			}, staticToken("tok"))

			_, err := c.ListArticles(context.Background())
			assert.ErrorIs(t, err, ErrBadResponse)
		})
	}
}

func TestCreateArticle(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var in ArticleInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		writeJSON(w, http.StatusCreated, map[string]any{
			"message": "Well done, Foo. Great article!",
			"article": Article{ID: 7, Title: in.Title, Text: in.Text, Topic: in.Topic},
		})
	}, staticToken("tok"))

	resp, err := c.CreateArticle(context.Background(), ArticleInput{Title: "T", Text: "X", Topic: "Node"})
	require.NoError(t, err)
	require.NotNil(t, resp.Article)
	assert.Equal(t, 7, resp.Article.ID)
	assert.Equal(t, "Node", resp.Article.Topic)
}

func TestCreateArticle_MissingArticle(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]any{"message": "ok"})
	}, staticToken("tok"))

	_, err := c.CreateArticle(context.Background(), ArticleInput{Title: "T", Text: "X", Topic: "Node"})
	assert.ErrorIs(t, err, ErrBadResponse)
}

func TestUpdateArticle_Path(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/articles/42", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "Nice update, Foo!",
			"article": Article{ID: 42, Title: "New", Text: "Body", Topic: "React"},
		})
	}, staticToken("tok"))

	resp, err := c.UpdateArticle(context.Background(), 42, ArticleInput{Title: "New", Text: "Body", Topic: "React"})
	require.NoError(t, err)
	assert.Equal(t, "New", resp.Article.Title)
}

func TestDeleteArticle(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/articles/3", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Article 3 was deleted, Foo!"})
	}, staticToken("tok"))

	resp, err := c.DeleteArticle(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Article 3 was deleted, Foo!", resp.Message)
}

func TestServerErrorWithoutMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, "boom")
	}, staticToken("tok"))

	_, err := c.DeleteArticle(context.Background(), 3)
	require.Error(t, err)
	assert.Empty(t, ServerMessage(err))
	assert.False(t, IsUnauthorized(err))
	assert.Contains(t, err.Error(), "HTTP 500")
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := New(Options{BaseURL: url, Timeout: time.Second}, staticToken("tok"))
	_, err := c.ListArticles(context.Background())
	require.Error(t, err)

	var apiErr *Error
	assert.False(t, errors.As(err, &apiErr))
	assert.Empty(t, ServerMessage(err))
}

func TestArticleInput(t *testing.T) {
	a := Article{ID: 1, Title: "T", Text: "X", Topic: "Node"}
	assert.Equal(t, ArticleInput{Title: "T", Text: "X", Topic: "Node"}, a.Input())
}
