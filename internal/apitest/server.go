// Package apitest runs an in-process Articles API for tests. It follows the
// real server's contract: a login that hands out tokens, and token-guarded
// article routes under /api.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/matheuskafuri/articles/internal/api"
)

// ClosuresTitle is the title of the first seeded article.
const ClosuresTitle = "Closures"

// SeedArticles is the collection a fresh server starts with.
func SeedArticles() []api.Article {
	return []api.Article{
		{ID: 1, Title: ClosuresTitle, Text: "Things inside functions can see variables declared outside them", Topic: "JavaScript"},
		{ID: 2, Title: "Hooks", Text: "State and effects without classes", Topic: "React"},
		{ID: 3, Title: "Middleware", Text: "Functions that sit between the request and the response", Topic: "Node"},
	}
}

type failure struct {
	status  int
	message string
}

type Server struct {
	*httptest.Server

	mu       sync.Mutex
	articles []api.Article
	nextID   int
	tokens   map[string]string // token -> username
	failNext *failure
	requests int
}

// New starts a server seeded with SeedArticles. Callers must Close it.
func New() *Server {
	s := &Server{
		articles: SeedArticles(),
		nextID:   len(SeedArticles()) + 1,
		tokens:   make(map[string]string),
	}
	s.Server = httptest.NewServer(s.router())
	return s
}

// BaseURL is the API root clients should be configured with.
func (s *Server) BaseURL() string {
	return s.URL + "/api"
}

func (s *Server) router() http.Handler {
	r := mux.NewRouter()
	r.Use(s.countRequests)

	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)

	articles := apiRouter.PathPrefix("/articles").Subrouter()
	articles.Use(s.requireToken)
	articles.HandleFunc("", s.handleList).Methods(http.MethodGet)
	articles.HandleFunc("", s.handleCreate).Methods(http.MethodPost)
	articles.HandleFunc("/{id:[0-9]+}", s.handleUpdate).Methods(http.MethodPut)
	articles.HandleFunc("/{id:[0-9]+}", s.handleDelete).Methods(http.MethodDelete)
	return r
}

// ExpireTokens invalidates every issued token, so the next authenticated
// call gets a 401.
func (s *Server) ExpireTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = make(map[string]string)
}

// FailNext makes the next request answer status with message ("" means an
// empty body).
func (s *Server) FailNext(status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = &failure{status: status, message: message}
}

// Articles returns a copy of the server-side collection.
func (s *Server) Articles() []api.Article {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.articles)
}

// Requests counts requests received so far.
func (s *Server) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests++
		f := s.failNext
		s.failNext = nil
		s.mu.Unlock()

		if f != nil {
			if f.message == "" {
				w.WriteHeader(f.status)
				return
			}
			writeJSON(w, f.status, api.MessageResponse{Message: f.message})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
		s.mu.Lock()
		user, ok := s.tokens[token]
		s.mu.Unlock()
		if token == "" || !ok {
			writeJSON(w, http.StatusUnauthorized, api.MessageResponse{Message: "Ouch: jwt expired"})
			return
		}
		r.Header.Set("X-User", user)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds api.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeJSON(w, http.StatusBadRequest, api.MessageResponse{Message: "Invalid request body"})
		return
	}
	username := strings.TrimSpace(creds.Username)
	if len(username) < 3 || len(strings.TrimSpace(creds.Password)) < 8 {
		writeJSON(w, http.StatusUnauthorized, api.MessageResponse{Message: "Invalid credentials"})
		return
	}

	token := uuid.NewString()
	s.mu.Lock()
	s.tokens[token] = username
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, api.LoginResponse{
		Message: fmt.Sprintf("Welcome back, %s!", username),
		Token:   token,
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.ListResponse{
		Message:  fmt.Sprintf("Here are your articles, %s!", r.Header.Get("X-User")),
		Articles: s.Articles(),
	})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeInput(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	a := api.Article{ID: s.nextID, Title: in.Title, Text: in.Text, Topic: in.Topic}
	s.nextID++
	s.articles = append(s.articles, a)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, api.ArticleResponse{
		Message: fmt.Sprintf("Well done, %s. Great article!", r.Header.Get("X-User")),
		Article: &a,
	})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	in, ok := decodeInput(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		writeJSON(w, http.StatusNotFound, api.MessageResponse{Message: fmt.Sprintf("Article %d not found", id)})
		return
	}
	a := api.Article{ID: id, Title: in.Title, Text: in.Text, Topic: in.Topic}
	s.articles[idx] = a
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, api.ArticleResponse{
		Message: fmt.Sprintf("Nice update, %s!", r.Header.Get("X-User")),
		Article: &a,
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		writeJSON(w, http.StatusNotFound, api.MessageResponse{Message: fmt.Sprintf("Article %d not found", id)})
		return
	}
	s.articles = slices.Delete(s.articles, idx, idx+1)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, api.MessageResponse{
		Message: fmt.Sprintf("Article %d was deleted, %s!", id, r.Header.Get("X-User")),
	})
}

// indexOf must be called with s.mu held.
func (s *Server) indexOf(id int) int {
	return slices.IndexFunc(s.articles, func(a api.Article) bool { return a.ID == id })
}

func decodeInput(w http.ResponseWriter, r *http.Request) (api.ArticleInput, bool) {
	var in api.ArticleInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, api.MessageResponse{Message: "Invalid request body"})
		return in, false
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Text = strings.TrimSpace(in.Text)
	if in.Title == "" || in.Text == "" || !slices.Contains(api.Topics, in.Topic) {
		writeJSON(w, http.StatusUnprocessableEntity, api.MessageResponse{
			Message: "Ouch: title, text and topic must be valid",
		})
		return in, false
	}
	return in, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
