package api

import "fmt"

// Topics a server accepts for an article.
var Topics = []string{"JavaScript", "React", "Node"}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Article struct {
	ID    int    `json:"article_id"`
	Title string `json:"title"`
	Text  string `json:"text"`
	Topic string `json:"topic"`
}

// ArticleInput is the body of create and update: an article without its id.
type ArticleInput struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	Topic string `json:"topic"`
}

func (a Article) Input() ArticleInput {
	return ArticleInput{Title: a.Title, Text: a.Text, Topic: a.Topic}
}

type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type ListResponse struct {
	Message  string    `json:"message"`
	Articles []Article `json:"articles"`
}

type ArticleResponse struct {
	Message string   `json:"message"`
	Article *Article `json:"article"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// Response bodies are checked for the fields each endpoint promises.

func (r *LoginResponse) validate() error {
	if r.Token == "" {
		return fmt.Errorf("missing token")
	}
	return nil
}

func (r *ListResponse) validate() error {
	if r.Articles == nil {
		return fmt.Errorf("missing articles")
	}
	seen := make(map[int]bool, len(r.Articles))
	for i, a := range r.Articles {
		if err := a.validate(); err != nil {
			return fmt.Errorf("articles[%d]: %w", i, err)
		}
		if seen[a.ID] {
			return fmt.Errorf("articles[%d]: duplicate article_id %d", i, a.ID)
		}
		seen[a.ID] = true
	}
	return nil
}

func (r *ArticleResponse) validate() error {
	if r.Article == nil {
		return fmt.Errorf("missing article")
	}
	return r.Article.validate()
}

func (r *MessageResponse) validate() error {
	return nil
}

func (a Article) validate() error {
	if a.ID <= 0 {
		return fmt.Errorf("invalid article_id %d", a.ID)
	}
	return nil
}
