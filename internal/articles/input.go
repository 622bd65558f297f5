package articles

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/matheuskafuri/articles/internal/api"
)

// ValidateInput gates the article form: title and text must be non-blank
// and the topic one the server knows.
func ValidateInput(in api.ArticleInput) error {
	topics := make([]interface{}, len(api.Topics))
	for i, t := range api.Topics {
		topics[i] = t
	}
	return validation.Errors{
		"title": validation.Validate(strings.TrimSpace(in.Title),
			validation.Required.Error("title is required"),
		),
		"text": validation.Validate(strings.TrimSpace(in.Text),
			validation.Required.Error("text is required"),
		),
		"topic": validation.Validate(in.Topic,
			validation.Required.Error("topic is required"),
			validation.In(topics...).Error("topic must be one of JavaScript, React, Node"),
		),
	}.Filter()
}

// Normalize trims the free-text fields before they are sent.
func Normalize(in api.ArticleInput) api.ArticleInput {
	return api.ArticleInput{
		Title: strings.TrimSpace(in.Title),
		Text:  strings.TrimSpace(in.Text),
		Topic: in.Topic,
	}
}
