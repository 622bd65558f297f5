package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/matheuskafuri/articles/internal/api"
	"github.com/matheuskafuri/articles/internal/articles"
)

type formField int

const (
	fieldTitle formField = iota
	fieldText
	fieldTopic
	fieldCount
)

// articleForm creates an article, or edits one when editing is non-zero.
type articleForm struct {
	title   textinput.Model
	text    textinput.Model
	topic   int // index into api.Topics, -1 while unset
	field   formField
	editing int
}

func newArticleForm() articleForm {
	title := textinput.New()
	title.Placeholder = "Enter title"
	title.Prompt = ""
	title.CharLimit = 50

	text := textinput.New()
	text.Placeholder = "Enter text"
	text.Prompt = ""
	text.CharLimit = 200

	return articleForm{title: title, text: text, topic: -1}
}

func (f *articleForm) input() api.ArticleInput {
	in := api.ArticleInput{Title: f.title.Value(), Text: f.text.Value()}
	if f.topic >= 0 && f.topic < len(api.Topics) {
		in.Topic = api.Topics[f.topic]
	}
	return articles.Normalize(in)
}

func (f *articleForm) canSubmit() bool {
	return articles.ValidateInput(f.input()) == nil
}

// load fills the form from a for editing.
func (f *articleForm) load(a api.Article) {
	f.title.SetValue(a.Title)
	f.text.SetValue(a.Text)
	f.topic = slices.Index(api.Topics, a.Topic)
	f.editing = a.ID
}

func (f *articleForm) reset() {
	f.title.SetValue("")
	f.text.SetValue("")
	f.topic = -1
	f.editing = 0
}

func (f *articleForm) focus(field formField) tea.Cmd {
	f.field = field
	f.title.Blur()
	f.text.Blur()
	switch field {
	case fieldTitle:
		return f.title.Focus()
	case fieldText:
		return f.text.Focus()
	}
	return nil
}

func (f *articleForm) blur() {
	f.title.Blur()
	f.text.Blur()
}

func (f *articleForm) cycleTopic(delta int) {
	n := len(api.Topics)
	if f.topic < 0 {
		if delta > 0 {
			f.topic = 0
		} else {
			f.topic = n - 1
		}
		return
	}
	f.topic = ((f.topic+delta)%n + n) % n
}

func (f *articleForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch f.field {
	case fieldTitle:
		f.title, cmd = f.title.Update(msg)
	case fieldText:
		f.text, cmd = f.text.Update(msg)
	}
	return cmd
}

func (f *articleForm) view(width int, active bool) string {
	row := func(label string, field formField, value string) string {
		style := labelStyle
		if active && f.field == field {
			style = labelActiveStyle
		}
		return style.Render(label) + value
	}

	heading := "Create Article"
	if f.editing != 0 {
		heading = fmt.Sprintf("Edit Article #%d", f.editing)
	}

	topic := "-- Select topic --"
	if f.topic >= 0 {
		topic = api.Topics[f.topic]
	}
	topic = "< " + topic + " >"

	button := buttonDisabledStyle.Render("Submit")
	if f.canSubmit() {
		button = buttonStyle.Render("Submit")
	}
	if f.editing != 0 {
		button += "  " + itemEditingStyle.Render("esc cancel edit")
	}

	body := strings.Join([]string{
		paneTitleStyle.Render(heading),
		row("Title", fieldTitle, f.title.View()),
		row("Text", fieldText, f.text.View()),
		row("Topic", fieldTopic, topic),
		"",
		button,
	}, "\n")

	style := paneStyle
	if active {
		style = paneActiveStyle
	}
	return style.Width(max(width-2, 20)).Render(body)
}
