package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/articles/internal/api"
	"github.com/matheuskafuri/articles/internal/session"
)

const credentialCharLimit = 20

type loginForm struct {
	username textinput.Model
	password textinput.Model
	focused  int // 0 username, 1 password
}

func newLoginForm() loginForm {
	u := textinput.New()
	u.Placeholder = "Enter username"
	u.Prompt = ""
	u.CharLimit = credentialCharLimit

	p := textinput.New()
	p.Placeholder = "Enter password"
	p.Prompt = ""
	p.CharLimit = credentialCharLimit
	p.EchoMode = textinput.EchoPassword
	p.EchoCharacter = '•'

	f := loginForm{username: u, password: p}
	f.focus(0)
	return f
}

func (f *loginForm) credentials() api.Credentials {
	return api.Credentials{Username: f.username.Value(), Password: f.password.Value()}
}

func (f *loginForm) canSubmit() bool {
	return session.CanSubmit(f.credentials())
}

func (f *loginForm) focus(i int) tea.Cmd {
	f.focused = i
	if i == 0 {
		f.password.Blur()
		return f.username.Focus()
	}
	f.username.Blur()
	return f.password.Focus()
}

func (f *loginForm) toggle() tea.Cmd {
	return f.focus(1 - f.focused)
}

func (f *loginForm) reset() {
	f.username.SetValue("")
	f.password.SetValue("")
	f.focus(0)
}

func (f *loginForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if f.focused == 0 {
		f.username, cmd = f.username.Update(msg)
	} else {
		f.password, cmd = f.password.Update(msg)
	}
	return cmd
}

func (f *loginForm) view(width int) string {
	row := func(label string, active bool, input textinput.Model) string {
		style := labelStyle
		if active {
			style = labelActiveStyle
		}
		return style.Render(label) + input.View()
	}

	button := buttonDisabledStyle.Render("Submit credentials")
	if f.canSubmit() {
		button = buttonStyle.Render("Submit credentials")
	}

	body := strings.Join([]string{
		paneTitleStyle.Render("Login"),
		row("Username", f.focused == 0, f.username),
		row("Password", f.focused == 1, f.password),
		"",
		button,
	}, "\n")

	w := min(max(width-4, 20), 50)
	return paneActiveStyle.Width(w).Render(body)
}

// loginView is the whole login screen under the header and message.
func loginView(f *loginForm, width int) string {
	return lipgloss.NewStyle().PaddingLeft(1).Render(f.view(width))
}
