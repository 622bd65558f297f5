package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/articles/internal/articles"
	"github.com/matheuskafuri/articles/internal/session"
)

type focusPane int

const (
	focusForm focusPane = iota
	focusList
)

type App struct {
	sess    *session.Controller
	mgr     *articles.Manager
	timeout time.Duration
	keys    keyMap

	width  int
	height int

	// Sub-components
	login   loginForm
	form    articleForm
	spinner spinner.Model

	// State
	cursor  int
	focus   focusPane
	pending int // dispatched operations not yet reported back
}

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	Session  *session.Controller
	Articles *articles.Manager
	Timeout  time.Duration
}

func NewApp(opts RunOpts) *App {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &App{
		sess:    opts.Session,
		mgr:     opts.Articles,
		timeout: timeout,
		keys:    defaultKeyMap(),
		login:   newLoginForm(),
		form:    newArticleForm(),
		spinner: sp,
	}
}

func (a *App) Init() tea.Cmd {
	// A token kept from an earlier run opens straight onto the articles.
	if a.sess.LoggedIn() {
		return a.openArticles()
	}
	return textinput.Blink
}

// dispatch runs op off the UI loop and reports back with opDoneMsg.
func (a *App) dispatch(kind opKind, id int, op func(context.Context) error) tea.Cmd {
	a.pending++
	timeout := a.timeout
	run := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return opDoneMsg{kind: kind, id: id, err: op(ctx)}
	}
	return tea.Batch(run, a.spinner.Tick)
}

func (a *App) busy() bool {
	return a.pending > 0 || a.sess.Snapshot().Busy
}

// onLoginScreen also covers a token that vanished while on the articles view.
func (a *App) onLoginScreen() bool {
	snap := a.sess.Snapshot()
	return snap.View == session.ViewLogin || !snap.LoggedIn
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case opDoneMsg:
		return a, a.handleDone(msg)

	case spinner.TickMsg:
		if a.busy() {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	// Cursor blinks and the like belong to whichever input has focus
	return a, a.updateInput(msg)
}

func (a *App) updateInput(msg tea.Msg) tea.Cmd {
	if a.onLoginScreen() {
		return a.login.update(msg)
	}
	if a.focus == focusForm {
		return a.form.update(msg)
	}
	return nil
}

func (a *App) handleDone(msg opDoneMsg) tea.Cmd {
	if a.pending > 0 {
		a.pending--
	}
	a.clampCursor()

	if a.onLoginScreen() {
		// Logged out underneath us (expired token) or a failed login
		a.form.reset()
		a.form.blur()
		a.cursor = 0
		if msg.kind == opLogin {
			return nil
		}
		return a.login.focus(0)
	}

	if msg.err != nil {
		return nil
	}

	switch msg.kind {
	case opLogin:
		a.login.reset()
		a.login.username.Blur()
		a.form.reset()
		a.focus = focusForm
		return a.form.focus(fieldTitle)
	case opCreate, opUpdate:
		a.form.reset()
	case opDelete:
		if a.form.editing == msg.id {
			a.form.reset()
		}
	}
	return nil
}

func (a *App) clampCursor() {
	n := len(a.mgr.Articles())
	if a.cursor >= n {
		a.cursor = max(0, n-1)
	}
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys
	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, a.keys.Logout):
		a.sess.Logout()
		a.form.reset()
		a.form.blur()
		a.cursor = 0
		return a, a.login.focus(0)
	case key.Matches(msg, a.keys.Login):
		a.sess.ShowLogin()
		a.form.blur()
		return a, a.login.focus(0)
	case key.Matches(msg, a.keys.Articles):
		return a, a.openArticles()
	}

	if a.onLoginScreen() {
		return a.handleLoginKey(msg)
	}
	if a.focus == focusForm {
		return a.handleFormKey(msg)
	}
	return a.handleListKey(msg)
}

// openArticles enters the articles view, or bounces back to login without
// any request when there is no token.
func (a *App) openArticles() tea.Cmd {
	if !a.sess.RequireSession() {
		return a.login.focus(0)
	}
	a.login.username.Blur()
	a.login.password.Blur()
	a.focus = focusForm
	return tea.Batch(a.form.focus(fieldTitle), a.dispatch(opList, 0, a.mgr.List))
}

func (a *App) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Next), key.Matches(msg, a.keys.Prev):
		return a, a.login.toggle()
	case key.Matches(msg, a.keys.Submit):
		if !a.login.canSubmit() {
			return a, nil
		}
		creds := a.login.credentials()
		sess := a.sess
		return a, a.dispatch(opLogin, 0, func(ctx context.Context) error {
			return sess.Login(ctx, creds)
		})
	}
	return a, a.login.update(msg)
}

func (a *App) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Next):
		if a.form.field < fieldCount-1 {
			return a, a.form.focus(a.form.field + 1)
		}
		a.form.blur()
		a.focus = focusList
		return a, nil
	case key.Matches(msg, a.keys.Prev):
		if a.form.field > fieldTitle {
			return a, a.form.focus(a.form.field - 1)
		}
		a.form.blur()
		a.focus = focusList
		return a, nil
	case key.Matches(msg, a.keys.Cancel):
		a.mgr.ClearSelection()
		a.form.reset()
		return a, a.form.focus(fieldTitle)
	case key.Matches(msg, a.keys.Submit):
		return a, a.submitForm()
	}

	if a.form.field == fieldTopic {
		switch {
		case key.Matches(msg, a.keys.Left):
			a.form.cycleTopic(-1)
		case key.Matches(msg, a.keys.Right):
			a.form.cycleTopic(1)
		}
		return a, nil
	}
	return a, a.form.update(msg)
}

func (a *App) submitForm() tea.Cmd {
	if !a.form.canSubmit() {
		return nil
	}
	in := a.form.input()
	mgr := a.mgr
	if id := a.form.editing; id != 0 {
		return a.dispatch(opUpdate, id, func(ctx context.Context) error {
			return mgr.Update(ctx, id, in)
		})
	}
	return a.dispatch(opCreate, 0, func(ctx context.Context) error {
		return mgr.Create(ctx, in)
	})
}

func (a *App) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := a.mgr.Articles()

	switch {
	case key.Matches(msg, a.keys.Next), key.Matches(msg, a.keys.Prev):
		a.focus = focusForm
		return a, a.form.focus(fieldTitle)
	case key.Matches(msg, a.keys.Down):
		if a.cursor < len(items)-1 {
			a.cursor++
		}
		return a, nil
	case key.Matches(msg, a.keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil
	case key.Matches(msg, a.keys.Edit):
		if a.cursor >= len(items) {
			return a, nil
		}
		item := items[a.cursor]
		if !a.mgr.Select(item.ID) {
			return a, nil
		}
		a.form.load(item)
		a.focus = focusForm
		return a, a.form.focus(fieldTitle)
	case key.Matches(msg, a.keys.Delete):
		if a.cursor >= len(items) {
			return a, nil
		}
		id := items[a.cursor].ID
		mgr := a.mgr
		return a, a.dispatch(opDelete, id, func(ctx context.Context) error {
			return mgr.Delete(ctx, id)
		})
	case key.Matches(msg, a.keys.Reload):
		return a, a.dispatch(opList, 0, a.mgr.List)
	case key.Matches(msg, a.keys.Cancel):
		a.mgr.ClearSelection()
		a.form.reset()
		return a, nil
	}
	return a, nil
}

// useStaticCursor stops the input cursors from blinking.
func (a *App) useStaticCursor() {
	for _, in := range []*textinput.Model{&a.login.username, &a.login.password, &a.form.title, &a.form.text} {
		in.Cursor.SetMode(cursor.CursorStatic)
	}
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorAccent).Render("  articles")
	}

	snap := a.sess.Snapshot()
	login := a.onLoginScreen()

	header := a.renderHeader(login)
	message := messageStyle.Render(snap.Message)

	var content, hintText string
	if login {
		content = loginView(&a.login, a.width)
		hintText = hints(a.keys.Next, a.keys.Submit, a.keys.Articles, a.keys.Quit)
	} else {
		used := lipgloss.Height(header) + lipgloss.Height(message) + 1
		content = a.renderArticles(a.height - used)
		if a.focus == focusForm {
			hintText = hints(a.keys.Next, a.keys.Submit, a.keys.Cancel, a.keys.Logout, a.keys.Quit)
		} else {
			hintText = hints(a.keys.Down, a.keys.Edit, a.keys.Delete, a.keys.Reload, a.keys.Logout, a.keys.Quit)
		}
	}

	left := ""
	if a.busy() {
		content = dimStyle.Render(content)
		left = a.spinner.View() + " loading"
	}
	status := renderStatusBar(left, hintText, a.width)

	body := lipgloss.JoinVertical(lipgloss.Left, header, message, content)
	return withBottomBar(body, status, a.height)
}

func (a *App) renderHeader(login bool) string {
	loginTab := headerNavStyle.Render("Login")
	articlesTab := headerNavStyle.Render("Articles")
	if login {
		loginTab = headerNavActiveStyle.Render("Login")
	} else {
		articlesTab = headerNavActiveStyle.Render("Articles")
	}
	nav := loginTab + headerNavStyle.Render(" · ") + articlesTab + " "

	left := headerStyle.Render("articles")
	gap := a.width - lipgloss.Width(left) - lipgloss.Width(nav)
	if gap < 0 {
		gap = 0
	}
	return left + fmt.Sprintf("%*s", gap, "") + nav
}

func (a *App) renderArticles(height int) string {
	form := a.form.view(a.width, a.focus == focusForm)

	listHeight := height - lipgloss.Height(form) - 2 // list borders
	if listHeight < 4 {
		listHeight = 4
	}

	items := a.mgr.Articles()
	editing := 0
	if sel, ok := a.mgr.Selected(); ok {
		editing = sel.ID
	}
	innerW := a.width - 6 // border + padding
	list := renderList(items, a.cursor, editing, listHeight, innerW)

	style := paneStyle
	if a.focus == focusList {
		style = paneActiveStyle
	}
	listPane := style.Width(max(a.width-2, 20)).Height(listHeight).Render(list)

	return lipgloss.JoinVertical(lipgloss.Left, form, listPane)
}

func withBottomBar(content, bar string, height int) string {
	lines := strings.Split(content, "\n")
	for len(lines) < height-1 {
		lines = append(lines, "")
	}
	if height > 1 && len(lines) >= height {
		lines = lines[:height-1]
	}
	lines = append(lines, bar)
	return strings.Join(lines, "\n")
}

// Run starts the TUI application.
func Run(opts RunOpts) error {
	app := NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
