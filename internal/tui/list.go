package tui

import (
	"strings"

	"github.com/matheuskafuri/articles/internal/api"
)

func renderListItem(a api.Article, selected, editing bool, width int) string {
	if width < 10 {
		width = 30
	}

	var title string
	if selected {
		title = itemSelectedStyle.Render("> " + truncateStr(a.Title, width-4))
	} else {
		title = itemTitleStyle.Render("  " + truncateStr(a.Title, width-4))
	}
	if editing {
		title += " " + itemEditingStyle.Render("(editing)")
	}

	text := "  " + itemTextStyle.Render(truncateStr(a.Text, width-4))
	meta := "  " + itemTopicStyle.Render("Topic: "+a.Topic)

	return title + "\n" + text + "\n" + meta
}

func truncateStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

func renderList(items []api.Article, cursor, editing int, height, width int) string {
	if len(items) == 0 {
		return lipglossCenter("No articles yet", width, height)
	}

	// Each item is 3 lines + 1 blank line = 4 lines
	itemHeight := 4
	visible := height / itemHeight
	if visible < 1 {
		visible = 1
	}

	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := start + visible
	if end > len(items) {
		end = len(items)
		start = end - visible
		if start < 0 {
			start = 0
		}
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		a := items[i]
		b.WriteString(renderListItem(a, i == cursor, editing != 0 && a.ID == editing, width))
		if i < end-1 {
			b.WriteString("\n\n")
		}
	}

	return b.String()
}

func lipglossCenter(s string, width, height int) string {
	pad := (width - len(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat("\n", height/3) + strings.Repeat(" ", pad) + s
}
