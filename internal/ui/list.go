package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ShayOinif/Contacts/internal/contact"
	"github.com/ShayOinif/Contacts/internal/view"
)

// applyContacts folds a list emission into the model. A failure keeps the
// rows already shown.
func (m *Model) applyContacts(res contact.Result[[]contact.Contact]) {
	m.listLoaded = true
	if res.Err != nil {
		m.listErr = res.Err
		return
	}
	m.list = res.Value
	m.listErr = nil
	m.selectedRow = clamp(m.selectedRow, 0, len(m.list)-1)
}

// handleSearchKey feeds the search box. Every change is offered to the list
// view, which debounces it.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		return m, nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if after := m.search.Value(); after != before {
		offer(m.queries, after)
		m.selectedRow = 0
	}
	return m, cmd
}

// handleListKey processes keyboard input for the list screen.
func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		return m, m.search.Focus()

	case key.Matches(msg, m.keys.Escape):
		if m.search.Value() != "" {
			m.search.SetValue("")
			offer(m.queries, "")
			m.selectedRow = 0
		}
		return m, nil

	case key.Matches(msg, m.keys.Open):
		return m.openSelected()
	}

	count := len(m.list)
	if count == 0 {
		return m, nil
	}
	page := maxWidth(m.contentHeight()-1, 1)

	switch {
	case key.Matches(msg, m.keys.Down):
		m.selectedRow = clamp(m.selectedRow+1, 0, count-1)
	case key.Matches(msg, m.keys.Up):
		m.selectedRow = clamp(m.selectedRow-1, 0, count-1)
	case key.Matches(msg, m.keys.Top):
		m.selectedRow = 0
	case key.Matches(msg, m.keys.Bottom):
		m.selectedRow = count - 1
	case key.Matches(msg, m.keys.PageDown):
		m.selectedRow = clamp(m.selectedRow+page, 0, count-1)
	case key.Matches(msg, m.keys.PageUp):
		m.selectedRow = clamp(m.selectedRow-page, 0, count-1)
	}
	return m, nil
}

// openSelected switches to the detail screen for the selected row.
func (m Model) openSelected() (tea.Model, tea.Cmd) {
	if m.selectedRow < 0 || m.selectedRow >= len(m.list) {
		return m, nil
	}
	lookupKey := m.list[m.selectedRow].LookupKey
	// A pending clear may be replaced by the same key, in which case the
	// detail view emits nothing new and the shown result still holds.
	if m.detail.Key != lookupKey || m.detail.Status == view.StatusIdle {
		m.detail = view.DetailResult{}
		m.detailLoaded = false
	}
	offer(m.selections, lookupKey)
	m.screen = ScreenDetail
	m.detailViewport.GotoTop()
	m.updateDetailViewport()
	return m, nil
}

// renderList renders the search box and the visible window of rows.
func (m Model) renderList() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(m.search.View())
	b.WriteString("\n")

	rows := m.contentHeight() - 1
	if !m.listLoaded {
		b.WriteString(styles.MutedText.Render("Loading contacts..."))
		return b.String()
	}
	if m.listErr != nil {
		b.WriteString(styles.DangerText.Render(truncate("Store unavailable: "+m.listErr.Error(), m.width)))
		b.WriteString("\n")
		rows--
	}
	if len(m.list) == 0 {
		if q := strings.TrimSpace(m.search.Value()); q != "" {
			b.WriteString(styles.MutedText.Render(fmt.Sprintf("No contacts match %q", q)))
		} else if m.listErr == nil {
			b.WriteString(styles.MutedText.Render("No contacts"))
		}
		return b.String()
	}

	rows = maxWidth(rows, 1)
	start := 0
	if m.selectedRow >= rows {
		start = m.selectedRow - rows + 1
	}
	end := start + rows
	if end > len(m.list) {
		end = len(m.list)
	}

	nameWidth := maxWidth(m.width-4, 8)
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		c := m.list[i]
		marker := " "
		if c.HasPhoto() {
			marker = "●"
		}
		line := " " + marker + " " + padRight(truncate(c.DisplayName, nameWidth), nameWidth)
		if i == m.selectedRow {
			lines = append(lines, styles.Selected.Render(line))
		} else {
			lines = append(lines, styles.Text.Render(line))
		}
	}
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}
