package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ShayOinif/Contacts/internal/contact"
	"github.com/ShayOinif/Contacts/internal/edit"
	"github.com/ShayOinif/Contacts/internal/view"
)

// fieldInput is the text input bound to one working field.
type fieldInput struct {
	id    int64
	kind  contact.Kind
	label string
	input textinput.Model
}

// editor mirrors an Editing session as text inputs, phones first.
type editor struct {
	open      bool
	contactID int64
	fields    []fieldInput
	focus     int
}

func newEditor(d contact.DetailedContact) editor {
	e := editor{open: true, contactID: d.Contact.ID}
	for _, kind := range []contact.Kind{contact.Phone, contact.Email} {
		for _, f := range d.Fields(kind) {
			ti := textinput.New()
			ti.Prompt = ""
			ti.CharLimit = 256
			ti.SetValue(f.Value)
			e.fields = append(e.fields, fieldInput{
				id:    f.ID,
				kind:  kind,
				label: fieldLabel(kind, f.Type),
				input: ti,
			})
		}
	}
	return e
}

func (e editor) active() bool {
	return e.open
}

// move shifts focus by delta, wrapping around.
func (e *editor) move(delta int) tea.Cmd {
	if len(e.fields) == 0 {
		return nil
	}
	e.fields[e.focus].input.Blur()
	e.focus = (e.focus + delta + len(e.fields)) % len(e.fields)
	return e.fields[e.focus].input.Focus()
}

func (e *editor) focusCmd() tea.Cmd {
	if len(e.fields) == 0 {
		return nil
	}
	return e.fields[e.focus].input.Focus()
}

func fieldLabel(kind contact.Kind, typ string) string {
	label := titleCase(kind.String())
	if typ = strings.TrimSpace(typ); typ != "" {
		label += " (" + typ + ")"
	}
	return label
}

// syncEditor opens or closes the editor to follow the session state. An
// editor already open for the same record keeps its inputs and cursor.
func (m *Model) syncEditor() tea.Cmd {
	st, editing := m.session.State().(edit.Editing)
	if !editing {
		m.editor = editor{}
		return nil
	}
	if m.editor.open && m.editor.contactID == st.Working.Contact.ID {
		return nil
	}
	m.editor = newEditor(st.Working)
	return m.editor.focusCmd()
}

// handleDetailKey processes keyboard input for the detail screen while
// viewing.
func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		offer(m.selections, "")
		m.screen = ScreenList
		return m, nil

	case key.Matches(msg, m.keys.Edit):
		if !m.session.Edit() {
			m.setFlash("nothing to edit")
			return m, nil
		}
		cmd := m.syncEditor()
		return m, cmd
	}

	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

// handleEditKey routes keys to the focused input and mirrors every change
// into the session.
func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.session.CancelEdit()
		cmd := m.syncEditor()
		m.updateDetailViewport()
		return m, cmd

	case key.Matches(msg, m.keys.Save):
		st, ok := m.session.State().(edit.Editing)
		if !ok || st.Saving {
			return m, nil
		}
		if !st.Valid() {
			m.setFlash("every field needs a value")
			return m, nil
		}
		m.setFlash("saving")
		return m, saveCmd(m.ctx, m.session)

	case key.Matches(msg, m.keys.NextField):
		return m, m.editor.move(1)

	case key.Matches(msg, m.keys.PrevField):
		return m, m.editor.move(-1)
	}

	if len(m.editor.fields) == 0 {
		return m, nil
	}
	f := &m.editor.fields[m.editor.focus]
	before := f.input.Value()
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	if after := f.input.Value(); after != before {
		m.session.UpdateField(f.id, after, f.kind)
	}
	return m, cmd
}

// updateDetailViewport refreshes the read-only body of a found record.
func (m *Model) updateDetailViewport() {
	if !m.ready || m.detail.Status != view.StatusFound {
		return
	}
	m.detailViewport.SetContent(m.detailBody())
}

// detailBody renders the record the session shows, which after a save holds
// the entered values before the store confirms them.
func (m Model) detailBody() string {
	styles := m.theme.Styles()
	d := m.detail.Detail
	var saveErr error
	if v, ok := m.session.State().(edit.Viewing); ok && v.Detail.Contact.ID == d.Contact.ID {
		d = v.Detail
		saveErr = v.SaveErr
	}

	var b strings.Builder
	b.WriteString(m.detailTitle(d.Contact, "found"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(d.Contact.LookupKey))
	b.WriteString("\n")
	if d.Contact.HasPhoto() {
		b.WriteString(styles.MutedText.Render(padRight("Photo", LayoutLabelWidth)))
		b.WriteString(styles.Text.Render(d.Contact.PhotoURI))
		b.WriteString("\n")
	}

	writeSection := func(title string, kind contact.Kind, fields []contact.DetailField) {
		b.WriteString("\n")
		b.WriteString(styles.AccentText.Bold(true).Render(title))
		b.WriteString("\n")
		if len(fields) == 0 {
			b.WriteString(styles.FaintText.Render("  none"))
			b.WriteString("\n")
			return
		}
		for _, f := range fields {
			b.WriteString(styles.MutedText.Render(padRight("  "+fieldLabel(kind, f.Type), LayoutLabelWidth+2)))
			b.WriteString(styles.Text.Render(f.Value))
			b.WriteString("\n")
		}
	}
	writeSection("Phones", contact.Phone, d.Phones)
	writeSection("Emails", contact.Email, d.Emails)

	if saveErr != nil {
		b.WriteString("\n")
		b.WriteString(styles.DangerText.Render("Last save failed"))
		b.WriteString("\n")
		for _, line := range strings.Split(saveErr.Error(), "\n") {
			b.WriteString(styles.WarningText.Render("  " + truncate(line, m.width-2)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) detailTitle(c contact.Contact, status string) string {
	styles := m.theme.Styles()
	return lipgloss.JoinHorizontal(lipgloss.Top,
		styles.Text.Bold(true).Render(c.DisplayName),
		" ",
		styles.StatusStyle(status).Render(strings.ToUpper(strings.ReplaceAll(status, "_", " "))),
	)
}

// renderDetail renders the detail screen for the current result.
func (m Model) renderDetail() string {
	styles := m.theme.Styles()
	if !m.detailLoaded {
		return styles.StatusStyle("loading").Render("LOADING") + " " +
			styles.MutedText.Render("Loading contact...")
	}

	switch m.detail.Status {
	case view.StatusNotFound:
		return styles.StatusStyle("not_found").Render("NOT FOUND") + "\n\n" +
			styles.Text.Render("This contact no longer exists.") + "\n" +
			styles.FaintText.Render("esc to go back")
	case view.StatusFailed:
		msg := "unknown error"
		if m.detail.Err != nil {
			msg = m.detail.Err.Error()
		}
		return styles.StatusStyle("failed").Render("FAILED") + " " +
			styles.DangerText.Render(classifyStoreError(m.detail.Err)) + "\n\n" +
			styles.Text.Render(truncate(msg, m.width)) + "\n" +
			styles.FaintText.Render("r to retry, esc to go back")
	case view.StatusIdle:
		return styles.MutedText.Render("No contact selected")
	}

	if m.editor.active() {
		return m.renderEditor()
	}
	return m.detailViewport.View()
}

// renderEditor renders one labelled input per working field.
func (m Model) renderEditor() string {
	styles := m.theme.Styles()
	st, ok := m.session.State().(edit.Editing)
	if !ok {
		return ""
	}

	status := "editing"
	if st.Saving {
		status = "saving"
	}

	var b strings.Builder
	b.WriteString(m.detailTitle(st.Working.Contact, status))
	if st.Dirty() {
		b.WriteString(" ")
		b.WriteString(styles.WarningText.Render("modified"))
	}
	b.WriteString("\n\n")

	if len(m.editor.fields) == 0 {
		b.WriteString(styles.MutedText.Render("This contact has no phone numbers or email addresses."))
		return b.String()
	}
	for i, f := range m.editor.fields {
		label := styles.MutedText.Render(padRight(f.label, LayoutLabelWidth))
		if i == m.editor.focus {
			label = styles.AccentText.Render(padRight(f.label, LayoutLabelWidth))
		}
		b.WriteString(label)
		b.WriteString(f.input.View())
		if st.IsInvalid(f.id) {
			b.WriteString(" ")
			b.WriteString(styles.Invalid.Render("required"))
		}
		b.WriteString("\n")
	}
	if n := len(edit.Diff(st.Original, st.Working)); n > 0 {
		b.WriteString("\n")
		b.WriteString(styles.FaintText.Render(fmt.Sprintf("%d field(s) changed", n)))
	}
	if st.SaveErr != nil {
		b.WriteString("\n")
		b.WriteString(styles.DangerText.Render("Last save failed"))
		for _, line := range strings.Split(st.SaveErr.Error(), "\n") {
			b.WriteString("\n")
			b.WriteString(styles.WarningText.Render("  " + truncate(line, m.width-2)))
		}
	}
	return b.String()
}
