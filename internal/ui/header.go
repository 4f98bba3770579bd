package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/ShayOinif/Contacts/internal/contact"
)

// renderHeader renders the status bar: cache health, row count and the
// time of the last successful query.
func (m Model) renderHeader() string {
	// Header uses Surface background
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < LayoutCompactWidth

	parts := []string{bg.Render("contacts", styles.Logo)}

	snap := m.snapshot
	switch {
	case snap.IsOffline():
		parts = append(parts,
			bg.Render("● "+classifyStoreError(snap.LastError), styles.DangerText),
			bg.Render("Retrying...", styles.WarningText.Bold(true)))
	case snap.LastError != nil:
		parts = append(parts, bg.Render("● "+classifyStoreError(snap.LastError), styles.WarningText))
	case snap.HasData:
		parts = append(parts, bg.Render("● LIVE", styles.SuccessText))
	default:
		parts = append(parts, bg.Render("● IDLE", styles.MutedText))
	}

	parts = append(parts,
		bg.Render("Contacts:", styles.MutedText)+bg.Space()+
			bg.Render(fmt.Sprintf("%d", len(m.list)), styles.Text))
	if !compact && len(snap.Contacts) != len(m.list) {
		parts = append(parts,
			bg.Render("of", styles.FaintText)+bg.Space()+
				bg.Render(fmt.Sprintf("%d", len(snap.Contacts)), styles.MutedText))
	}
	if !compact {
		parts = append(parts,
			bg.Render("Observers:", styles.MutedText)+bg.Space()+
				bg.Render(fmt.Sprintf("%d", snap.Subscribers), styles.Text))
	}
	if ts := formatTimestamp(snap.LastUpdated, time.Now()); ts != "" {
		parts = append(parts, bg.Render(ts, styles.FaintText))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

// formatTimestamp formats the last update time with a relative indicator.
func formatTimestamp(at, now time.Time) string {
	if at.IsZero() {
		return ""
	}
	since := now.Sub(at)
	stamp := at.Format("15:04:05")
	if since < time.Minute {
		return stamp + " (now)"
	}
	return stamp + " (" + humanizeDuration(since) + " ago)"
}

// classifyStoreError returns a short label for a store failure.
func classifyStoreError(err error) string {
	if err == nil {
		return ""
	}
	switch contact.CodeOf(err) {
	case contact.CodeSourceUnavailable:
		return "UNAVAILABLE"
	case contact.CodeSchemaMismatch:
		return "SCHEMA MISMATCH"
	case contact.CodeWriteRejected:
		return "REJECTED"
	default:
		return "ERROR"
	}
}

// renderCommandBar renders the key hints for the active screen.
func (m Model) renderCommandBar() string {
	// Command bar uses Surface background
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch {
	case m.screen == ScreenDetail && m.editor.active():
		commands = []cmd{
			{"tab", "Next"},
			{"ctrl+s", "Save"},
			{"esc", "Cancel"},
		}
	case m.screen == ScreenDetail:
		commands = []cmd{
			{"e", "Edit"},
			{"j/k", "Scroll"},
			{"r", "Refresh"},
			{"esc", "Back"},
			{"?", "More"},
		}
	case m.searching:
		commands = []cmd{
			{"enter", "Done"},
			{"esc", "Done"},
		}
	default:
		commands = []cmd{
			{"/", "Search"},
			{"enter", "Open"},
			{"j/k", "Navigate"},
			{"r", "Refresh"},
			{"q", "Quit"},
			{"?", "More"},
		}
	}

	colon := bg.Sep(":")
	segments := make([]string, 0, len(commands)+2)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	if m.flash != "" {
		segments = append(segments, bg.Render(truncate(m.flash, 60), styles.WarningText))
	}

	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, bg.Spaces(2)))
}
