package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	if len(names) != 3 {
		t.Fatalf("ThemeNames() returned %d names, want 3", len(names))
	}
	for _, name := range names {
		if got := GetTheme(name).Name; got != name {
			t.Fatalf("GetTheme(%q).Name = %q", name, got)
		}
	}
}

func TestNextTheme(t *testing.T) {
	if got := NextTheme("Nightfox"); got != "Kanagawa" {
		t.Fatalf("NextTheme(Nightfox) = %q, want Kanagawa", got)
	}
	if got := NextTheme("Slate"); got != "Nightfox" {
		t.Fatalf("NextTheme(Slate) = %q, want Nightfox (wrap around)", got)
	}
	if got := NextTheme("Unknown"); got != "Nightfox" {
		t.Fatalf("NextTheme(Unknown) = %q, want Nightfox", got)
	}
}

func TestGetTheme_UnknownFallsBack(t *testing.T) {
	if got := GetTheme("Dracula").Name; got != "Nightfox" {
		t.Fatalf("GetTheme(Dracula).Name = %q, want Nightfox", got)
	}
}

func TestThemes_CoverScreenStates(t *testing.T) {
	states := []string{"idle", "loading", "found", "not_found", "failed", "editing", "saving", "offline"}
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		for _, s := range states {
			if th.StatusColors[s] == "" {
				t.Fatalf("theme %s has no color for %q", name, s)
			}
		}
	}
}

func TestStyles_StatusStyleFallsBackToMuted(t *testing.T) {
	th := GetTheme("Slate")
	styles := th.Styles()

	got := styles.StatusStyle(" FOUND ").GetBackground()
	if got != lipgloss.Color(th.StatusColors["found"]) {
		t.Fatalf("StatusStyle(FOUND) background = %v, want %v", got, th.StatusColors["found"])
	}
	if got := styles.StatusStyle("bogus").GetBackground(); got != lipgloss.Color(th.Muted) {
		t.Fatalf("StatusStyle(bogus) background = %v, want muted %v", got, th.Muted)
	}
}

func TestStyles_WithBackgroundKeepsSelection(t *testing.T) {
	th := GetTheme("Nightfox")
	styles := th.Styles().WithBackground(th.Surface)

	if got := styles.MutedText.GetBackground(); got != lipgloss.Color(th.Surface) {
		t.Fatalf("MutedText background = %v, want %v", got, th.Surface)
	}
	if got := styles.Selected.GetBackground(); got != lipgloss.Color(th.Selection) {
		t.Fatalf("Selected background = %v, want %v", got, th.Selection)
	}
}
