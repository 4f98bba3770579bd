package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ShayOinif/Contacts/internal/contact"
	"github.com/ShayOinif/Contacts/internal/edit"
	"github.com/ShayOinif/Contacts/internal/repo"
	"github.com/ShayOinif/Contacts/internal/state"
	"github.com/ShayOinif/Contacts/internal/view"
)

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type contactsMsg contact.Result[[]contact.Contact]

type detailMsg view.DetailResult

type sessionMsg struct{ state edit.State }

type savedMsg struct{ err error }

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(r *repo.Repository) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(r.Snapshot())
	}
}

// waitForContacts delivers the next list emission. A closed stream yields no
// message, which ends the wait loop.
func waitForContacts(ch <-chan contact.Result[[]contact.Contact]) tea.Cmd {
	return func() tea.Msg {
		res, ok := <-ch
		if !ok {
			return nil
		}
		return contactsMsg(res)
	}
}

func waitForDetail(ch <-chan view.DetailResult) tea.Cmd {
	return func() tea.Msg {
		res, ok := <-ch
		if !ok {
			return nil
		}
		return detailMsg(res)
	}
}

func waitForSession(ch <-chan edit.State) tea.Cmd {
	return func() tea.Msg {
		st, ok := <-ch
		if !ok {
			return nil
		}
		return sessionMsg{st}
	}
}

func saveCmd(ctx context.Context, s *edit.Session) tea.Cmd {
	return func() tea.Msg {
		return savedMsg{err: s.Save(ctx)}
	}
}

// offer replaces any value still waiting in ch with v. Update is the only
// sender, so the send never blocks.
func offer(ch chan string, v string) {
	select {
	case <-ch:
	default:
	}
	ch <- v
}
