package edit

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ShayOinif/Contacts/internal/contact"
	"github.com/ShayOinif/Contacts/internal/view"
)

// Options configure a Session.
type Options struct {
	Logger *zap.Logger
}

// Session is the edit state machine for one detail screen. All methods are
// safe for concurrent use; only Save performs I/O and it never holds the
// session lock while writing.
type Session struct {
	// ID correlates the log lines of one session.
	ID string

	writer contact.Writer
	log    *zap.Logger

	mu      sync.Mutex
	state   State
	saving  bool
	gen     uint64 // bumped by every change to the working copy
	updates chan State
	closed  bool
}

// New returns an Idle session that saves through w.
func New(w contact.Writer, opts Options) *Session {
	id := uuid.NewString()
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		ID:      id,
		writer:  w,
		log:     logger.With(zap.String("session", id)),
		state:   Idle{},
		updates: make(chan State, 1),
	}
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Updates delivers every state change. A reader that falls behind only sees
// the newest state. The channel is closed by Close.
func (s *Session) Updates() <-chan State {
	return s.updates
}

// Close stops delivering updates. Later calls leave the state untouched.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.updates)
}

// Apply folds one detail result into the session. A found record is shown
// unless the same record is being edited, in which case the working copy is
// kept. Any other outcome returns a viewing session to Idle.
func (s *Session) Apply(res view.DetailResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	if res.Status != view.StatusFound {
		if _, editing := s.state.(Editing); editing {
			return
		}
		s.setLocked(Idle{})
		return
	}

	switch cur := s.state.(type) {
	case Editing:
		if cur.Original.Contact.ID == res.Detail.Contact.ID {
			return
		}
		s.log.Debug("selection changed while editing, discarding working copy")
		s.gen++
		s.setLocked(Viewing{Detail: res.Detail})
	case Viewing:
		next := Viewing{Detail: res.Detail}
		if cur.Detail.Contact.ID == res.Detail.Contact.ID {
			next.SaveErr = cur.SaveErr
		}
		s.setLocked(next)
	default:
		s.setLocked(Viewing{Detail: res.Detail})
	}
}

// Edit starts editing the shown record. It reports false unless the session
// was Viewing.
func (s *Session) Edit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.state.(Viewing)
	if !ok || s.closed {
		return false
	}
	s.gen++
	s.setLocked(Editing{
		Original: cur.Detail.Clone(),
		Working:  cur.Detail.Clone(),
		Invalid:  map[int64]struct{}{},
		Saving:   s.saving,
	})
	return true
}

// UpdateField sets the value of the working field with the given id and kind.
// A field is invalid exactly when its value is empty. It reports false when
// the session is not editing or no such field exists.
func (s *Session) UpdateField(fieldID int64, value string, kind contact.Kind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.state.(Editing)
	if !ok || s.closed {
		return false
	}

	working := cur.Working.Clone()
	fields := working.Fields(kind)
	idx := -1
	for i := range fields {
		if fields[i].ID == fieldID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	fields[idx].Value = value

	invalid := cloneInvalid(cur.Invalid)
	if value == "" {
		invalid[fieldID] = struct{}{}
	} else {
		delete(invalid, fieldID)
	}

	s.gen++
	s.setLocked(Editing{
		Original: cur.Original,
		Working:  working,
		Invalid:  invalid,
		Saving:   cur.Saving,
		SaveErr:  cur.SaveErr,
	})
	return true
}

// CancelEdit discards the working copy and shows the original again. It
// reports false unless the session was Editing.
func (s *Session) CancelEdit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.state.(Editing)
	if !ok || s.closed {
		return false
	}
	s.gen++
	s.setLocked(Viewing{Detail: cur.Original})
	return true
}

// Save writes every changed field of the working copy, one write per field.
// It does nothing unless the session is Editing with no invalid field and no
// other save in flight.
//
// When the writes finish the session shows the values the user entered,
// without re-reading the store; the store's change notification reconciles
// any divergence. Failed writes do not stop the remaining ones. They are
// joined into the returned error and kept on Viewing.SaveErr.
//
// Edits made while the save is in flight keep the session Editing, with the
// successfully written values as the new original and the failures on
// Editing.SaveErr. A cancel made while the save is in flight wins. If ctx
// ends, the remaining writes are skipped and the session stays Editing.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	cur, ok := s.state.(Editing)
	if !ok || s.closed || s.saving || !cur.Valid() {
		s.mu.Unlock()
		return nil
	}
	changed := Diff(cur.Original, cur.Working)
	saved := cur.Working
	gen := s.gen
	s.saving = true
	cur.Saving = true
	s.setLocked(cur)
	s.mu.Unlock()

	s.log.Debug("saving contact",
		zap.Int64("contact_id", saved.Contact.ID),
		zap.Int("changed", len(changed)))

	var (
		errs     []error
		failed   = make(map[int64]struct{})
		canceled error
	)
	for _, f := range changed {
		if err := ctx.Err(); err != nil {
			canceled = err
			break
		}
		err := s.writer.WriteField(ctx, f.ID, f.Value)
		if err == nil {
			continue
		}
		if contact.IsCancellation(err) {
			canceled = err
			break
		}
		if !errors.Is(err, contact.ErrWriteRejected) {
			err = contact.WriteRejected(f.ID, err)
		}
		errs = append(errs, err)
		failed[f.ID] = struct{}{}
	}
	saveErr := errors.Join(errs...)
	if saveErr != nil {
		s.log.Warn("save contact",
			zap.Int64("contact_id", saved.Contact.ID),
			zap.Int("failed", len(errs)),
			zap.Error(saveErr))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saving = false
	if s.closed {
		return errors.Join(canceled, saveErr)
	}

	now, editing := s.state.(Editing)
	switch {
	case !editing:
		// Cancelled or deselected while saving.
		if v, viewing := s.state.(Viewing); viewing && v.Detail.Contact.ID == saved.Contact.ID {
			v.SaveErr = saveErr
			s.setLocked(v)
		}
	case canceled != nil:
		now.Saving = false
		s.setLocked(now)
	case s.gen != gen:
		now.Original = withoutFailed(saved, cur.Original, failed)
		now.Saving = false
		now.SaveErr = saveErr
		s.setLocked(now)
	default:
		s.setLocked(Viewing{Detail: saved, SaveErr: saveErr})
	}

	if canceled != nil {
		return canceled
	}
	return saveErr
}

// setLocked publishes next. Caller holds s.mu, which also makes it the only
// sender on updates.
func (s *Session) setLocked(next State) {
	s.state = next
	if s.closed {
		return
	}
	select {
	case <-s.updates:
	default:
	}
	s.updates <- next
}

// withoutFailed returns saved with the fields in failed reverted to their
// value in original. Fields are paired by id, by position when the id is 0.
func withoutFailed(saved, original contact.DetailedContact, failed map[int64]struct{}) contact.DetailedContact {
	if len(failed) == 0 {
		return saved
	}
	out := saved.Clone()
	for _, kind := range []contact.Kind{contact.Phone, contact.Email} {
		before := original.Fields(kind)
		fields := out.Fields(kind)
		for i := range fields {
			if _, ok := failed[fields[i].ID]; !ok {
				continue
			}
			for j, prev := range before {
				if (fields[i].ID != 0 && prev.ID == fields[i].ID) || (fields[i].ID == 0 && j == i) {
					fields[i].Value = prev.Value
					break
				}
			}
		}
	}
	return out
}
