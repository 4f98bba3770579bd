package source

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ShayOinif/Contacts/internal/contact"
)

// Write records one WriteField call observed by Memory.
type Write struct {
	FieldID int64
	Value   string
}

// Memory is an in-process Source. It backs tests and the demo mode, counts
// every call, and can inject failures per operation.
type Memory struct {
	mu        sync.Mutex
	records   []contact.DetailedContact
	listeners map[int]func()
	nextToken int

	listCalls      int
	detailCalls    int
	subscribeCalls int
	writes         []Write

	listErr   error
	detailErr map[contact.Kind]error
	writeErr  map[int64]error

	// BeforeList, when set, runs at the start of every ListContacts call
	// outside the lock. Tests use it to hold a query in flight.
	BeforeList func(ctx context.Context)
	// BeforeDetails is the ListDetails counterpart of BeforeList.
	BeforeDetails func(ctx context.Context, kind contact.Kind)
	// BeforeWrite is the WriteField counterpart of BeforeList.
	BeforeWrite func(ctx context.Context, fieldID int64)
}

var _ contact.Source = (*Memory)(nil)

// NewMemory seeds a store with the given records.
func NewMemory(records ...contact.DetailedContact) *Memory {
	m := &Memory{
		listeners: make(map[int]func()),
		detailErr: make(map[contact.Kind]error),
		writeErr:  make(map[int64]error),
	}
	for _, r := range records {
		m.records = append(m.records, r.Clone())
	}
	return m
}

// ListContacts implements contact.Source.
func (m *Memory) ListContacts(ctx context.Context) contact.Result[[]contact.Contact] {
	m.mu.Lock()
	before := m.BeforeList
	m.mu.Unlock()
	if before != nil {
		before(ctx)
	}
	if err := ctx.Err(); err != nil {
		return contact.Failure[[]contact.Contact](err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listErr != nil {
		return contact.Failure[[]contact.Contact](m.listErr)
	}

	out := make([]contact.Contact, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r.Contact)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].DisplayName) < strings.ToLower(out[j].DisplayName)
	})
	return contact.Success(out)
}

// ListDetails implements contact.Source.
func (m *Memory) ListDetails(ctx context.Context, contactID int64, kind contact.Kind) contact.Result[[]contact.DetailField] {
	m.mu.Lock()
	before := m.BeforeDetails
	m.mu.Unlock()
	if before != nil {
		before(ctx, kind)
	}
	if err := ctx.Err(); err != nil {
		return contact.Failure[[]contact.DetailField](err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.detailCalls++
	if err := m.detailErr[kind]; err != nil {
		return contact.Failure[[]contact.DetailField](err)
	}

	for _, r := range m.records {
		if r.Contact.ID != contactID {
			continue
		}
		fields := append([]contact.DetailField{}, r.Fields(kind)...)
		sort.SliceStable(fields, func(i, j int) bool { return fields[i].Type < fields[j].Type })
		return contact.Success(fields)
	}
	return contact.Success([]contact.DetailField{})
}

// WriteField implements contact.Source. A successful write notifies
// subscribers the way the platform store would.
func (m *Memory) WriteField(ctx context.Context, fieldID int64, value string) error {
	m.mu.Lock()
	before := m.BeforeWrite
	m.mu.Unlock()
	if before != nil {
		before(ctx, fieldID)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	m.writes = append(m.writes, Write{FieldID: fieldID, Value: value})
	if err := m.writeErr[fieldID]; err != nil {
		m.mu.Unlock()
		return contact.WriteRejected(fieldID, err)
	}
	found := false
	for i := range m.records {
		for _, fields := range [][]contact.DetailField{m.records[i].Phones, m.records[i].Emails} {
			for j := range fields {
				if fields[j].ID == fieldID {
					fields[j].Value = value
					found = true
				}
			}
		}
	}
	m.mu.Unlock()

	if !found {
		return contact.WriteRejected(fieldID, fmt.Errorf("no such field"))
	}
	m.Notify()
	return nil
}

// SubscribeToChanges implements contact.Source.
func (m *Memory) SubscribeToChanges(onChange func()) (func(), error) {
	if onChange == nil {
		return nil, fmt.Errorf("subscribe: nil callback")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribeCalls++
	token := m.nextToken
	m.nextToken++
	m.listeners[token] = onChange

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.listeners, token)
			m.mu.Unlock()
		})
	}, nil
}

// Notify fires every registered change callback.
func (m *Memory) Notify() {
	m.mu.Lock()
	callbacks := make([]func(), 0, len(m.listeners))
	for _, fn := range m.listeners {
		callbacks = append(callbacks, fn)
	}
	m.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}

// Put inserts or replaces a record (matched by contact ID) and notifies.
func (m *Memory) Put(record contact.DetailedContact) {
	m.mu.Lock()
	replaced := false
	for i := range m.records {
		if m.records[i].Contact.ID == record.Contact.ID {
			m.records[i] = record.Clone()
			replaced = true
		}
	}
	if !replaced {
		m.records = append(m.records, record.Clone())
	}
	m.mu.Unlock()
	m.Notify()
}

// Remove deletes a record by contact ID and notifies.
func (m *Memory) Remove(contactID int64) {
	m.mu.Lock()
	kept := m.records[:0]
	for _, r := range m.records {
		if r.Contact.ID != contactID {
			kept = append(kept, r)
		}
	}
	m.records = kept
	m.mu.Unlock()
	m.Notify()
}

// FailList makes ListContacts fail with err; nil clears the failure.
func (m *Memory) FailList(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listErr = err
}

// FailDetails makes ListDetails of kind fail with err; nil clears it.
func (m *Memory) FailDetails(kind contact.Kind, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.detailErr, kind)
		return
	}
	m.detailErr[kind] = err
}

// FailWrite makes WriteField for fieldID fail with err; nil clears it.
func (m *Memory) FailWrite(fieldID int64, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.writeErr, fieldID)
		return
	}
	m.writeErr[fieldID] = err
}

// ListCalls returns how many ListContacts calls reached the store.
func (m *Memory) ListCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listCalls
}

// DetailCalls returns how many ListDetails calls reached the store.
func (m *Memory) DetailCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.detailCalls
}

// SubscribeCalls returns how many registrations were made over the lifetime.
func (m *Memory) SubscribeCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.subscribeCalls
}

// Subscribers returns the number of currently registered callbacks.
func (m *Memory) Subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.listeners)
}

// Writes returns a copy of every WriteField call seen so far.
func (m *Memory) Writes() []Write {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Write(nil), m.writes...)
}
