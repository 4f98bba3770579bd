package source

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/ShayOinif/Contacts/internal/contact"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - no schema
// 1 - contacts, raw_contacts, data
const currentSchemaVersion = 1

// Detail row mimetypes, kept compatible with the platform contract.
const (
	MimePhone = "vnd.android.cursor.item/phone_v2"
	MimeEmail = "vnd.android.cursor.item/email_v2"
)

// DefaultAccountTypes are the account types whose detail rows are listed.
var DefaultAccountTypes = []string{"com.google", "vnd.sec.contact.phone"}

const defaultWatchDebounce = 100 * time.Millisecond

var contactColumns = []string{"id", "lookup_key", "display_name", "photo_uri"}

// SQLiteOptions configure a SQLite store.
type SQLiteOptions struct {
	// AccountTypes restricts ListDetails; nil uses DefaultAccountTypes.
	AccountTypes []string
	// WatchDebounce coalesces file events; zero uses 100ms.
	WatchDebounce time.Duration
	// DisableWatch turns off out-of-process change detection.
	DisableWatch bool
	Logger       *zap.Logger
}

// SQLite is a contact.Source backed by a SQLite database file. Writes made
// through it notify subscribers directly; writes made by other processes are
// picked up by watching the database files.
type SQLite struct {
	db           *sql.DB
	path         string
	accountTypes []string
	debounce     time.Duration
	watch        bool
	log          *zap.Logger

	mu        sync.Mutex
	listeners map[int]func()
	nextToken int
	watcher   *fileWatcher
}

var _ contact.Source = (*SQLite)(nil)

// OpenSQLite creates or opens the database at path and applies the schema.
//
// The database is configured with:
//   - WAL mode so readers are not blocked by the writer
//   - 5-second busy timeout for lock contention
//   - foreign key enforcement (detail rows cascade with their contact)
func OpenSQLite(path string, opts SQLiteOptions) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// SQLite has one writer; a single connection also keeps ":memory:"
	// databases from splitting across the pool.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	accountTypes := opts.AccountTypes
	if accountTypes == nil {
		accountTypes = DefaultAccountTypes
	}
	debounce := opts.WatchDebounce
	if debounce <= 0 {
		debounce = defaultWatchDebounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &SQLite{
		db:           db,
		path:         path,
		accountTypes: append([]string(nil), accountTypes...),
		debounce:     debounce,
		watch:        !opts.DisableWatch && path != ":memory:",
		log:          logger,
		listeners:    make(map[int]func()),
	}, nil
}

// Close stops change detection and closes the database.
func (s *SQLite) Close() error {
	s.mu.Lock()
	w := s.watcher
	s.watcher = nil
	s.listeners = make(map[int]func())
	s.mu.Unlock()

	if w != nil {
		w.Stop()
	}
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ListContacts implements contact.Source.
func (s *SQLite) ListContacts(ctx context.Context) contact.Result[[]contact.Contact] {
	const op = "list contacts"

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, lookup_key, display_name, photo_uri
		FROM contacts
		ORDER BY display_name COLLATE NOCASE ASC, id ASC
	`)
	if err != nil {
		return contact.Failure[[]contact.Contact](classify(op, err))
	}
	defer rows.Close()

	if err := requireColumns(op, rows, contactColumns); err != nil {
		return contact.Failure[[]contact.Contact](err)
	}

	list := []contact.Contact{}
	for rows.Next() {
		var (
			c     contact.Contact
			photo sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.LookupKey, &c.DisplayName, &photo); err != nil {
			return contact.Failure[[]contact.Contact](classify(op, err))
		}
		c.PhotoURI = photo.String
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return contact.Failure[[]contact.Contact](classify(op, err))
	}
	return contact.Success(list)
}

// ListDetails implements contact.Source.
func (s *SQLite) ListDetails(ctx context.Context, contactID int64, kind contact.Kind) contact.Result[[]contact.DetailField] {
	op := "list " + kind.String() + " details"

	mime, err := mimeFor(kind)
	if err != nil {
		return contact.Failure[[]contact.DetailField](contact.Unavailable(op, err))
	}

	query := `
		SELECT d.id, d.data1, d.type_label
		FROM data d
		JOIN raw_contacts r ON d.raw_contact_id = r.id
		WHERE r.contact_id = ? AND d.mimetype = ?`
	args := []any{contactID, mime}
	if len(s.accountTypes) > 0 {
		query += " AND r.account_type IN (" + placeholders(len(s.accountTypes)) + ")"
		for _, t := range s.accountTypes {
			args = append(args, t)
		}
	}
	query += " ORDER BY d.type_label ASC, d.id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return contact.Failure[[]contact.DetailField](classify(op, err))
	}
	defer rows.Close()

	if err := requireColumns(op, rows, []string{"id", "data1", "type_label"}); err != nil {
		return contact.Failure[[]contact.DetailField](err)
	}

	fields := []contact.DetailField{}
	for rows.Next() {
		var f contact.DetailField
		if err := rows.Scan(&f.ID, &f.Value, &f.Type); err != nil {
			return contact.Failure[[]contact.DetailField](classify(op, err))
		}
		fields = append(fields, f)
	}
	if err := rows.Err(); err != nil {
		return contact.Failure[[]contact.DetailField](classify(op, err))
	}
	return contact.Success(fields)
}

// WriteField implements contact.Source.
func (s *SQLite) WriteField(ctx context.Context, fieldID int64, value string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE data SET data1 = ? WHERE id = ?`, value, fieldID)
	if err != nil {
		if contact.IsCancellation(err) {
			return err
		}
		return contact.WriteRejected(fieldID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return contact.WriteRejected(fieldID, err)
	}
	if n == 0 {
		return contact.WriteRejected(fieldID, errors.New("no such field"))
	}
	s.notify()
	return nil
}

// SubscribeToChanges implements contact.Source. The file watcher runs only
// while at least one callback is registered.
func (s *SQLite) SubscribeToChanges(onChange func()) (func(), error) {
	if onChange == nil {
		return nil, fmt.Errorf("subscribe: nil callback")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watch && s.watcher == nil {
		w, err := newFileWatcher(s.path, s.debounce, s.notify, s.log)
		if err != nil {
			return nil, fmt.Errorf("watch database: %w", err)
		}
		s.watcher = w
	}

	token := s.nextToken
	s.nextToken++
	s.listeners[token] = onChange

	var once sync.Once
	return func() {
		once.Do(func() { s.unsubscribe(token) })
	}, nil
}

func (s *SQLite) unsubscribe(token int) {
	s.mu.Lock()
	delete(s.listeners, token)
	var stop *fileWatcher
	if len(s.listeners) == 0 && s.watcher != nil {
		stop = s.watcher
		s.watcher = nil
	}
	s.mu.Unlock()

	if stop != nil {
		stop.Stop()
	}
}

func (s *SQLite) notify() {
	s.mu.Lock()
	callbacks := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		callbacks = append(callbacks, fn)
	}
	s.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}

// Insert stores a new contact with its detail rows under one raw contact of
// accountType and returns the record with the assigned ids.
func (s *SQLite) Insert(ctx context.Context, record contact.DetailedContact, accountType string) (contact.DetailedContact, error) {
	out, err := s.insertTx(ctx, record, accountType)
	if err != nil {
		return contact.DetailedContact{}, err
	}
	s.notify()
	return out, nil
}

func (s *SQLite) insertTx(ctx context.Context, record contact.DetailedContact, accountType string) (contact.DetailedContact, error) {
	if strings.TrimSpace(record.Contact.LookupKey) == "" {
		return contact.DetailedContact{}, fmt.Errorf("insert contact: lookup key is empty")
	}
	if accountType == "" && len(s.accountTypes) > 0 {
		accountType = s.accountTypes[0]
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return contact.DetailedContact{}, fmt.Errorf("begin insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var photo any
	if record.Contact.PhotoURI != "" {
		photo = record.Contact.PhotoURI
	}
	var contactID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO contacts (lookup_key, display_name, photo_uri)
		VALUES (?, ?, ?)
		ON CONFLICT(lookup_key) DO UPDATE SET
			display_name = excluded.display_name,
			photo_uri = excluded.photo_uri
		RETURNING id
	`, record.Contact.LookupKey, record.Contact.DisplayName, photo).Scan(&contactID)
	if err != nil {
		return contact.DetailedContact{}, fmt.Errorf("insert contact: %w", err)
	}

	// Re-imports replace the detail rows of the record.
	if _, err := tx.ExecContext(ctx, `DELETE FROM raw_contacts WHERE contact_id = ?`, contactID); err != nil {
		return contact.DetailedContact{}, fmt.Errorf("clear raw contacts: %w", err)
	}

	res, err := tx.ExecContext(ctx, `INSERT INTO raw_contacts (contact_id, account_type) VALUES (?, ?)`, contactID, accountType)
	if err != nil {
		return contact.DetailedContact{}, fmt.Errorf("insert raw contact: %w", err)
	}
	rawID, err := res.LastInsertId()
	if err != nil {
		return contact.DetailedContact{}, fmt.Errorf("raw contact id: %w", err)
	}

	out := record.Clone()
	out.Contact.ID = contactID
	for _, group := range []struct {
		mime   string
		fields []contact.DetailField
	}{
		{MimePhone, out.Phones},
		{MimeEmail, out.Emails},
	} {
		for i := range group.fields {
			label := group.fields[i].Type
			if label == "" {
				label = "other"
				group.fields[i].Type = label
			}
			res, err := tx.ExecContext(ctx,
				`INSERT INTO data (raw_contact_id, mimetype, data1, type_label) VALUES (?, ?, ?, ?)`,
				rawID, group.mime, group.fields[i].Value, label)
			if err != nil {
				return contact.DetailedContact{}, fmt.Errorf("insert detail: %w", err)
			}
			if group.fields[i].ID, err = res.LastInsertId(); err != nil {
				return contact.DetailedContact{}, fmt.Errorf("detail id: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return contact.DetailedContact{}, fmt.Errorf("commit insert: %w", err)
	}
	return out, nil
}

func mimeFor(kind contact.Kind) (string, error) {
	switch kind {
	case contact.Phone:
		return MimePhone, nil
	case contact.Email:
		return MimeEmail, nil
	default:
		return "", fmt.Errorf("unsupported detail kind %s", kind)
	}
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// requireColumns mirrors the platform cursor check: every expected column
// must be present in the result set.
func requireColumns(op string, rows *sql.Rows, want []string) error {
	cols, err := rows.Columns()
	if err != nil {
		return contact.Unavailable(op, err)
	}
	have := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		have[c] = struct{}{}
	}
	for _, c := range want {
		if _, ok := have[c]; !ok {
			return contact.SchemaMismatch(op, c)
		}
	}
	return nil
}

// classify maps driver errors onto the contact error taxonomy. Cancellation
// passes through untouched.
func classify(op string, err error) error {
	if contact.IsCancellation(err) {
		return err
	}
	msg := err.Error()
	if strings.Contains(msg, "no such column") {
		return &contact.Error{Code: contact.CodeSchemaMismatch, Op: op, Err: err}
	}
	if strings.Contains(msg, "no such table") {
		return &contact.Error{Code: contact.CodeSchemaMismatch, Op: op, Err: err}
	}
	return contact.Unavailable(op, err)
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version >= currentSchemaVersion {
		return nil
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}
