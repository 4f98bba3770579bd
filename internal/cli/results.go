package cli

import (
	"fmt"
	"strings"

	"github.com/ShayOinif/Contacts/internal/contact"
	"github.com/ShayOinif/Contacts/internal/logtail"
)

// contactList is the result of list.
type contactList struct {
	Query    string            `json:"query,omitempty" yaml:"query,omitempty"`
	Contacts []contact.Contact `json:"contacts" yaml:"contacts"`
}

func (l contactList) Text() string {
	if len(l.Contacts) == 0 {
		if l.Query != "" {
			return fmt.Sprintf("No contacts match %q\n", l.Query)
		}
		return "No contacts\n"
	}
	width := len("KEY")
	for _, c := range l.Contacts {
		width = max(width, len(c.LookupKey))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-*s  %s\n", width, "KEY", "NAME")
	for _, c := range l.Contacts {
		fmt.Fprintf(&b, "%-*s  %s\n", width, c.LookupKey, c.DisplayName)
	}
	return b.String()
}

// contactDetail is the result of show.
type contactDetail struct {
	contact.DetailedContact `yaml:",inline"`
}

func (d contactDetail) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", d.Contact.DisplayName)
	fmt.Fprintf(&b, "  key:   %s\n", d.Contact.LookupKey)
	if d.Contact.HasPhoto() {
		fmt.Fprintf(&b, "  photo: %s\n", d.Contact.PhotoURI)
	}
	writeFields := func(title string, fields []contact.DetailField) {
		fmt.Fprintf(&b, "%s:\n", title)
		if len(fields) == 0 {
			b.WriteString("  (none)\n")
			return
		}
		for _, f := range fields {
			fmt.Fprintf(&b, "  [%d] %-10s %s\n", f.ID, f.Type, f.Value)
		}
	}
	writeFields("Phones", d.Phones)
	writeFields("Emails", d.Emails)
	return b.String()
}

// fieldUpdate is the result of set.
type fieldUpdate struct {
	FieldID int64  `json:"field_id" yaml:"field_id"`
	Value   string `json:"value" yaml:"value"`
}

func (u fieldUpdate) Text() string {
	return fmt.Sprintf("field %d set to %q\n", u.FieldID, u.Value)
}

// importSummary is the result of import.
type importSummary struct {
	File     string `json:"file" yaml:"file"`
	Imported int    `json:"imported" yaml:"imported"`
}

func (s importSummary) Text() string {
	return fmt.Sprintf("imported %d contact(s) from %s\n", s.Imported, s.File)
}

// logLines is the result of logs.
type logLines struct {
	Path    string          `json:"path" yaml:"path"`
	Entries []logtail.Entry `json:"entries" yaml:"entries"`
}

func (l logLines) Text() string {
	if len(l.Entries) == 0 {
		return "No log lines in " + l.Path + "\n"
	}
	var b strings.Builder
	for _, e := range l.Entries {
		b.WriteString(e.Format())
		b.WriteByte('\n')
	}
	return b.String()
}
