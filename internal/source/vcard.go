package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-vcard"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ShayOinif/Contacts/internal/contact"
)

// Import reads every card from r and stores it. Cards are keyed by UID, so
// importing the same file twice updates instead of duplicating. It returns
// the number of stored cards. Cards stored before a failure stay stored and
// are announced to subscribers.
func (s *SQLite) Import(ctx context.Context, r io.Reader) (int, error) {
	dec := vcard.NewDecoder(r)
	count := 0
	defer func() {
		if count > 0 {
			s.notify()
		}
	}()
	for {
		card, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return count, fmt.Errorf("decode vcard %d: %w", count+1, err)
		}

		record := RecordFromCard(card)
		if record.Contact.DisplayName == "" {
			s.log.Warn("skipping vcard without a name", zap.Int("index", count+1))
			continue
		}
		if _, err := s.insertTx(ctx, record, ""); err != nil {
			return count, fmt.Errorf("store vcard %q: %w", record.Contact.DisplayName, err)
		}
		count++
	}
	return count, nil
}

// Export writes the given records as vCard 4.0.
func Export(w io.Writer, records ...contact.DetailedContact) error {
	enc := vcard.NewEncoder(w)
	for _, record := range records {
		if err := enc.Encode(CardFromRecord(record)); err != nil {
			return fmt.Errorf("encode vcard %q: %w", record.Contact.DisplayName, err)
		}
	}
	return nil
}

// RecordFromCard maps a vCard onto a detailed contact without ids. UID
// becomes the lookup key; a card without one gets a fresh key.
func RecordFromCard(card vcard.Card) contact.DetailedContact {
	name := strings.TrimSpace(card.PreferredValue(vcard.FieldFormattedName))
	if name == "" {
		if n := card.Name(); n != nil {
			name = strings.TrimSpace(strings.Join(nonEmpty(n.GivenName, n.AdditionalName, n.FamilyName), " "))
		}
	}

	key := strings.TrimSpace(card.Value(vcard.FieldUID))
	if key == "" {
		key = uuid.NewString()
	}

	record := contact.DetailedContact{
		Contact: contact.Contact{
			LookupKey:   key,
			DisplayName: name,
		},
		Phones: []contact.DetailField{},
		Emails: []contact.DetailField{},
	}
	if photo := card.Get(vcard.FieldPhoto); photo != nil && isURI(photo.Value) {
		record.Contact.PhotoURI = photo.Value
	}
	for _, f := range card[vcard.FieldTelephone] {
		record.Phones = append(record.Phones, contact.DetailField{Value: strings.TrimSpace(f.Value), Type: typeLabel(f, "mobile")})
	}
	for _, f := range card[vcard.FieldEmail] {
		record.Emails = append(record.Emails, contact.DetailField{Value: strings.TrimSpace(f.Value), Type: typeLabel(f, "other")})
	}
	return record
}

// CardFromRecord maps a detailed contact onto a vCard 4.0 card.
func CardFromRecord(record contact.DetailedContact) vcard.Card {
	card := make(vcard.Card)
	card.SetValue(vcard.FieldVersion, "4.0")
	card.SetValue(vcard.FieldFormattedName, record.Contact.DisplayName)
	card.SetValue(vcard.FieldUID, record.Contact.LookupKey)
	if record.Contact.PhotoURI != "" {
		card.SetValue(vcard.FieldPhoto, record.Contact.PhotoURI)
	}
	for _, f := range record.Phones {
		card.Add(vcard.FieldTelephone, &vcard.Field{
			Value:  f.Value,
			Params: vcard.Params{vcard.ParamType: []string{f.Type}},
		})
	}
	for _, f := range record.Emails {
		card.Add(vcard.FieldEmail, &vcard.Field{
			Value:  f.Value,
			Params: vcard.Params{vcard.ParamType: []string{f.Type}},
		})
	}
	return card
}

// typeLabel picks the first meaningful TYPE parameter, lower-cased.
func typeLabel(f *vcard.Field, fallback string) string {
	for _, raw := range f.Params[vcard.ParamType] {
		for _, t := range strings.Split(raw, ",") {
			t = strings.ToLower(strings.TrimSpace(t))
			switch t {
			case "", "pref", "voice", "internet":
				continue
			case "cell":
				return "mobile"
			default:
				return t
			}
		}
	}
	return fallback
}

func isURI(v string) bool {
	return strings.Contains(v, "://") || strings.HasPrefix(v, "data:")
}

func nonEmpty(values ...string) []string {
	out := values[:0]
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, strings.TrimSpace(v))
		}
	}
	return out
}
