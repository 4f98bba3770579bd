package app

import "github.com/ShayOinif/Contacts/internal/contact"

// DemoContacts returns the records served by --demo.
func DemoContacts() []contact.DetailedContact {
	return []contact.DetailedContact{
		{
			Contact: contact.Contact{ID: 1, LookupKey: "0r1-ada", DisplayName: "Ada Lovelace"},
			Phones:  []contact.DetailField{{ID: 101, Value: "555-1111", Type: "mobile"}},
			Emails:  []contact.DetailField{{ID: 201, Value: "ada@analytical.engine", Type: "home"}},
		},
		{
			Contact: contact.Contact{ID: 2, LookupKey: "0r2-alan", DisplayName: "Alan Turing"},
			Phones: []contact.DetailField{
				{ID: 102, Value: "555-2020", Type: "work"},
				{ID: 103, Value: "555-2021", Type: "mobile"},
			},
		},
		{
			Contact: contact.Contact{ID: 3, LookupKey: "0r3-grace", DisplayName: "Grace Hopper"},
			Emails:  []contact.DetailField{{ID: 202, Value: "grace@navy.mil", Type: "work"}},
		},
		{
			Contact: contact.Contact{ID: 4, LookupKey: "0r4-edsger", DisplayName: "Edsger Dijkstra"},
			Phones:  []contact.DetailField{{ID: 104, Value: "555-4040", Type: "home"}},
			Emails:  []contact.DetailField{{ID: 203, Value: "ewd@utexas.edu", Type: "work"}},
		},
		{
			Contact: contact.Contact{ID: 5, LookupKey: "0r5-barbara", DisplayName: "Barbara Liskov"},
		},
	}
}
