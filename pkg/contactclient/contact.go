// Package contactclient is the client side of the contact API: an HTTP
// client, an owned snapshot of the contact list that is refetched after
// every mutation, and the form state (draft, field errors, status banner)
// a front end drives.
package contactclient

import (
	"strings"
)

// Contact is the client-side view of a contact. Field names differ from
// the wire format (contactID, tel); the translation is a pure rename.
type Contact struct {
	ID        int64
	Name      string
	Address   string
	Telephone string
	Mobile    string
	Email     string
	Country   string
}

type wireContact struct {
	ContactID int64  `json:"contactID"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	Tel       string `json:"tel"`
	Mobile    string `json:"mobile"`
	Email     string `json:"email"`
	Country   string `json:"country"`
}

func toWire(c Contact) wireContact {
	return wireContact{
		ContactID: c.ID,
		Name:      c.Name,
		Address:   c.Address,
		Tel:       c.Telephone,
		Mobile:    c.Mobile,
		Email:     c.Email,
		Country:   c.Country,
	}
}

func fromWire(w wireContact) Contact {
	return Contact{
		ID:        w.ContactID,
		Name:      w.Name,
		Address:   w.Address,
		Telephone: w.Tel,
		Mobile:    w.Mobile,
		Email:     w.Email,
		Country:   w.Country,
	}
}

// FieldErrors maps a field key (name, mobile, country) to its message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	msgs := make([]string, 0, len(fe))
	for _, key := range []string{"name", "mobile", "country"} {
		if msg, ok := fe[key]; ok {
			msgs = append(msgs, msg)
		}
	}
	return strings.Join(msgs, "; ")
}

// ValidateFields runs the same required-field checks as the server and
// reports every failing field. It returns nil when the contact is valid.
func ValidateFields(c Contact) FieldErrors {
	fe := FieldErrors{}
	if strings.TrimSpace(c.Name) == "" {
		fe["name"] = "Name field cannot be empty"
	}
	if strings.TrimSpace(c.Mobile) == "" {
		fe["mobile"] = "Mobile field cannot be empty"
	}
	if strings.TrimSpace(c.Country) == "" {
		fe["country"] = "Country field cannot be empty"
	}
	if len(fe) == 0 {
		return nil
	}
	return fe
}
