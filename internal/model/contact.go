// Package model defines domain entities for the application.
package model

import "time"

// ContactKind represents the type of a contact link.
type ContactKind string

const (
	ContactKindEmail      ContactKind = "email"
	ContactKindLinkedIn   ContactKind = "linkedin"
	ContactKindRepository ContactKind = "repository"
	ContactKindOther      ContactKind = "other"
)

// ValidContactKinds contains all valid contact kinds.
var ValidContactKinds = []ContactKind{
	ContactKindEmail,
	ContactKindLinkedIn,
	ContactKindRepository,
	ContactKindOther,
}

// IsValid checks if the contact kind is valid.
func (k ContactKind) IsValid() bool {
	switch k {
	case ContactKindEmail, ContactKindLinkedIn, ContactKindRepository, ContactKindOther:
		return true
	}
	return false
}

// RequiredScheme returns the URL scheme a link of this kind must use.
func (k ContactKind) RequiredScheme() string {
	if k == ContactKindEmail {
		return "mailto"
	}
	return "https"
}

// MaxContactLinks bounds the number of contact links on a profile.
const MaxContactLinks = 20

// ContactLink represents an outbound contact reference on the profile.
type ContactLink struct {
	ID        string      `json:"id"`
	Kind      ContactKind `json:"kind"`
	Label     string      `json:"label"`
	URL       string      `json:"url"`
	SortOrder int         `json:"sort_order"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
