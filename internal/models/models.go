// Package models defines the core data structures for users and financial entries.
package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// User represents a registered account.
type User struct {
	// ID is the unique identifier for the user.
	ID int64
	// Name is the display name chosen at registration.
	Name string
	// Email is the unique login of the user.
	Email string
	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string
}

// Identity is the authenticated caller as carried by an access token.
type Identity struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Entry is the client projection of a cost or receivement row.
// The owning user is never part of the projection.
type Entry struct {
	// ID is the server-assigned identifier.
	ID int64 `json:"id"`
	// Title is a short label, 1 to 255 characters.
	Title string `json:"title"`
	// Description is optional free text.
	Description *string `json:"description"`
	// Value is the positive amount with at most two fractional digits.
	Value decimal.Decimal `json:"value"`
	// TransactionDate is the calendar day the money moved.
	TransactionDate Date `json:"transaction_date"`
}

// MarshalJSON writes Value with exactly two fractional digits.
func (e Entry) MarshalJSON() ([]byte, error) {
	type plain Entry
	return json.Marshal(struct {
		plain
		Value string `json:"value"`
	}{plain(e), e.Value.StringFixed(2)})
}

// EntryFields carries every mutable field of an entry. It is used by
// create and full update.
type EntryFields struct {
	Title           string
	Description     *string
	Value           decimal.Decimal
	TransactionDate Date
}

// EntryPatch carries the subset of fields a partial update changes.
// A nil field is left untouched.
type EntryPatch struct {
	Title           *string
	Description     *string
	Value           *decimal.Decimal
	TransactionDate *Date
}

// IsEmpty reports whether the patch changes nothing.
func (p EntryPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Value == nil && p.TransactionDate == nil
}

// ListFilter selects and slices the entries of one owner.
type ListFilter struct {
	// StartDate, when set, keeps entries dated on or after it.
	StartDate *Date
	// EndDate, when set, keeps entries dated on or before it.
	EndDate *Date
	// Page is 1-based.
	Page int
	// PageSize is the maximum number of items per page.
	PageSize int
}
