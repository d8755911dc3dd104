// Package data provides the data models and database interaction logic
// for the reading log.
package data

import (
	"fmt"
	"time"
)

// coverURLFormat is the Open Library covers endpoint, keyed by ISBN.
const coverURLFormat = "https://covers.openlibrary.org/b/isbn/%s-L.jpg"

// Book represents a single book record stored in the database.
// It maps directly to a row in the "books" table. Optional columns are
// pointers so that NULL survives the round trip.
type Book struct {
	ID       int64      `db:"id"`        // Unique identifier assigned by the database
	Title    string     `db:"title"`     // Title of the book
	Author   string     `db:"author"`    // Author of the book
	ISBN     *string    `db:"isbn"`      // Only used to look up a cover image
	Rating   *float64   `db:"rating"`    // Reader's rating, no enforced range
	Notes    *string    `db:"notes"`     // Free-form notes
	DateRead *time.Time `db:"date_read"` // Day the book was finished

	// CoverURL is derived from ISBN by the web layer and never persisted.
	CoverURL string `db:"-"`
}

// CoverURL returns the cover image URL for isbn, or "" when there is no ISBN.
// The ISBN is interpolated as-is; whether an image exists is not checked.
func CoverURL(isbn string) string {
	if isbn == "" {
		return ""
	}
	return fmt.Sprintf(coverURLFormat, isbn)
}

// AttachCoverURL sets b.CoverURL from the book's ISBN.
func (b *Book) AttachCoverURL() {
	b.CoverURL = ""
	if b.ISBN != nil {
		b.CoverURL = CoverURL(*b.ISBN)
	}
}

// DateReadValue formats DateRead for an <input type="date"> field.
func (b *Book) DateReadValue() string {
	if b.DateRead == nil {
		return ""
	}
	return b.DateRead.Format(time.DateOnly)
}

// SortMode selects the ordering used by BookStore.List.
type SortMode string

const (
	SortRecency SortMode = "recency" // date_read descending
	SortRating  SortMode = "rating"  // rating descending, then date_read descending
	SortTitle   SortMode = "title"   // title ascending
)

// SortModes lists every supported mode in display order.
var SortModes = []SortMode{SortRecency, SortRating, SortTitle}

// ParseSortMode maps a query string value onto a SortMode. Anything it does
// not recognise falls back to SortRecency.
func ParseSortMode(s string) SortMode {
	switch SortMode(s) {
	case SortRating:
		return SortRating
	case SortTitle:
		return SortTitle
	default:
		return SortRecency
	}
}

// today returns the current date at midnight UTC.
func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
