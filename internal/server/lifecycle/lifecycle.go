// Package lifecycle implements the capsule open/locked state machine as
// pure functions. The current time is always an explicit argument so the
// boundary is testable without a real clock. Both timestamps are expected
// to be UTC instants; comparisons use time.Time instants, never strings.
package lifecycle

import (
	"time"

	"github.com/cloudcapsule/cloudcapsule/internal/common"
	"github.com/cloudcapsule/cloudcapsule/internal/server/models"
)

// IsOpen reports whether a capsule with the given open date is open at now.
// The boundary is inclusive: a capsule opens the instant now == openDate.
// The transition is one-way; nothing ever re-locks an open capsule.
func IsOpen(openDate, now time.Time) bool {
	return !now.Before(openDate)
}

// Redact enforces the disclosure rule on a loaded record in place.
//
// While locked, every content field is replaced with its hidden
// representation (nil, empty slice); id, title, open_date and created_at
// stay visible. Once open, fields pass through with defaults filled in for
// absent values.
func Redact(rec *models.CapsuleRecord) {
	if !rec.IsOpen {
		rec.Letter = nil
		rec.Secret = nil
		rec.Feeling = nil
		rec.Rating = nil
		rec.Song = nil
		rec.PhotoURLs = []string{}
		return
	}

	if rec.Letter == nil {
		rec.Letter = ptr("")
	}
	if rec.Secret == nil {
		rec.Secret = ptr("")
	}
	if rec.Feeling == nil || *rec.Feeling == "" {
		rec.Feeling = ptr(models.DefaultFeeling)
	}
	if rec.Rating == nil {
		r := models.DefaultRating
		rec.Rating = &r
	}
	if rec.Song == nil {
		rec.Song = ptr("")
	}
	if rec.PhotoURLs == nil {
		rec.PhotoURLs = []string{}
	}
}

// AuthorizeMutation checks the edit-lock invariant: title, open date and
// content are mutable only while the capsule is still locked. Returns
// common.ErrCapsuleSealed once now has reached openDate. Deletion is not
// routed through here; owners may delete in either state.
func AuthorizeMutation(openDate, now time.Time) error {
	if IsOpen(openDate, now) {
		return common.ErrCapsuleSealed
	}
	return nil
}

func ptr(s string) *string { return &s }
