package event

import (
	"strings"
	"time"
)

// Record is one event as stored by the event collection.
// The bridge only ever reads freshly inserted records and writes new
// ones from the button path; it never mutates or deletes them.
type Record struct {
	// ID is the store-assigned identifier of the record. It is kept
	// bridge-side only: the store owns the persisted _id format.
	ID string `bson:"-" json:"id,omitempty"`
	// Title is the free-text event label, e.g. "baby crying".
	Title string `bson:"title" json:"title"`
	// IsImportant is a producer-set priority flag, not interpreted by the bridge.
	IsImportant bool `bson:"isImportant" json:"isImportant"`
	// EventAt is when the event happened.
	EventAt time.Time `bson:"eventAt" json:"eventAt"`
	// CreatedAt is when the record was inserted; the polling cursor orders by it.
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// Clone returns a copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}

	cloned := *r

	return &cloned
}

// synonyms maps known free-text phrasings onto their canonical keys.
// Looked up before the generic space-to-underscore rewrite.
var synonyms = map[string]string{
	"baby crying":   "baby_crying",
	"baby movement": "baby_movement",
	"phone call":    "phone_call",
	"phone calling": "phone_call",
	"door knocking": "door_knocking",
}

// Key derives the normalized settings key for an event title:
// trimmed, lowercased, known phrasings mapped through the synonym
// table, remaining spaces replaced with underscores.
//
// Key is idempotent: Key(Key(x)) == Key(x).
func Key(title string) string {
	t := strings.ToLower(strings.TrimSpace(title))
	if key, ok := synonyms[t]; ok {
		return key
	}

	return strings.ReplaceAll(t, " ", "_")
}
