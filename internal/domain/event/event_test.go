package event

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestKey checks synonym mapping, normalization and handling of unknown titles.
func TestKey(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"baby crying":     "baby_crying",
		"Baby Crying":     "baby_crying",
		" door knocking ": "door_knocking",
		"phone call":      "phone_call",
		"phone calling":   "phone_call",
		"baby movement":   "baby_movement",
		"glass breaking":  "glass_breaking",
		"smoke  alarm":    "smoke__alarm",
		"":                "",
	}
	for title, want := range cases {
		require.Equal(t, want, Key(title), "title %q", title)
	}
}

// TestKeyIdempotent verifies Key(Key(x)) == Key(x) for canonical, synonym and free-text inputs.
func TestKeyIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"baby crying",
		"baby_crying",
		"phone calling",
		"Door Knocking",
		"some unknown noise",
		"already_normalized_key",
		"",
	}
	for _, s := range inputs {
		once := Key(s)
		require.Equal(t, once, Key(once), "input %q", s)
	}
}

// TestRecordClone verifies Clone copies the record and handles nil safely.
func TestRecordClone(t *testing.T) {
	t.Parallel()

	require.Nil(t, (*Record)(nil).Clone())

	r := &Record{ID: "abc", Title: "door knocking"}
	c := r.Clone()

	require.Equal(t, r, c)
	require.NotSame(t, r, c)
}
