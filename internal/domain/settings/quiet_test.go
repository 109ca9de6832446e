package settings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// at builds a local timestamp on an arbitrary fixed day.
func at(hour, minute int) time.Time {
	return time.Date(2026, time.March, 14, hour, minute, 0, 0, time.Local)
}

// TestIsQuietAtNonWrapping asserts the window is inclusive on both bounds
// and false elsewhere within the same day.
func TestIsQuietAtNonWrapping(t *testing.T) {
	t.Parallel()

	w := &Window{Start: "09:00", End: "17:00"}

	require.True(t, IsQuietAt(w, at(9, 0)))
	require.True(t, IsQuietAt(w, at(12, 30)))
	require.True(t, IsQuietAt(w, at(17, 0)))
	require.False(t, IsQuietAt(w, at(8, 59)))
	require.False(t, IsQuietAt(w, at(17, 1)))
	require.False(t, IsQuietAt(w, at(23, 0)))
}

// TestIsQuietAtWrapping covers a window crossing midnight.
func TestIsQuietAtWrapping(t *testing.T) {
	t.Parallel()

	w := &Window{Start: "22:00", End: "06:00"}

	require.True(t, IsQuietAt(w, at(23, 30)))
	require.True(t, IsQuietAt(w, at(5, 30)))
	require.True(t, IsQuietAt(w, at(22, 0)))
	require.True(t, IsQuietAt(w, at(6, 0)))
	require.False(t, IsQuietAt(w, at(12, 0)))
	require.False(t, IsQuietAt(w, at(21, 59)))
}

// TestIsQuietAtMalformed verifies the evaluator fails open on bad input.
func TestIsQuietAtMalformed(t *testing.T) {
	t.Parallel()

	cases := []*Window{
		nil,
		{},
		{Start: "22:00"},
		{Start: "9:00", End: "17:00"},
		{Start: "09:00", End: "17-00"},
		{Start: "ab:cd", End: "17:00"},
		{Start: "25:00", End: "26:00"},
		{Start: "09:61", End: "17:00"},
	}
	for _, w := range cases {
		require.False(t, IsQuietAt(w, at(12, 0)), "window %+v", w)
	}
}

// TestNewSnapshot covers nil documents, map copying and window cloning.
func TestNewSnapshot(t *testing.T) {
	t.Parallel()

	snap := NewSnapshot(nil)
	require.Empty(t, snap.Colors)
	require.False(t, snap.VibrationEnabled)
	require.Nil(t, snap.Quiet)

	doc := &Document{
		Colors:     map[string]string{"door_knocking": "purple"},
		Vibration:  true,
		QuietHours: &Window{Start: "22:00", End: "06:00"},
	}
	snap = NewSnapshot(doc)

	require.Equal(t, doc.Colors, snap.Colors)
	require.True(t, snap.VibrationEnabled)
	require.Equal(t, doc.QuietHours, snap.Quiet)
	require.NotSame(t, doc.QuietHours, snap.Quiet)

	// Mutating the source document must not leak into the snapshot.
	doc.Colors["door_knocking"] = "red"
	require.Equal(t, "purple", snap.Colors["door_knocking"])
}

// TestSnapshotColor checks configured colors, built-in defaults and the final fallback.
func TestSnapshotColor(t *testing.T) {
	t.Parallel()

	empty := NewSnapshot(nil)
	require.Equal(t, "green", empty.Color("door_knocking"))
	require.Equal(t, "blue", empty.Color("baby_crying"))
	require.Equal(t, DefaultColor, empty.Color("glass_breaking"))

	configured := NewSnapshot(&Document{Colors: map[string]string{"door_knocking": "purple"}})
	require.Equal(t, "purple", configured.Color("door_knocking"))
}
