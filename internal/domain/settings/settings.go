package settings

// Window is a daily wall-clock interval, both bounds formatted "HH:MM"
// in 24-hour time. A window may wrap past midnight (start > end).
type Window struct {
	// Start is the inclusive lower bound of the window.
	Start string `bson:"start" json:"start"`
	// End is the inclusive upper bound of the window.
	End string `bson:"end" json:"end"`
}

// Clone returns a copy of the window.
func (w *Window) Clone() *Window {
	if w == nil {
		return nil
	}

	cloned := *w

	return &cloned
}

// Document is the raw global settings document as the store holds it.
type Document struct {
	// Colors maps normalized event keys to color names.
	Colors map[string]string `bson:"colors" json:"colors"`
	// Vibration enables the vibration motor.
	Vibration bool `bson:"vibration" json:"vibration"`
	// QuietHours suppresses vibration inside the window when present.
	QuietHours *Window `bson:"quietHours" json:"quietHours,omitempty"`
}

// Snapshot is an immutable, validated view of the settings document.
// A snapshot is installed whole or not at all and is never mutated in
// place, so concurrent readers always observe a consistent state.
type Snapshot struct {
	// Colors maps normalized event keys to color names.
	Colors map[string]string
	// VibrationEnabled reports whether the motor may run at all.
	VibrationEnabled bool
	// Quiet is the configured quiet-hours window, nil when absent.
	Quiet *Window
}

const (
	// DefaultColor is used for event keys with no configured or default color.
	DefaultColor = "white"

	// MaxIntensity is the vibration level sent when vibration is enabled.
	MaxIntensity = 255
)

// defaultColors keeps a never-configured installation behaving sensibly.
var defaultColors = map[string]string{
	"baby_crying":   "blue",
	"door_knocking": "green",
	"phone_call":    "red",
	"baby_movement": "yellow",
}

// NewSnapshot builds a snapshot from a raw settings document.
// A nil document yields an empty snapshot backed purely by defaults.
func NewSnapshot(doc *Document) *Snapshot {
	snap := &Snapshot{
		Colors: map[string]string{},
	}

	if doc == nil {
		return snap
	}

	for key, color := range doc.Colors {
		snap.Colors[key] = color
	}

	snap.VibrationEnabled = doc.Vibration
	snap.Quiet = doc.QuietHours.Clone()

	return snap
}

// Color resolves the color for a normalized event key, falling back to
// the built-in default table and finally to DefaultColor.
func (s *Snapshot) Color(key string) string {
	if color, ok := s.Colors[key]; ok {
		return color
	}

	if color, ok := defaultColors[key]; ok {
		return color
	}

	return DefaultColor
}
