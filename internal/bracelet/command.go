package bracelet

import "encoding/json"

// Command is one outbound instruction to the bracelet. Commands are
// transient values: built, framed onto the wire, never persisted.
type Command struct {
	// Color names the LED color to show, empty to leave the LED alone.
	Color string
	// Vibrate is the motor intensity (0..255), nil to leave the motor alone.
	Vibrate *int
	// Off turns everything off. It is exclusive and overrides the other fields.
	Off bool
}

// wireCommand is the frame shape the firmware decodes.
type wireCommand struct {
	Color   string `json:"color,omitempty"`
	Vibrate *int   `json:"vibrate,omitempty"`
	Off     int    `json:"off,omitempty"`
}

// Actuate builds the combined color+vibration command sent per event.
func Actuate(color string, vibrate int) Command {
	return Command{Color: color, Vibrate: &vibrate}
}

// StopVibration builds the command that stops the motor.
func StopVibration() Command {
	zero := 0

	return Command{Vibrate: &zero}
}

// AllOff builds the command that turns the LED and motor off.
func AllOff() Command {
	return Command{Off: true}
}

// MarshalJSON renders the wire frame, enforcing off-exclusivity and
// clamping the vibration intensity into 0..255.
func (c Command) MarshalJSON() ([]byte, error) {
	if c.Off {
		return json.Marshal(wireCommand{Off: 1})
	}

	frame := wireCommand{Color: c.Color}
	if c.Vibrate != nil {
		v := clampIntensity(*c.Vibrate)
		frame.Vibrate = &v
	}

	return json.Marshal(frame)
}

// clampIntensity bounds a vibration level into the firmware's 0..255 range.
func clampIntensity(v int) int {
	if v < 0 {
		return 0
	}

	if v > 255 {
		return 255
	}

	return v
}
