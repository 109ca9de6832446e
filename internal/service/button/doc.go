// Package button listens for physical button presses on the serial
// line and feeds them back into the event store.
package button
