// Package event defines the event record model and the normalized
// event-key derivation used to look up per-event configuration.
package event
