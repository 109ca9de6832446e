// Package bridge is the process supervisor: it owns the serial
// connection lifecycle, constructs the settings cache and store, and
// runs the watchers and the button listener as concurrent units
// sharing one stop signal.
package bridge
