// Package actuator maps inserted event records to bracelet commands:
// color lookup, vibration gating, and the deferred motor auto-stop.
package actuator
