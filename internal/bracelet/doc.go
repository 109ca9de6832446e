// Package bracelet owns the serial connection to the wearable actuator.
//
// Outbound commands are framed as line-delimited JSON and written under
// a single lock; inbound lines are read with a bounded timeout so loops
// built on ReadLine stay responsive to shutdown.
package bracelet
