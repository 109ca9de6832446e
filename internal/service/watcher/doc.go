// Package watcher hosts the two long-lived store listeners: one for
// settings mutations, one for event inserts. Both prefer a push-based
// change subscription and degrade permanently to fixed-interval
// polling when the stream cannot be established or fails.
package watcher
