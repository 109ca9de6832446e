// Package store defines the event/settings persistence surface the
// bridge consumes and provides two implementations: a MongoDB store
// using change streams for push notifications, and an in-memory store
// for tests and database-free development.
package store
