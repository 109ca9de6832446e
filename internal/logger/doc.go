// Package logger provides a zap-based sugared logger with a process-wide
// default and helpers to carry a named logger through a context.Context.
//
// Components call WithName once to tag their context and then use the
// package-level Info/Warn/Error helpers, which resolve the logger from
// the context on every call.
package logger
