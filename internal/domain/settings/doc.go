// Package settings models the global bracelet configuration: the raw
// store document, the immutable snapshot the cache installs, and the
// pure quiet-hours evaluator.
package settings
