// Package cache maintains the in-memory settings snapshot the bridge
// actuates from: single-writer reloads with last-good-value semantics,
// lock-free-cheap reads for color and vibration lookups.
package cache
