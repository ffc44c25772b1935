// Package types holds the small shared types and interfaces used across the
// engine: the filesystem abstraction, the resolved copy plan entries, and the
// soft-warning sink.
package types
