// Package orchestrator drives a run: preflights first, then target
// selection, then each selected output in priority order. Per-run state
// (done flags, the in-progress stack used for cycle detection, warning
// counts) lives in a Context so independent runs never interfere.
package orchestrator
