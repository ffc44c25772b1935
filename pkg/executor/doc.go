// Package executor materializes resolved copy plans: it creates destination
// directories, copies or links files, detects self-copies and reports
// destination collisions.
package executor
