// Package collector implements the copy_files output type: declarative file
// specifications are expanded into a concrete copy/link plan. Sources can be
// glob patterns, artifacts of other outputs (triggered on demand), the 3D
// models a board references, or the whole project bundle with rewritten
// library tables.
package collector
