// Package kicad holds the CAD collaborator surface: narrow interfaces for
// the board and schematic models, project file discovery, and the helpers
// that write library tables and project metadata copies.
package kicad
