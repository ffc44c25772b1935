package kicad

// File names and URI prefix used by KiCad project bundles.
const (
	FPLibTable  = "fp-lib-table"
	SymLibTable = "sym-lib-table"

	// ProjectVar is the variable KiCad expands to the project directory.
	ProjectVar = "${KIPRJMOD}"

	FootprintExt = ".kicad_mod"
	SymbolLibExt = ".kicad_sym"
	PrettyExt    = ".pretty"
)

// FootprintRef identifies a footprint by library nickname and name.
type FootprintRef struct {
	LibNickname string
	Name        string
}

// Board is the capability surface consumed from the board model: enumerate
// components and 3D model references, and save a (possibly modified) copy.
type Board interface {
	// FileName returns the path of the board document on disk.
	FileName() string

	// Footprints enumerates the footprints placed on the board.
	Footprints() []FootprintRef

	// Models enumerates the 3D model files referenced by the board,
	// as absolute paths.
	Models() []string

	// RenameModel points the in-memory board at a relocated model file.
	// Save then writes the new reference.
	RenameModel(old, new string)

	// Save writes a copy of the board, including any renames, to path.
	Save(path string) error
}

// Schematic is the capability surface consumed from the schematic model.
type Schematic interface {
	// FileName returns the path of the top-level schematic on disk.
	FileName() string

	// Files enumerates every source file backing the document (the top
	// sheet plus sub-sheets).
	Files() []string

	// SymbolLibs maps each symbol library nickname to the symbol names the
	// schematic uses from it. The empty nickname collects locally edited
	// symbols that have no backing library.
	SymbolLibs() map[string][]string

	// SaveVariant writes a filtered copy of the schematic into dir.
	SaveVariant(dir string) error

	// WriteLib extracts the named symbols into a new library file
	// `<lib>.kicad_sym` under dir.
	WriteLib(dir, lib string, symbols []string) error
}

// LibResolver maps footprint library nicknames to their on-disk location.
type LibResolver interface {
	// FootprintLibPath returns the `.pretty` directory backing a nickname.
	FootprintLibPath(nick string) (string, bool)
}

// Project bundles the collaborators and file identities of the CAD project
// the current run operates on. Any field may be unset when the platform
// capability is not available; consumers requiring one must fail with a
// configuration error.
type Project struct {
	Board     Board
	Schematic Schematic
	Libs      LibResolver

	BoardFile string
	SchFile   string
	ProFile   string

	// ModelDirs is the ordered list of base directories 3D model paths are
	// made relative to. First match wins.
	ModelDirs []string
}

// LibAlias is one entry of a footprint or symbol library table.
type LibAlias struct {
	Name    string
	Type    string
	URI     string
	Options string
	Descr   string
	Legacy  bool
}
