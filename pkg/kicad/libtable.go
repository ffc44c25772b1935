package kicad

import (
	"fmt"
	"sort"
	"strings"

	"github.com/flaviut/kibot/pkg/errors"
	"github.com/flaviut/kibot/pkg/types"
)

// WriteLibTable serializes a library table mapping nicknames to their new
// locations. isFP selects the footprint table format, otherwise the symbol
// table format is used. Entries are written sorted by nickname so the output
// is deterministic.
func WriteLibTable(fsys types.FS, path string, aliases map[string]LibAlias, isFP bool) error {
	kind := "sym_lib_table"
	if isFP {
		kind = "fp_lib_table"
	}

	names := make([]string, 0, len(aliases))
	for name := range aliases {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "(%s\n", kind)
	for _, name := range names {
		a := aliases[name]
		typ := a.Type
		if typ == "" {
			typ = "KiCad"
		}
		fmt.Fprintf(&b, "  (lib (name %s)(type %s)(uri %s)(options %s)(descr %s))\n",
			quoteSexp(a.Name), quoteSexp(typ), quoteSexp(a.URI), quoteSexp(a.Options), quoteSexp(a.Descr))
	}
	b.WriteString(")\n")

	if err := fsys.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "writing library table `%s`", path)
	}
	return nil
}

// quoteSexp quotes a string for a KiCad s-expression file.
func quoteSexp(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
