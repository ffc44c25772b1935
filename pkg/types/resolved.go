package types

// ResolvedFile is one entry of a copy/link plan: a source file and the
// destination it should land at, relative to the output directory.
//
// Source is empty for files the collector itself generates (library tables,
// saved board copies). The executor skips copying those but they still count
// as targets for dependency reporting.
type ResolvedFile struct {
	Source string
	Dest   string
}

// Generated reports whether this entry has no source on disk and will be
// written by the collector itself.
func (r ResolvedFile) Generated() bool {
	return r.Source == ""
}
