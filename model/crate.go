package model

import "strings"

// Crate is a named, hierarchical container for tracks with no inherent
// ordering of its members.
type Crate struct {
	ID       int64
	Name     string
	ParentID *int64 // nil means a root crate
}

// PathSeparator delimits ancestor names in a crate's path-string
// representation.
const PathSeparator = ";"

// ValidateCrateName reports whether name is acceptable for a crate or
// playlist: non-empty and free of the path separator.
func ValidateCrateName(name string) bool {
	return name != "" && !strings.Contains(name, PathSeparator)
}

// CratePath renders the semicolon-delimited path string for a crate given
// the ordered list of its ancestor names (root-first, not including the
// crate's own name) and its own name.
func CratePath(ancestorNames []string, name string) string {
	var b strings.Builder
	for _, n := range ancestorNames {
		b.WriteString(n)
		b.WriteString(PathSeparator)
	}
	b.WriteString(name)
	b.WriteString(PathSeparator)
	return b.String()
}
