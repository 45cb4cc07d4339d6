package model

import "github.com/google/uuid"

// SchemaVersionTriple is the {major, minor, patch} version a database file
// declares in its Information row.
type SchemaVersionTriple struct {
	Major, Minor, Patch int
}

// Information is the singleton row every Engine Library database file
// carries: identity, declared version, and two opaque hardware counters
// whose derivation rules are not publicly documented (see DESIGN.md).
type Information struct {
	UUID    uuid.UUID
	Version SchemaVersionTriple

	// CurrentPlayedIndicator is seeded from a large constant observed in
	// reference data on create, and left untouched on update.
	CurrentPlayedIndicator int64

	// ImportReadCounter tracks some aspect of cross-database import
	// bookkeeping; reference data starts it at zero.
	ImportReadCounter int64
}
