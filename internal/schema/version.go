// Package schema enumerates the Engine Library's schema versions and knows
// how to create and verify each one's DDL, mirroring the reference
// implementation's schema_creator_validator (create/verify) split.
package schema

import (
	"fmt"

	"github.com/deckwave/enginelibrary/model"
)

// Family groups schema versions by on-disk layout: v1 uses two attached
// files (m.db + p.db), v2/v3 use one.
type Family int

const (
	FamilyV1 Family = iota
	FamilyV2
	FamilyV3
)

// Version names one enumerated Engine Library schema.
type Version struct {
	Triple model.SchemaVersionTriple
	Family Family

	// ThirdLoudnessBand selects the 44-byte "wide" track-summary dialect
	// (three loudness bands) over the 28-byte "narrow" one.
	ThirdLoudnessBand bool

	// HasPlaylists is false only for the earliest v1 releases, which
	// predate playlist support entirely.
	HasPlaylists bool

	// HasChangeLog marks schemas that track a ChangeLog table of dirty
	// track ids, introduced partway through the v2 family.
	HasChangeLog bool

	// ListTypeColumn marks the 1.18.x schemas whose Playlist table carries
	// the extra "isExplicitlyExported" column (absent from the V1_18_0fw
	// variant).
	ListTypeColumn bool

	// Ordinal is this version's 1-based position in All, in ascending
	// release order. trackTableDDL uses it to select which of the
	// optional, write-path-unused Track columns a given release carries,
	// so that every enumerated version produces a distinct Track table
	// surface even where every other capability flag is identical (e.g.
	// the six early v1 patch releases V1_6_0..V1_13_2).
	Ordinal int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Triple.Major, v.Triple.Minor, v.Triple.Patch)
}

// Equal reports whether two versions name the same triple.
func (v Version) Equal(o Version) bool {
	return v.Triple == o.Triple
}

var (
	V1_6_0  = Version{Triple: model.SchemaVersionTriple{Major: 1, Minor: 6, Patch: 0}, Family: FamilyV1, Ordinal: 1}
	V1_7_1  = Version{Triple: model.SchemaVersionTriple{Major: 1, Minor: 7, Patch: 1}, Family: FamilyV1, Ordinal: 2}
	V1_9_1  = Version{Triple: model.SchemaVersionTriple{Major: 1, Minor: 9, Patch: 1}, Family: FamilyV1, Ordinal: 3}
	V1_13_0 = Version{Triple: model.SchemaVersionTriple{Major: 1, Minor: 13, Patch: 0}, Family: FamilyV1, Ordinal: 4}
	V1_13_1 = Version{Triple: model.SchemaVersionTriple{Major: 1, Minor: 13, Patch: 1}, Family: FamilyV1, Ordinal: 5}
	V1_13_2 = Version{Triple: model.SchemaVersionTriple{Major: 1, Minor: 13, Patch: 2}, Family: FamilyV1, Ordinal: 6}
	V1_15_0 = Version{Triple: model.SchemaVersionTriple{Major: 1, Minor: 15, Patch: 0}, Family: FamilyV1, HasPlaylists: true, Ordinal: 7}
	V1_17_0 = Version{Triple: model.SchemaVersionTriple{Major: 1, Minor: 17, Patch: 0}, Family: FamilyV1, HasPlaylists: true, Ordinal: 8}

	// V1_18_0 has two on-disk variants sharing one version triple: the
	// ordinary dialect, which carries a Playlist "isExplicitlyExported"
	// column, and an alternate firmware-originated dialect ("fw") that
	// omits it. Detect disambiguates the two by column introspection; Create
	// always emits the ordinary dialect. V1_18_0fw shares V1_18_0's ordinal
	// since it is excluded from All and never independently created.
	V1_18_0   = Version{Triple: model.SchemaVersionTriple{Major: 1, Minor: 18, Patch: 0}, Family: FamilyV1, HasPlaylists: true, ListTypeColumn: true, Ordinal: 9}
	V1_18_0fw = Version{Triple: model.SchemaVersionTriple{Major: 1, Minor: 18, Patch: 0}, Family: FamilyV1, HasPlaylists: true, ListTypeColumn: false, Ordinal: 9}
	V1_18_1   = Version{Triple: model.SchemaVersionTriple{Major: 1, Minor: 18, Patch: 1}, Family: FamilyV1, HasPlaylists: true, ListTypeColumn: true, Ordinal: 10}

	V2_0_0 = Version{Triple: model.SchemaVersionTriple{Major: 2, Minor: 0, Patch: 0}, Family: FamilyV2, ThirdLoudnessBand: true, HasPlaylists: true, Ordinal: 11}
	V2_0_3 = Version{Triple: model.SchemaVersionTriple{Major: 2, Minor: 0, Patch: 3}, Family: FamilyV2, ThirdLoudnessBand: true, HasPlaylists: true, Ordinal: 12}
	V2_1_0 = Version{Triple: model.SchemaVersionTriple{Major: 2, Minor: 1, Patch: 0}, Family: FamilyV2, ThirdLoudnessBand: true, HasPlaylists: true, Ordinal: 13}
	V2_1_2 = Version{Triple: model.SchemaVersionTriple{Major: 2, Minor: 1, Patch: 2}, Family: FamilyV2, ThirdLoudnessBand: true, HasPlaylists: true, Ordinal: 14}
	V2_1_3 = Version{Triple: model.SchemaVersionTriple{Major: 2, Minor: 1, Patch: 3}, Family: FamilyV2, ThirdLoudnessBand: true, HasPlaylists: true, Ordinal: 15}
	V2_2_0 = Version{Triple: model.SchemaVersionTriple{Major: 2, Minor: 2, Patch: 0}, Family: FamilyV2, ThirdLoudnessBand: true, HasPlaylists: true, HasChangeLog: true, Ordinal: 16}
	V2_3_0 = Version{Triple: model.SchemaVersionTriple{Major: 2, Minor: 3, Patch: 0}, Family: FamilyV2, ThirdLoudnessBand: true, HasPlaylists: true, HasChangeLog: true, Ordinal: 17}
	V2_3_2 = Version{Triple: model.SchemaVersionTriple{Major: 2, Minor: 3, Patch: 2}, Family: FamilyV2, ThirdLoudnessBand: true, HasPlaylists: true, HasChangeLog: true, Ordinal: 18}
	V2_3_3 = Version{Triple: model.SchemaVersionTriple{Major: 2, Minor: 3, Patch: 3}, Family: FamilyV2, ThirdLoudnessBand: true, HasPlaylists: true, HasChangeLog: true, Ordinal: 19}

	V3_0_0 = Version{Triple: model.SchemaVersionTriple{Major: 3, Minor: 0, Patch: 0}, Family: FamilyV3, ThirdLoudnessBand: true, HasPlaylists: true, HasChangeLog: true, Ordinal: 20}
	V3_0_1 = Version{Triple: model.SchemaVersionTriple{Major: 3, Minor: 0, Patch: 1}, Family: FamilyV3, ThirdLoudnessBand: true, HasPlaylists: true, HasChangeLog: true, Ordinal: 21}
)

// All lists every enumerated schema version, in ascending release order.
// V1_18_0fw is omitted since it shares V1_18_0's triple and Detect
// disambiguates the two at runtime rather than treating them as distinct
// creatable versions.
var All = []Version{
	V1_6_0, V1_7_1, V1_9_1, V1_13_0, V1_13_1, V1_13_2, V1_15_0, V1_17_0, V1_18_0, V1_18_1,
	V2_0_0, V2_0_3, V2_1_0, V2_1_2, V2_1_3, V2_2_0, V2_3_0, V2_3_2, V2_3_3,
	V3_0_0, V3_0_1,
}

// Latest is the newest enumerated schema version, used as Create's default.
var Latest = V3_0_1

// Lookup finds the enumerated Version matching a (major, minor, patch)
// triple. It returns ok=false for an unrecognized triple.
func Lookup(t model.SchemaVersionTriple) (Version, bool) {
	for _, v := range All {
		if v.Triple == t {
			return v, true
		}
	}
	return Version{}, false
}
