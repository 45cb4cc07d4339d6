package model

// MusicalKey is one of the 24 musical keys a track's analysis may settle on,
// ordered around the circle of fifths the way reference hardware enumerates
// them. The zero value, KeyNone, is not itself a valid key — it represents
// the absence of a detected key on a track snapshot.
type MusicalKey int

const (
	KeyNone MusicalKey = iota
	KeyCMajor
	KeyAMinor
	KeyGMajor
	KeyEMinor
	KeyDMajor
	KeyBMinor
	KeyAMajor
	KeyFSharpMinor
	KeyEMajor
	KeyDFlatMinor
	KeyBMajor
	KeyAFlatMinor
	KeyFSharpMajor
	KeyEFlatMinor
	KeyDFlatMajor
	KeyBFlatMinor
	KeyAFlatMajor
	KeyFMinor
	KeyEFlatMajor
	KeyCMinor
	KeyBFlatMajor
	KeyGMinor
	KeyFMajor
	KeyDMinor
)

var musicalKeyNames = [...]string{
	KeyNone:        "",
	KeyCMajor:      "C",
	KeyAMinor:      "Am",
	KeyGMajor:      "G",
	KeyEMinor:      "Em",
	KeyDMajor:      "D",
	KeyBMinor:      "Bm",
	KeyAMajor:      "A",
	KeyFSharpMinor: "F♯m",
	KeyEMajor:      "E",
	KeyDFlatMinor:  "D♭m",
	KeyBMajor:      "B",
	KeyAFlatMinor:  "A♭m",
	KeyFSharpMajor: "F♯",
	KeyEFlatMinor:  "E♭m",
	KeyDFlatMajor:  "D♭",
	KeyBFlatMinor:  "B♭m",
	KeyAFlatMajor:  "A♭",
	KeyFMinor:      "Fm",
	KeyEFlatMajor:  "E♭",
	KeyCMinor:      "Cm",
	KeyBFlatMajor:  "B♭",
	KeyGMinor:      "Gm",
	KeyFMajor:      "F",
	KeyDMinor:      "Dm",
}

// String returns the key's short display name (e.g. "Fm", "E♭"), or "" for
// KeyNone.
func (k MusicalKey) String() string {
	if k < KeyNone || int(k) >= len(musicalKeyNames) {
		return ""
	}
	return musicalKeyNames[k]
}

// Valid reports whether k is one of the 24 enumerated keys (KeyNone does not
// count as valid — it is the "absent" sentinel, checked separately).
func (k MusicalKey) Valid() bool {
	return k >= KeyCMajor && int(k) < len(musicalKeyNames)
}
