package derive

import "github.com/deckwave/enginelibrary/model"

// ClampRating clamps r to [0, 100] on write. model.RatingNone passes
// through unchanged; it is the stored sentinel for "no rating", distinct
// from a clamped 0.
func ClampRating(r int) int {
	if r == model.RatingNone {
		return model.RatingNone
	}
	if r < 0 {
		return 0
	}
	if r > 100 {
		return 100
	}
	return r
}
