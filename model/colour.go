package model

// Colour is the ARGB pad colour used for hot cues and loops on reference
// hardware. Alpha is typically left at full brightness.
type Colour struct {
	A, R, G, B uint8
}
