package enginelibrary

import (
	"github.com/deckwave/enginelibrary/internal/codec"
	"github.com/deckwave/enginelibrary/internal/errs"
)

// CodecError and CodecErrorKind alias the blob-decode error taxonomy.
type (
	CodecError     = codec.Error
	CodecErrorKind = codec.ErrorKind
)

const (
	CodecTooShort      = codec.TooShort
	CodecMalformed     = codec.Malformed
	CodecInflateFailed = codec.InflateFailed
)

// The error types below are type aliases to internal/errs so callers can
// type-switch or errors.As against them without importing an internal
// path (spec.md §7).
type (
	DatabaseNotFound      = errs.DatabaseNotFound
	DatabaseAlreadyExists = errs.DatabaseAlreadyExists
	UnsupportedVersion    = errs.UnsupportedVersion
	SchemaMismatch        = errs.SchemaMismatch
	UnsupportedOperation  = errs.UnsupportedOperation

	CrateDeleted    = errs.CrateDeleted
	TrackDeleted    = errs.TrackDeleted
	PlaylistDeleted = errs.PlaylistDeleted

	CrateInvalidName     = errs.CrateInvalidName
	PlaylistInvalidName  = errs.PlaylistInvalidName
	CrateInvalidParent   = errs.CrateInvalidParent
	PlaylistInvalidParent = errs.PlaylistInvalidParent

	CrateAlreadyExists    = errs.CrateAlreadyExists
	PlaylistAlreadyExists = errs.PlaylistAlreadyExists

	HotCuesOverflow = errs.HotCuesOverflow
	LoopsOverflow   = errs.LoopsOverflow

	InvalidTrackSnapshot  = errs.InvalidTrackSnapshot
	DatabaseInconsistency = errs.DatabaseInconsistency
)
