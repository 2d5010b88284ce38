// Package scene error definitions.
package scene

import "errors"

// Deserialization errors
var (
	// ErrHashMismatch reports that the content hash recomputed over a freshly
	// loaded scene does not equal the hash stored in the stream. The load is
	// aborted; no partial scene is usable.
	ErrHashMismatch = errors.New("scene hash mismatch")

	ErrUnknownEntityType     = errors.New("unknown entity type")
	ErrUnknownAssetType      = errors.New("unknown asset type")
	ErrUnknownConstraintType = errors.New("unknown constraint type")
)
