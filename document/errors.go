package document

import "errors"

var (
	// ErrInvariant reports a reconciliation result that contradicts the
	// text it was parsed from. The tree is left unchanged.
	ErrInvariant = errors.New("document: invariant violated")

	// ErrOutOfRange reports a block index or rune position outside the
	// document.
	ErrOutOfRange = errors.New("document: out of range")
)
