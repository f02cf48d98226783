package kademliatable

import "github.com/pkg/errors"

var (
	// ErrIDLength is returned when an identifier does not have the same length
	// as the local node id. Identifiers are never padded or truncated.
	ErrIDLength = errors.New("kademliatable: identifier length mismatch")

	// ErrLocalID is returned when the local node id is added as a peer.
	ErrLocalID = errors.New("kademliatable: local id cannot be added as a peer")

	// ErrNoGetID is returned by NewTable when no identifier accessor is given
	// and the peer type is not Contact.
	ErrNoGetID = errors.New("kademliatable: GetID accessor is required")
)

func idLengthError(got, want int) error {
	return errors.Wrapf(ErrIDLength, "got %d bytes, want %d", got, want)
}
