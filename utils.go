package kademliatable

import (
	"crypto/rand"

	"github.com/pkg/errors"
)

// DefaultIDLength is the id length, in bytes, used when a table is created
// without a local id (160 bits).
const DefaultIDLength = 20

// GenerateID returns a random id of length bytes.
// It will return an error if the system's secure random number generator fails
// to function correctly, in which case the caller should not continue.
func GenerateID(length int) ([]byte, error) {
	id := make([]byte, length)
	if _, err := rand.Read(id); err != nil {
		return nil, errors.Wrap(err, "kademliatable: generate id")
	}

	return id, nil
}

// RandomIDAtDistance returns a random id whose distance from localID is d,
// i.e. an id that falls into bucket d of a table owned by localID. It is
// useful for refreshing a bucket with a lookup of a random id in its range.
func RandomIDAtDistance(localID []byte, d int) ([]byte, error) {
	bitLength := len(localID) * 8
	if d < 0 || d > bitLength {
		return nil, errors.Errorf("kademliatable: distance %d out of range [0, %d]", d, bitLength)
	}

	if d == 0 {
		return append([]byte(nil), localID...), nil
	}

	id, err := GenerateID(len(localID))
	if err != nil {
		return nil, err
	}

	// The first differing bit, counted from the most significant bit.
	bit := bitLength - d
	byteIndex, bitIndex := bit/8, bit%8

	copy(id[:byteIndex], localID[:byteIndex])

	keep := byte(0xff) << (8 - bitIndex) // bits shared with localID
	flip := byte(0x80) >> bitIndex       // the first differing bit
	id[byteIndex] = localID[byteIndex]&keep | (^localID[byteIndex])&flip | id[byteIndex]&^(keep|flip)

	return id, nil
}
