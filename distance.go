package kademliatable

import (
	"cmp"
	"math/bits"
	"slices"
)

// Distance returns the XOR bit distance between a and b: the number of bit
// positions from the first differing bit (counted from the most significant bit
// of a[0]) to the end of the identifier. Identical identifiers have distance 0,
// identifiers differing in the very first bit have distance len(a)*8.
//
// The result doubles as the bucket index of b in a table owned by a.
// Distance panics if a and b differ in length.
func Distance(a, b []byte) int {
	if len(a) != len(b) {
		panic(idLengthError(len(b), len(a)))
	}

	for i := range a {
		if x := a[i] ^ b[i]; x != 0 {
			return 8*len(a) - (i*8 + bits.LeadingZeros8(x))
		}
	}

	return 0
}

// CompareDistance returns a comparator ordering identifiers by their distance
// to target. Identifiers at equal distance compare as 0, so a stable sort keeps
// their input order.
func CompareDistance(target []byte) func(a, b []byte) int {
	return func(a, b []byte) int {
		return cmp.Compare(Distance(target, a), Distance(target, b))
	}
}

// SortByDistance stable-sorts peers in place by the distance of their
// identifier to target.
func SortByDistance[P any](target []byte, peers []P, getID func(P) []byte) {
	compare := CompareDistance(target)

	slices.SortStableFunc(peers, func(a, b P) int {
		return compare(getID(a), getID(b))
	})
}
