package kademliatable

import (
	"bytes"
	"slices"
)

// entry wraps a peer with its cached identifier and the number of consecutive
// failed probes since its last success.
type entry[P any] struct {
	peer       P
	id         []byte
	errorCount int
}

type entries[P any] []*entry[P]

// bucket holds the peers sharing one distance from the local id. Both lists are
// ordered oldest first; the tail of items is the most recently confirmed live.
type bucket[P any] struct {
	items        entries[P]
	replacements entries[P]
}

func newEntry[P any](peer P, id []byte) *entry[P] {
	return &entry[P]{
		peer: peer,
		id:   bytes.Clone(id),
	}
}

// Returns the index of the entry with the provided id if it exists, returns -1 otherwise.
func (e entries[P]) indexOf(id []byte) int {
	for i, v := range e {
		if bytes.Equal(v.id, id) {
			return i
		}
	}

	return -1
}

func (e entries[P]) peers() []P {
	peers := make([]P, len(e))
	for i, v := range e {
		peers[i] = v.peer
	}

	return peers
}

// contains reports whether id is either an active item or a replacement candidate.
func (b *bucket[P]) contains(id []byte) bool {
	return b.items.indexOf(id) >= 0 || b.replacements.indexOf(id) >= 0
}

// touch moves the item at i to the tail.
func (b *bucket[P]) touch(i int) {
	e := b.items[i]
	b.items = append(slices.Delete(b.items, i, i+1), e)
}

// vacate removes the item at i and promotes the oldest replacement candidate
// into items, if there is one.
func (b *bucket[P]) vacate(i int) (removed, promoted *entry[P]) {
	removed = b.items[i]
	b.items = slices.Delete(b.items, i, i+1)

	if len(b.replacements) == 0 {
		return removed, nil
	}

	promoted = b.replacements[0]
	promoted.errorCount = 0
	b.replacements = slices.Delete(b.replacements, 0, 1)
	b.items = append(b.items, promoted)

	return removed, promoted
}

// worstReplacement returns the index of the lowest ranked replacement candidate.
// Among equally ranked candidates the oldest one is chosen.
func (b *bucket[P]) worstReplacement(compare func(P, P) int) int {
	worst := 0
	for i := 1; i < len(b.replacements); i++ {
		if compare(b.replacements[i].peer, b.replacements[worst].peer) > 0 {
			worst = i
		}
	}

	return worst
}

// displace drops the replacement candidate at i and queues e as the newest one.
func (b *bucket[P]) displace(i int, e *entry[P]) {
	b.replacements = append(slices.Delete(b.replacements, i, i+1), e)
}
