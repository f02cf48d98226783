package kademliatable

// Kademlia DHT routing table with per-distance buckets and replacement caches.
//
// The table owns one bucket per possible XOR distance from the local node id.
// Each bucket keeps a bounded list of active peers, ordered from the oldest
// seen to the most recently confirmed live, and a bounded replacement cache of
// candidates seen while the active list was full. Peers are evicted after a
// configurable number of consecutive failed probes, and the oldest replacement
// candidate is promoted into the freed slot.
//
// The table is generic over the peer type. The peer payload is opaque; only
// its identifier, extracted via Options.GetID, is interpreted.
//
//
// The MIT License (MIT)
//
// Copyright (c) 2024 visionsofparadise
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

import (
	"bytes"
	"encoding/hex"
	"slices"

	"github.com/attilabuti/eventemitter/v2"
	"github.com/sirupsen/logrus"
)

const (
	DefaultBucketSize = 20
	DefaultErrorLimit = 3
)

// Table is not safe for concurrent use. Use SyncTable, or serialize access to
// a Table in the caller.
type Table[P any] struct {
	id         []byte                // The local node ID.
	size       int                   // Capacity of both lists of every bucket.
	errorLimit int                   // Consecutive failures before a peer is evicted.
	getID      func(P) []byte        // Extracts the identifier of a peer.
	compareFn  func(P, P) int        // Optional admission ranking for full buckets.
	buckets    []bucket[P]           // One bucket per distance, index 0 stays empty.
	emitter    *eventemitter.Emitter // Optional event sink.
	log        logrus.FieldLogger
}

type Options[P any] struct {
	// The number of peers a bucket holds as active members, and separately as
	// replacement candidates. (Default: 20)
	BucketSize int

	// The number of consecutive MarkError calls after which an active peer is
	// evicted. (Default: 3)
	ErrorLimit int

	// Returns the identifier of a peer. Required unless the peer type is Contact.
	GetID func(P) []byte

	// An optional ranking used when both lists of a bucket are full. A newcomer
	// for which Compare(newcomer, candidate) < 0 displaces the lowest ranked
	// replacement candidate. When nil, the newcomer is dropped.
	Compare func(a, b P) int

	// An optional emitter for table events, see the package documentation.
	Emitter *eventemitter.Emitter

	// Logger for eviction and promotion. (Default: logrus.StandardLogger())
	Logger logrus.FieldLogger
}

// NewTable creates a routing table owned by localID. If localID is empty a
// random id of 20 bytes is generated.
func NewTable[P any](localID []byte, options Options[P]) (*Table[P], error) {
	options, err := setDefaultsOptions(options)
	if err != nil {
		return nil, err
	}

	if len(localID) == 0 {
		if localID, err = GenerateID(DefaultIDLength); err != nil {
			return nil, err
		}
	}

	return &Table[P]{
		id:         bytes.Clone(localID),
		size:       options.BucketSize,
		errorLimit: options.ErrorLimit,
		getID:      options.GetID,
		compareFn:  options.Compare,
		buckets:    make([]bucket[P], len(localID)*8+1),
		emitter:    options.Emitter,
		log:        options.Logger,
	}, nil
}

func setDefaultsOptions[P any](options Options[P]) (Options[P], error) {
	if options.GetID == nil {
		getID, ok := any(ContactID).(func(P) []byte)
		if !ok {
			return Options[P]{}, ErrNoGetID
		}

		options.GetID = getID
	}

	if options.BucketSize < 1 {
		options.BucketSize = DefaultBucketSize
	}

	if options.ErrorLimit < 1 {
		options.ErrorLimit = DefaultErrorLimit
	}

	if options.Logger == nil {
		options.Logger = logrus.StandardLogger()
	}

	return options, nil
}

// LocalID returns a copy of the local node id.
func (t *Table[P]) LocalID() []byte {
	return bytes.Clone(t.id)
}

// BucketSize returns the capacity of each bucket list.
func (t *Table[P]) BucketSize() int {
	return t.size
}

// BucketCount returns the number of buckets, one per possible distance.
func (t *Table[P]) BucketCount() int {
	return len(t.buckets)
}

// BucketIndex returns the index of the bucket id belongs to, which is its
// distance from the local id.
func (t *Table[P]) BucketIndex(id []byte) (int, error) {
	if len(id) != len(t.id) {
		return 0, idLengthError(len(id), len(t.id))
	}

	return Distance(t.id, id), nil
}

// Add stores peer in its bucket. It returns true only if the peer became an
// active member. A peer that is already known, either as a member or as a
// replacement candidate, is left untouched and false is returned. When the
// active list is full the peer is queued as a replacement candidate, which also
// returns false.
func (t *Table[P]) Add(peer P) (bool, error) {
	id := t.getID(peer)

	i, err := t.BucketIndex(id)
	if err != nil {
		return false, err
	}

	if i == 0 {
		return false, ErrLocalID
	}

	b := &t.buckets[i]
	if b.contains(id) {
		return false, nil
	}

	if len(b.items) < t.size {
		b.items = append(b.items, newEntry(peer, id))
		t.emit(EventAdded, peer)

		return true, nil
	}

	if len(b.replacements) < t.size {
		b.replacements = append(b.replacements, newEntry(peer, id))
		t.logger(i, id).Debug("bucket full, stored replacement candidate")
		t.emit(EventReplacement, peer)

		return false, nil
	}

	if t.compareFn == nil {
		return false, nil
	}

	// Both lists are full; let the newcomer compete with the weakest candidate.
	if w := b.worstReplacement(t.compareFn); t.compareFn(peer, b.replacements[w].peer) < 0 {
		b.displace(w, newEntry(peer, id))
		t.logger(i, id).Debug("displaced lower ranked replacement candidate")
		t.emit(EventReplacement, peer)
	}

	return false, nil
}

// Has returns true if a peer with the given id is an active member.
func (t *Table[P]) Has(id []byte) (bool, error) {
	i, err := t.BucketIndex(id)
	if err != nil {
		return false, err
	}

	return t.buckets[i].items.indexOf(id) >= 0, nil
}

// Get returns the active member with the given id. Bucket order is not changed.
func (t *Table[P]) Get(id []byte) (P, bool, error) {
	var peer P

	i, err := t.BucketIndex(id)
	if err != nil {
		return peer, false, err
	}

	items := t.buckets[i].items
	if j := items.indexOf(id); j >= 0 {
		return items[j].peer, true, nil
	}

	return peer, false, nil
}

// Update replaces the payload of the member or replacement candidate with the
// same id as peer. The error count and position are preserved. Returns false
// if no such peer is known; Update never adds a peer.
func (t *Table[P]) Update(peer P) (bool, error) {
	id := t.getID(peer)

	i, err := t.BucketIndex(id)
	if err != nil {
		return false, err
	}

	b := &t.buckets[i]

	e := b.items
	j := e.indexOf(id)
	if j < 0 {
		e = b.replacements
		if j = e.indexOf(id); j < 0 {
			return false, nil
		}
	}

	old := e[j].peer
	e[j].peer = peer
	t.emit(EventUpdated, old, peer)

	return true, nil
}

// Remove deletes the peer with the given id. A replacement candidate is always
// removed. An active member is only removed if a replacement candidate can take
// its slot, or if force is set; otherwise Remove returns false and the member
// stays.
func (t *Table[P]) Remove(id []byte, force bool) (bool, error) {
	i, err := t.BucketIndex(id)
	if err != nil {
		return false, err
	}

	b := &t.buckets[i]

	if j := b.replacements.indexOf(id); j >= 0 {
		b.replacements = slices.Delete(b.replacements, j, j+1)
		return true, nil
	}

	j := b.items.indexOf(id)
	if j < 0 {
		return false, nil
	}

	if len(b.replacements) == 0 && !force {
		return false, nil
	}

	t.vacate(i, j, false)

	return true, nil
}

// MarkSuccess resets the error count of the active member with the given id and
// moves it to the most recently live position of its bucket.
func (t *Table[P]) MarkSuccess(id []byte) (bool, error) {
	i, err := t.BucketIndex(id)
	if err != nil {
		return false, err
	}

	b := &t.buckets[i]

	j := b.items.indexOf(id)
	if j < 0 {
		return false, nil
	}

	b.items[j].errorCount = 0
	b.touch(j)

	return true, nil
}

// MarkError records a failed probe of the active member with the given id and
// moves it to the most recently seen position of its bucket. Once the member
// reaches the error limit it is evicted: the oldest replacement candidate takes
// its slot, or the slot is freed.
func (t *Table[P]) MarkError(id []byte) (bool, error) {
	i, err := t.BucketIndex(id)
	if err != nil {
		return false, err
	}

	b := &t.buckets[i]

	j := b.items.indexOf(id)
	if j < 0 {
		return false, nil
	}

	e := b.items[j]
	e.errorCount++

	if e.errorCount < t.errorLimit {
		b.touch(j)
		return true, nil
	}

	t.logger(i, id).WithField("errors", e.errorCount).Debug("error limit reached, evicting peer")
	t.vacate(i, j, true)

	return true, nil
}

// Clear removes all members and replacement candidates.
func (t *Table[P]) Clear() {
	for i := range t.buckets {
		t.buckets[i] = bucket[P]{}
	}
}

// Len returns the number of active members in the table.
func (t *Table[P]) Len() int {
	count := 0
	for i := range t.buckets {
		count += len(t.buckets[i].items)
	}

	return count
}

// Peers returns all active members, bucket by bucket, oldest first within a bucket.
func (t *Table[P]) Peers() []P {
	peers := make([]P, 0, t.Len())
	for i := range t.buckets {
		for _, e := range t.buckets[i].items {
			peers = append(peers, e.peer)
		}
	}

	return peers
}

// Bucket returns a copy of the active members and replacement candidates of
// the bucket at index i.
func (t *Table[P]) Bucket(i int) (items []P, replacements []P) {
	if i < 0 || i >= len(t.buckets) {
		return nil, nil
	}

	return t.buckets[i].items.peers(), t.buckets[i].replacements.peers()
}

// vacate emits removed, then evicted if set, then added for the promoted
// replacement candidate.
func (t *Table[P]) vacate(i, j int, evicted bool) {
	removed, promoted := t.buckets[i].vacate(j)
	t.emit(EventRemoved, removed.peer)

	if evicted {
		t.emit(EventEvicted, removed.peer)
	}

	if promoted != nil {
		t.logger(i, promoted.id).Debug("promoted replacement candidate")
		t.emit(EventAdded, promoted.peer)
	}
}

// emit delivers synchronously, so listeners observe events in mutation order
// and run before the mutating call returns.
func (t *Table[P]) emit(event string, args ...any) {
	if t.emitter != nil {
		// ErrEventNotExists only means nobody listens to this event.
		_ = t.emitter.EmitSync(event, args...)
	}
}

func (t *Table[P]) logger(i int, id []byte) logrus.FieldLogger {
	return t.log.WithFields(logrus.Fields{
		"bucket": i,
		"id":     hex.EncodeToString(id),
	})
}
