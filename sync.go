package kademliatable

import (
	"iter"
	"slices"
	"sync"
)

// SyncTable is a Table guarded by a read-write mutex. Mutations take the write
// lock; Has, Get and the closest queries only take the read lock, since they
// never reorder buckets.
//
// Event listeners are invoked while the lock is held and must not call back
// into the SyncTable synchronously.
type SyncTable[P any] struct {
	mutex sync.RWMutex
	table *Table[P]
}

// NewSyncTable creates a Table and wraps it in a SyncTable.
func NewSyncTable[P any](localID []byte, options Options[P]) (*SyncTable[P], error) {
	table, err := NewTable(localID, options)
	if err != nil {
		return nil, err
	}

	return &SyncTable[P]{table: table}, nil
}

// LocalID returns the local node id.
func (s *SyncTable[P]) LocalID() []byte {
	return s.table.LocalID()
}

func (s *SyncTable[P]) BucketSize() int {
	return s.table.BucketSize()
}

func (s *SyncTable[P]) BucketCount() int {
	return s.table.BucketCount()
}

func (s *SyncTable[P]) BucketIndex(id []byte) (int, error) {
	return s.table.BucketIndex(id)
}

// Bucket returns a copy of the active members and replacement candidates of
// the bucket at index i.
func (s *SyncTable[P]) Bucket(i int) (items []P, replacements []P) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.table.Bucket(i)
}

func (s *SyncTable[P]) Add(peer P) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.table.Add(peer)
}

func (s *SyncTable[P]) Has(id []byte) (bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.table.Has(id)
}

func (s *SyncTable[P]) Get(id []byte) (P, bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.table.Get(id)
}

func (s *SyncTable[P]) Update(peer P) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.table.Update(peer)
}

func (s *SyncTable[P]) Remove(id []byte, force bool) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.table.Remove(id, force)
}

func (s *SyncTable[P]) MarkSuccess(id []byte) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.table.MarkSuccess(id)
}

func (s *SyncTable[P]) MarkError(id []byte) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.table.MarkError(id)
}

func (s *SyncTable[P]) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.table.Clear()
}

func (s *SyncTable[P]) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.table.Len()
}

func (s *SyncTable[P]) Peers() []P {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.table.Peers()
}

func (s *SyncTable[P]) ListClosest(target []byte, limit int) ([]P, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.table.ListClosest(target, limit)
}

// IterateClosest returns a sequence over a snapshot of the table taken under
// the read lock, so ranging over it does not block writers.
func (s *SyncTable[P]) IterateClosest(target []byte) (iter.Seq[P], error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	seq, err := s.table.IterateClosest(target)
	if err != nil {
		return nil, err
	}

	return slices.Values(slices.Collect(seq)), nil
}
