package kademliatable

import "iter"

// ListClosest returns up to limit active members, starting with the bucket
// target belongs to and widening to the buckets at distance +1, -1, +2, -2 and
// so on. Within a bucket members are returned in bucket order, oldest first;
// they are not re-sorted by their exact distance to target.
//
// Fewer than limit peers are returned when the table does not hold enough.
func (t *Table[P]) ListClosest(target []byte, limit int) ([]P, error) {
	seq, err := t.IterateClosest(target)
	if err != nil || limit < 1 {
		return nil, err
	}

	peers := make([]P, 0, min(limit, t.size))
	for peer := range seq {
		peers = append(peers, peer)
		if len(peers) == limit {
			break
		}
	}

	return peers, nil
}

// IterateClosest returns a sequence over every active member in the order
// ListClosest uses. The sequence reads the table lazily, so it must not be
// ranged over concurrently with mutations. Each range starts over.
func (t *Table[P]) IterateClosest(target []byte) (iter.Seq[P], error) {
	home, err := t.BucketIndex(target)
	if err != nil {
		return nil, err
	}

	return func(yield func(P) bool) {
		for i := range bucketOrder(home, len(t.buckets)) {
			for _, e := range t.buckets[i].items {
				if !yield(e.peer) {
					return
				}
			}
		}
	}, nil
}

// bucketOrder yields home, then home+1, home-1, home+2, home-2, ... skipping
// indexes outside [0, count). Every index is yielded exactly once.
func bucketOrder(home, count int) iter.Seq[int] {
	return func(yield func(int) bool) {
		if !yield(home) {
			return
		}

		for offset := 1; home+offset < count || home-offset >= 0; offset++ {
			if i := home + offset; i < count && !yield(i) {
				return
			}

			if i := home - offset; i >= 0 && !yield(i) {
				return
			}
		}
	}
}
