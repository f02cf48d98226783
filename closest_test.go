package kademliatable

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBucketOrder(t *testing.T) {
	tests := []struct {
		home, count int
		expected    []int
	}{
		{2, 5, []int{2, 3, 1, 4, 0}},
		{0, 4, []int{0, 1, 2, 3}},
		{3, 4, []int{3, 2, 1, 0}},
		{1, 5, []int{1, 2, 0, 3, 4}},
		{0, 1, []int{0}},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, slices.Collect(bucketOrder(test.home, test.count)))
	}
}

// The queried peer is returned first when it is the oldest member of its bucket.
func TestListClosestOutOf1000(t *testing.T) {
	localID, _ := GenerateID(8)
	table, err := NewTable(localID, Options[Contact]{})
	if !assert.NoError(t, err) {
		return
	}

	target, _ := GenerateID(8)
	table.Add(Contact{ID: target})

	for i := 0; i < 1000; i++ {
		id, _ := GenerateID(8)
		table.Add(Contact{ID: id})
	}

	closest, err := table.ListClosest(target, 20)
	if assert.NoError(t, err) {
		assert.Equal(t, target, closest[0].ID)
		assert.Len(t, closest, min(20, table.Len()))
	}
}

func TestListClosestSparse(t *testing.T) {
	table, _ := NewTable(make([]byte, 2), Options[Contact]{})

	table.Add(Contact{ID: []byte{0x80, 0x00}})
	table.Add(Contact{ID: []byte{0x00, 0x01}})

	closest, err := table.ListClosest([]byte{0x00, 0x02}, 20)
	if assert.NoError(t, err) {
		assert.Equal(t, [][]byte{{0x00, 0x01}, {0x80, 0x00}}, ids(closest))
	}

	empty, _ := NewTable(make([]byte, 2), Options[Contact]{})
	closest, err = empty.ListClosest([]byte{0x00, 0x02}, 20)
	assert.NoError(t, err)
	assert.Empty(t, closest)
}

// Buckets are visited home, +1, -1, +2, -2, ... and each bucket oldest first.
func TestListClosestOrder(t *testing.T) {
	localID := make([]byte, 2)
	table, _ := NewTable(localID, Options[Contact]{})

	// Two contacts in every bucket from 2 to 16, one in bucket 1.
	for d := 1; d <= 16; d++ {
		for n := 0; n < min(2, int(1)<<(d-1)); n++ {
			v := uint16(1)<<(d-1) | uint16(n)
			table.Add(Contact{ID: []byte{byte(v >> 8), byte(v)}})
		}
	}
	assert.Equal(t, 31, table.Len())

	target, _ := RandomIDAtDistance(localID, 5)
	closest, err := table.ListClosest(target, table.Len())
	if !assert.NoError(t, err) {
		return
	}

	var expected [][]byte
	for i := range bucketOrder(5, table.BucketCount()) {
		items, _ := table.Bucket(i)
		expected = append(expected, ids(items)...)
	}

	assert.Equal(t, expected, ids(closest))
	assert.Equal(t, [][]byte{
		{0x00, 0x10}, {0x00, 0x11}, // Bucket 5.
		{0x00, 0x20}, {0x00, 0x21}, // Bucket 6.
		{0x00, 0x08}, {0x00, 0x09}, // Bucket 4.
	}, expected[:6])

	limited, _ := table.ListClosest(target, 3)
	assert.Equal(t, expected[:3], ids(limited))
}

func TestListClosestLimit(t *testing.T) {
	table, _ := NewTable(make([]byte, 2), Options[Contact]{})
	table.Add(Contact{ID: []byte{0x80, 0x00}})

	closest, err := table.ListClosest([]byte{0x80, 0x00}, 0)
	assert.NoError(t, err)
	assert.Empty(t, closest)

	closest, err = table.ListClosest([]byte{0x80, 0x00}, -1)
	assert.NoError(t, err)
	assert.Empty(t, closest)

	_, err = table.ListClosest([]byte{0x80}, 20)
	assert.ErrorIs(t, err, ErrIDLength)
}

func TestIterateClosest(t *testing.T) {
	table, _ := NewTable(make([]byte, 2), Options[Contact]{})
	for i := 0; i < 10; i++ {
		table.Add(Contact{ID: []byte{0x00, byte(i + 1)}})
	}

	seq, err := table.IterateClosest([]byte{0x00, 0x01})
	if !assert.NoError(t, err) {
		return
	}

	first := slices.Collect(seq)
	assert.Len(t, first, 10)

	// Every range starts over.
	assert.Equal(t, ids(first), ids(slices.Collect(seq)))

	// Breaking out early stops the walk.
	count := 0
	for range seq {
		count++
		if count == 3 {
			break
		}
	}
	assert.Equal(t, 3, count)

	_, err = table.IterateClosest([]byte{0x00})
	assert.ErrorIs(t, err, ErrIDLength)
}

func BenchmarkTableListClosest(b *testing.B) {
	table, ids := setupBenchmark()
	for _, id := range ids {
		table.Add(Contact{ID: id})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		table.ListClosest(ids[i%len(ids)], 20)
	}
}
