/*
# Kademlia table

Package kademliatable implements the routing table of a Kademlia DHT: the
structure that ranks known peers by XOR distance from the local node id,
bounds how many peers are kept per distance, evicts peers that stop responding
and answers "closest peers to X" queries.

The table keeps one bucket per possible distance, so a table owned by an id of
L bytes has L*8+1 buckets. Bucket 0 is the local id itself and never holds a
peer. Every bucket has an active list and a replacement cache, each holding at
most Options.BucketSize peers. Peers that arrive while the active list is full
are queued in the replacement cache and promoted, oldest first, when an active
peer is removed or evicted.

The table does no network I/O and never decides when to probe a peer. A
liveness prober reports outcomes via MarkSuccess and MarkError; a lookup driver
seeds its FIND_NODE rounds with ListClosest and feeds discovered peers to Add.

Identifiers are compared as exact-length byte strings. Every identifier passed
to a table must have the length of its local id, otherwise ErrIDLength is
returned.

Table is not safe for concurrent use; SyncTable serializes access with a
read-write mutex.

Table events, emitted when Options.Emitter is set. Listeners are called
synchronously, in mutation order, before the mutating method returns:

	table.added
		peer P: The peer that became an active member, by Add or by promotion
		of a replacement candidate.

	table.replacement
		peer P: The peer that was queued as a replacement candidate.

	table.removed
		peer P: The active member that was removed from its bucket.

	table.updated
		old P: The peer that was stored prior to the update.
		new P: The peer that is now stored after the update.

	table.evicted
		peer P: The active member that reached the error limit. Emitted after
		"table.removed" and before "table.added" of the promoted replacement
		candidate.
*/
package kademliatable

const (
	EventAdded       = "table.added"
	EventReplacement = "table.replacement"
	EventRemoved     = "table.removed"
	EventUpdated     = "table.updated"
	EventEvicted     = "table.evicted"
)
