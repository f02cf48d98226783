package kademliatable

import (
	"bytes"
	"net/netip"
)

// Contact is a ready-made peer type. A Table[Contact] needs no GetID accessor.
type Contact struct {
	ID       []byte         // The node id.
	AddrPort netip.AddrPort // The address and port of the node.
	Metadata map[string]any // Optional satellite data to include with the Contact.
}

// ContactID returns the id of c.
func ContactID(c Contact) []byte {
	return c.ID
}

// Equal reports whether a and b have the same id and address. Metadata is not compared.
func (a Contact) Equal(b Contact) bool {
	return bytes.Equal(a.ID, b.ID) && CompareAddrPorts(a.AddrPort, b.AddrPort)
}

// CompareAddrPorts compares two netip.AddrPorts.
// It will return true if the two AddrPorts are equal, false otherwise.
// IPv4-mapped IPv6 addresses are equal to their IPv4 form.
func CompareAddrPorts(a, b netip.AddrPort) bool {
	return a.Addr().Unmap() == b.Addr().Unmap() && a.Port() == b.Port()
}
