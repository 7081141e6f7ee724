package probe

// ParseNextHopMTU extracts the next-hop MTU from a raw ICMPv4
// Destination Unreachable (Fragmentation Needed) message.
//
// Message structure for Type 3, Code 4 (RFC 1191):
//   - Type (1 byte): 3
//   - Code (1 byte): 4
//   - Checksum (2 bytes)
//   - unused (2 bytes)
//   - Next-Hop MTU (2 bytes, big-endian)
//   - Original IP header + first 8 bytes of original datagram
//
// Returns the MTU and true on success. A zero MTU field means the
// router predates RFC 1191 and reports nothing useful.
func ParseNextHopMTU(data []byte) (int, bool) {
	if len(data) < 8 {
		return 0, false
	}
	if data[0] != 3 || data[1] != 4 {
		return 0, false
	}

	mtu := int(data[6])<<8 | int(data[7])
	if mtu == 0 {
		return 0, false
	}
	return mtu, true
}

// matchesEchoID reports whether the quoted original datagram in an ICMP
// error body belongs to an echo request with the given identifier. The
// body data starts at the original IP header; the echo identifier sits
// 4 bytes into the quoted ICMP header.
func matchesEchoID(data []byte, ipHeaderSize, id int) bool {
	if len(data) < ipHeaderSize+8 {
		return false
	}
	origID := int(data[ipHeaderSize+4])<<8 | int(data[ipHeaderSize+5])
	return origID == id
}
