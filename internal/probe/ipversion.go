// Package probe implements the ICMP echo probe issuer used as the
// search oracle: one echo request per call, Don't Fragment set, one
// boolean reachable/unreachable signal per probe.
package probe

import (
	"net"
)

// IsIPv6 returns true if the IP is an IPv6 address (not IPv4 or IPv4-mapped).
func IsIPv6(ip net.IP) bool {
	if ip == nil {
		return false
	}
	return ip.To4() == nil
}

// ICMPNetwork returns the raw network string for net.ListenPacket.
// Returns "ip4:icmp" for IPv4 or "ip6:ipv6-icmp" for IPv6.
func ICMPNetwork(ip net.IP) string {
	if IsIPv6(ip) {
		return "ip6:ipv6-icmp"
	}
	return "ip4:icmp"
}

// ICMPProtocolNum returns the protocol number for parsing ICMP messages.
// Returns 1 for IPv4 ICMP or 58 for IPv6 ICMPv6.
func ICMPProtocolNum(ip net.IP) int {
	if IsIPv6(ip) {
		return 58 // ICMPv6
	}
	return 1 // ICMPv4
}

// ListenAddress returns the wildcard listen address for the IP version.
func ListenAddress(ip net.IP) string {
	if IsIPv6(ip) {
		return "::"
	}
	return "0.0.0.0"
}

// IPHeaderSize returns the IP header size in bytes: 20 for IPv4, 40 for IPv6.
func IPHeaderSize(ip net.IP) int {
	if IsIPv6(ip) {
		return 40
	}
	return 20
}
