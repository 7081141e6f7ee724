package search

import (
	"fmt"
	"net"
	"strings"

	"github.com/hervehildenbrand/gpmtud/pkg/pmtu"
)

// Default bounds and overheads per address family.
const (
	// MinIPv4 is the minimum IPv4 datagram every host must accept (RFC 791).
	MinIPv4 = 68

	// MinIPv6 is the minimum IPv6 link MTU (RFC 8200).
	MinIPv6 = 1280

	// MaxPacket is the largest possible IP packet size.
	MaxPacket = 65535

	// FallbackMaxMTU is used when the outgoing interface MTU cannot be
	// determined.
	FallbackMaxMTU = 1500

	// OverheadIPv4 is 20 bytes IPv4 header plus 8 bytes ICMP echo header.
	OverheadIPv4 = 28

	// OverheadIPv6 is 40 bytes IPv6 header plus 8 bytes ICMPv6 echo header.
	OverheadIPv6 = 48
)

// Bounds brackets the candidate packet sizes for a search.
type Bounds struct {
	Min int
	Max int
}

// Validate checks the bounds invariants: 1 <= min <= max <= 65535.
func (b Bounds) Validate() error {
	if b.Min < 1 {
		return fmt.Errorf("minimum size %d must be a positive integer", b.Min)
	}
	if b.Max > MaxPacket {
		return fmt.Errorf("maximum size %d exceeds largest IP packet (%d)", b.Max, MaxPacket)
	}
	if b.Min > b.Max {
		return fmt.Errorf("minimum size %d exceeds maximum size %d", b.Min, b.Max)
	}
	return nil
}

// LinkMTUFunc looks up the MTU of the outgoing interface toward the
// target. Used for upper-bound auto-detection; any error degrades to
// FallbackMaxMTU.
type LinkMTUFunc func() (int, error)

// ResolveOptions carries explicit overrides into Resolve. Zero values
// select auto-detection or family defaults.
type ResolveOptions struct {
	Min      int
	Max      int
	Overhead int
	Family   pmtu.Family // "" infers the family from the target
	LinkMTU  LinkMTUFunc // nil skips auto-detection
}

// Resolved is the validated output of Resolve, handed unmutated into
// the chosen strategy.
type Resolved struct {
	Bounds   Bounds
	Overhead int
	Family   pmtu.Family
}

// InferFamily decides the address family for a target string. A
// parseable IP literal decides directly; otherwise a token that looks
// like an IPv6 address (hex digits and colons only) selects IPv6, and
// anything else is assumed to be an IPv4 hostname. This is a
// best-effort heuristic, not a DNS-aware classification: a hostname
// with only AAAA records is still treated as IPv4 here.
func InferFamily(target string) pmtu.Family {
	if ip := net.ParseIP(target); ip != nil {
		if ip.To4() == nil {
			return pmtu.FamilyIPv6
		}
		return pmtu.FamilyIPv4
	}
	if looksLikeIPv6(target) {
		return pmtu.FamilyIPv6
	}
	return pmtu.FamilyIPv4
}

// looksLikeIPv6 reports whether s has the shape of an IPv6 token:
// at least one colon and nothing but hex digits and colons.
func looksLikeIPv6(s string) bool {
	if !strings.Contains(s, ":") {
		return false
	}
	for _, r := range s {
		switch {
		case r == ':':
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// Resolve produces validated bounds, overhead, and address family for a
// target before any search runs. Validation failures are fatal; the
// resolver never repairs an invalid value. Only the upper bound
// degrades gracefully: if the outgoing interface MTU cannot be read,
// FallbackMaxMTU applies.
func Resolve(target string, opts ResolveOptions) (*Resolved, error) {
	family := opts.Family
	if family == "" {
		family = InferFamily(target)
	}

	overhead := opts.Overhead
	if overhead == 0 {
		if family == pmtu.FamilyIPv6 {
			overhead = OverheadIPv6
		} else {
			overhead = OverheadIPv4
		}
	}
	if overhead < 0 {
		return nil, fmt.Errorf("overhead %d must not be negative", overhead)
	}

	min := opts.Min
	if min == 0 {
		if family == pmtu.FamilyIPv6 {
			min = MinIPv6
		} else {
			min = MinIPv4
		}
	}

	max := opts.Max
	if max == 0 {
		max = FallbackMaxMTU
		if opts.LinkMTU != nil {
			if mtu, err := opts.LinkMTU(); err == nil && mtu > 0 {
				max = mtu
			}
		}
	}
	if max > MaxPacket {
		max = MaxPacket
	}

	b := Bounds{Min: min, Max: max}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if min <= overhead {
		return nil, fmt.Errorf("minimum size %d does not exceed protocol overhead %d", min, overhead)
	}

	return &Resolved{Bounds: b, Overhead: overhead, Family: family}, nil
}
