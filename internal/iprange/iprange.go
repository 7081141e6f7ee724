// Package iprange parses and enumerates IPv4 and IPv6 address ranges.
//
// A range is either a network in CIDR notation or a start and end
// address separated by a range indication (whitespace, "to", two or
// more periods, commas, semicolons, dashes, or arrows). A single
// address is a range with identical start and end addresses.
package iprange

import (
	"fmt"
	"net/netip"
	"regexp"
	"strings"
)

// separatorRe matches the separators accepted between start and end
// addresses of a range.
var separatorRe = regexp.MustCompile(`\s*(?:\s+(?:to\s)?|,?\.{2,},?|-+>?|[,;→⇒—…])\s*`)

// Range is a parsed IP address range.
type Range struct {
	start  netip.Addr // zone stripped, re-applied on enumeration
	end    netip.Addr
	prefix netip.Prefix
	isCIDR bool
	zone   string
}

// IsCIDR reports whether the range was given in CIDR notation.
func (r *Range) IsCIDR() bool {
	return r.isCIDR
}

// String returns the canonical form of the range.
func (r *Range) String() string {
	if r.isCIDR {
		if r.zone != "" {
			return r.prefix.Addr().String() + "%" + r.zone + "/" + fmt.Sprint(r.prefix.Bits())
		}
		return r.prefix.String()
	}
	return r.start.WithZone(r.zone).String() + "-" + r.end.WithZone(r.zone).String()
}

// Parse parses an IP address range. CIDR notation is detected by the
// presence of a slash; anything else is treated as a start and end
// address pair (or a single address). A range whose start address is
// greater than its end address is valid and empty.
func Parse(s string) (*Range, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("cannot parse range %q: found no addresses", s)
	}
	if strings.Contains(s, "/") {
		return parseCIDR(s)
	}
	return parseStartEnd(s)
}

// parseCIDR parses a network in CIDR notation. Host bits below the
// prefix are accepted and masked off. An IPv6 zone before the slash is
// preserved and re-applied to every enumerated address.
func parseCIDR(s string) (*Range, error) {
	zone := ""
	if idxPerc := strings.Index(s, "%"); idxPerc > -1 {
		idxSlash := strings.LastIndex(s, "/")
		if idxSlash > idxPerc {
			zone = s[idxPerc+1 : idxSlash]
			s = s[:idxPerc] + s[idxSlash:]
		}
	}

	prefix, err := netip.ParsePrefix(s)
	if err != nil {
		return nil, fmt.Errorf("cannot parse CIDR %q: %w", s, err)
	}
	prefix = prefix.Masked()

	return &Range{
		start:  prefix.Addr(),
		end:    lastAddr(prefix),
		prefix: prefix,
		isCIDR: true,
		zone:   zone,
	}, nil
}

// parseStartEnd parses a start and end address pair.
func parseStartEnd(s string) (*Range, error) {
	parts := separatorRe.Split(s, -1)
	addrs := parts[:0]
	for _, p := range parts {
		if p != "" {
			addrs = append(addrs, p)
		}
	}

	switch {
	case len(addrs) < 1:
		return nil, fmt.Errorf("cannot parse range %q: found no addresses", s)
	case len(addrs) > 2:
		return nil, fmt.Errorf("cannot parse range %q: found more than two addresses", s)
	case len(addrs) == 1:
		addrs = append(addrs, addrs[0])
	}

	start, err := netip.ParseAddr(addrs[0])
	if err != nil {
		return nil, fmt.Errorf("cannot parse address %q: %w", addrs[0], err)
	}
	end, err := netip.ParseAddr(addrs[1])
	if err != nil {
		return nil, fmt.Errorf("cannot parse address %q: %w", addrs[1], err)
	}
	if start.Is4() != end.Is4() {
		return nil, fmt.Errorf("cannot parse range %q: start and end addresses must be of the same IP version", s)
	}
	if start.Zone() != end.Zone() {
		return nil, fmt.Errorf("cannot parse range %q: start and end addresses must have the same zone", s)
	}

	zone := start.Zone()
	return &Range{
		start: start.WithZone(""),
		end:   end.WithZone(""),
		zone:  zone,
	}, nil
}

// Each calls fn for every address in the range, in ascending order,
// until the range is exhausted or fn returns false. With hostsOnly set,
// CIDR ranges omit the network number and directed broadcast address
// for IPv4 and the Subnet-Router anycast address for IPv6; prefixes
// with fewer than two host bits (IPv4 /31, /32 and IPv6 /127, /128)
// are enumerated in full. hostsOnly does not affect start-end ranges.
func (r *Range) Each(hostsOnly bool, fn func(netip.Addr) bool) {
	start, end := r.start, r.end
	if r.isCIDR && hostsOnly {
		bits := r.prefix.Addr().BitLen()
		switch {
		case r.prefix.Addr().Is4() && r.prefix.Bits() <= bits-2:
			start = start.Next()
			end = end.Prev()
		case !r.prefix.Addr().Is4() && r.prefix.Bits() <= bits-2:
			start = start.Next()
		}
	}

	for addr := start; addr.IsValid() && !end.Less(addr); addr = addr.Next() {
		if !fn(addr.WithZone(r.zone)) {
			return
		}
		if addr == end {
			return
		}
	}
}

// Count returns the number of addresses Each would yield.
func (r *Range) Count(hostsOnly bool) uint64 {
	var n uint64
	r.Each(hostsOnly, func(netip.Addr) bool {
		n++
		return true
	})
	return n
}

// lastAddr returns the highest address contained in the prefix.
func lastAddr(p netip.Prefix) netip.Addr {
	bytes := p.Masked().Addr().AsSlice()
	for i := p.Bits(); i < len(bytes)*8; i++ {
		bytes[i/8] |= 1 << (7 - i%8)
	}
	addr, _ := netip.AddrFromSlice(bytes)
	return addr
}
