package probe

import (
	"errors"
	"fmt"
	"net"

	"github.com/hervehildenbrand/gpmtud/pkg/pmtu"
)

// ResolveTarget resolves a hostname or IP literal to an address of the
// requested family. The family has already been decided by the bounds
// resolver, so a literal of the wrong family is an error rather than a
// silent re-classification.
func ResolveTarget(target string, family pmtu.Family) (net.IP, error) {
	if ip := net.ParseIP(target); ip != nil {
		if family == pmtu.FamilyIPv6 && ip.To4() != nil {
			return nil, fmt.Errorf("%s is not an IPv6 address", target)
		}
		if family == pmtu.FamilyIPv4 && ip.To4() == nil {
			return nil, fmt.Errorf("%s is not an IPv4 address", target)
		}
		return ip, nil
	}

	ips, err := net.LookupIP(target)
	if err != nil {
		return nil, err
	}

	for _, ip := range ips {
		if family == pmtu.FamilyIPv6 && ip.To4() == nil {
			return ip, nil
		}
		if family == pmtu.FamilyIPv4 && ip.To4() != nil {
			return ip, nil
		}
	}

	return nil, errors.New("no " + string(family) + " address found for hostname")
}
