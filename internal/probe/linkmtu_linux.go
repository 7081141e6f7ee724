//go:build linux

package probe

import (
	"errors"
	"fmt"
	"net"

	"github.com/vishvananda/netlink"
)

// LinkMTU looks up the route toward the target via netlink and returns
// the configured MTU of the outgoing interface. Used as the default
// upper search bound; callers fall back to 1500 on any error.
func LinkMTU(target net.IP) (int, error) {
	routes, err := netlink.RouteGet(target)
	if err != nil {
		return 0, fmt.Errorf("route lookup failed: %w", err)
	}
	if len(routes) == 0 {
		return 0, errors.New("no route to target")
	}

	link, err := netlink.LinkByIndex(routes[0].LinkIndex)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve outgoing link: %w", err)
	}

	mtu := link.Attrs().MTU
	if mtu <= 0 {
		return 0, fmt.Errorf("link %s reports no MTU", link.Attrs().Name)
	}
	return mtu, nil
}
