//go:build !linux

package probe

import (
	"fmt"
	"net"
)

// LinkMTU determines the MTU of the interface that routes toward the
// target. Without netlink, a connected UDP socket reveals the local
// source address the kernel would pick; the interface owning that
// address is the outgoing one. No packet is sent by the dial.
func LinkMTU(target net.IP) (int, error) {
	conn, err := net.Dial("udp", net.JoinHostPort(target.String(), "9"))
	if err != nil {
		return 0, fmt.Errorf("route lookup failed: %w", err)
	}
	defer conn.Close()

	local := conn.LocalAddr().(*net.UDPAddr).IP

	ifaces, err := net.Interfaces()
	if err != nil {
		return 0, err
	}
	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			if ipNet.IP.Equal(local) {
				if iface.MTU <= 0 {
					return 0, fmt.Errorf("interface %s reports no MTU", iface.Name)
				}
				return iface.MTU, nil
			}
		}
	}

	return 0, fmt.Errorf("no interface owns source address %s", local)
}
