//go:build linux

package probe

import "syscall"

// setDontFragment enables path-MTU-discovery semantics on a raw socket.
// On Linux this uses IP_MTU_DISCOVER / IPV6_MTU_DISCOVER with
// PMTUDISC_DO, which sets DF on IPv4 and forbids local fragmentation
// on IPv6.
func setDontFragment(fd uintptr, ipv6 bool) error {
	const (
		ipMTUDiscover   = 10 // IP_MTU_DISCOVER
		ipv6MTUDiscover = 23 // IPV6_MTU_DISCOVER
		pmtuDiscDo      = 2  // IP_PMTUDISC_DO / IPV6_PMTUDISC_DO
	)
	if ipv6 {
		return syscall.SetsockoptInt(int(fd), syscall.IPPROTO_IPV6, ipv6MTUDiscover, pmtuDiscDo)
	}
	return syscall.SetsockoptInt(int(fd), syscall.IPPROTO_IP, ipMTUDiscover, pmtuDiscDo)
}
