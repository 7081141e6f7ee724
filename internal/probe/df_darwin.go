//go:build darwin

package probe

import "syscall"

// setDontFragment sets the Don't Fragment semantics on a raw socket.
// On macOS/BSD this uses IP_DONTFRAG (28) and IPV6_DONTFRAG (62).
func setDontFragment(fd uintptr, ipv6 bool) error {
	const (
		ipDontFrag   = 28 // IP_DONTFRAG
		ipv6DontFrag = 62 // IPV6_DONTFRAG
	)
	if ipv6 {
		return syscall.SetsockoptInt(int(fd), syscall.IPPROTO_IPV6, ipv6DontFrag, 1)
	}
	return syscall.SetsockoptInt(int(fd), syscall.IPPROTO_IP, ipDontFrag, 1)
}
