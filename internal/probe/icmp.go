package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"

	"github.com/hervehildenbrand/gpmtud/pkg/pmtu"
)

// Config holds probe issuer configuration.
type Config struct {
	// Timeout is the per-probe reply deadline. There is no global
	// search deadline; a slow path just makes the run take longer.
	Timeout time.Duration

	// Overhead is subtracted from the candidate packet size to obtain
	// the echo payload size (IP header + ICMP echo header bytes).
	Overhead int
}

// DefaultConfig returns the default probe configuration. Overhead is
// left zero; it comes from the bounds resolver.
func DefaultConfig() *Config {
	return &Config{
		Timeout: 2 * time.Second,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return errors.New("probe timeout must be positive")
	}
	if c.Overhead < 0 {
		return errors.New("overhead must not be negative")
	}
	return nil
}

// ICMP issues ICMP echo probes of exact total packet sizes toward a
// single target. Each probe opens its own raw socket so concurrent
// probes never consume each other's replies.
type ICMP struct {
	target   net.IP
	timeout  time.Duration
	overhead int
	id       int
	seq      uint32
}

// NewICMP creates a probe issuer for the target.
func NewICMP(target net.IP, cfg *Config) (*ICMP, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid probe config: %w", err)
	}
	if target == nil {
		return nil, errors.New("target IP is required")
	}

	p := &ICMP{
		target:   target,
		timeout:  cfg.Timeout,
		overhead: cfg.Overhead,
		id:       os.Getpid() & 0xffff,
	}

	// A missing probe facility is a fatal environment error; surface it
	// here rather than as a run where every probe silently fails.
	conn, err := p.open()
	if err != nil {
		return nil, err
	}
	conn.Close()

	return p, nil
}

// Probe sends exactly one echo request whose total IP packet size is
// size bytes and waits for a matching reply. Success means exactly one
// reply within the timeout; anything else, including Fragmentation
// Needed and Packet Too Big errors, is a failure. No retries happen at
// this layer.
func (p *ICMP) Probe(ctx context.Context, size int) pmtu.Probe {
	result := pmtu.Probe{
		Size:    size,
		Payload: size - p.overhead,
		Outcome: pmtu.OutcomeFailure,
	}
	if result.Payload < 0 {
		return result
	}

	conn, err := p.open()
	if err != nil {
		return result
	}
	defer conn.Close()

	seq := int(atomic.AddUint32(&p.seq, 1) & 0xffff)
	msg := p.buildEchoRequest(seq, result.Payload)
	wire, err := msg.Marshal(nil)
	if err != nil {
		return result
	}

	start := time.Now()
	if _, err := conn.WriteTo(wire, &net.IPAddr{IP: p.target}); err != nil {
		return result
	}

	deadline := start.Add(p.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		return result
	}

	p.awaitReply(conn, seq, start, &result)
	return result
}

// open creates the raw ICMP socket for one probe and sets the Don't
// Fragment semantics on it.
func (p *ICMP) open() (*net.IPConn, error) {
	c, err := net.ListenPacket(ICMPNetwork(p.target), ListenAddress(p.target))
	if err != nil {
		return nil, fmt.Errorf("failed to open ICMP socket: %w (try running with sudo)", err)
	}
	conn, ok := c.(*net.IPConn)
	if !ok {
		c.Close()
		return nil, fmt.Errorf("unexpected connection type %T", c)
	}

	raw, err := conn.SyscallConn()
	if err != nil {
		conn.Close()
		return nil, err
	}
	var sockErr error
	if err := raw.Control(func(fd uintptr) {
		sockErr = setDontFragment(fd, IsIPv6(p.target))
	}); err != nil {
		conn.Close()
		return nil, err
	}
	if sockErr != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to set don't-fragment: %w", sockErr)
	}

	return conn, nil
}

// buildEchoRequest creates an echo request with a patterned payload of
// the given length.
func (p *ICMP) buildEchoRequest(seq, payload int) *icmp.Message {
	var msgType icmp.Type
	if IsIPv6(p.target) {
		msgType = ipv6.ICMPTypeEchoRequest
	} else {
		msgType = ipv4.ICMPTypeEcho
	}

	data := make([]byte, payload)
	for i := range data {
		data[i] = byte('a') + byte(i%26)
	}

	return &icmp.Message{
		Type: msgType,
		Code: 0,
		Body: &icmp.Echo{
			ID:   p.id,
			Seq:  seq,
			Data: data,
		},
	}
}

// awaitReply reads from the raw socket until a packet matching this
// probe arrives or the deadline passes. Raw ICMP sockets see all ICMP
// traffic on the host, so identifier and sequence matching is required.
func (p *ICMP) awaitReply(conn *net.IPConn, seq int, start time.Time, result *pmtu.Probe) {
	proto := ICMPProtocolNum(p.target)
	hdrSize := IPHeaderSize(p.target)
	buf := make([]byte, 65536)

	for {
		n, _, err := conn.ReadFrom(buf)
		if err != nil {
			return // timeout or socket error: failure
		}

		rm, err := icmp.ParseMessage(proto, buf[:n])
		if err != nil {
			continue // malformed packet, keep waiting
		}

		switch body := rm.Body.(type) {
		case *icmp.Echo:
			if p.isEchoReply(rm.Type) && body.ID == p.id && body.Seq == seq {
				result.Outcome = pmtu.OutcomeSuccess
				result.RTT = time.Since(start)
				return
			}

		case *icmp.DstUnreach:
			// IPv4 Fragmentation Needed referencing our probe. The
			// next-hop MTU is informational; the outcome stays failure.
			if rm.Type == ipv4.ICMPTypeDestinationUnreachable && rm.Code == 4 &&
				matchesEchoID(body.Data, hdrSize, p.id) {
				if mtu, ok := ParseNextHopMTU(buf[:n]); ok {
					result.ReportedMTU = mtu
				}
				return
			}

		case *icmp.PacketTooBig:
			if matchesEchoID(body.Data, hdrSize, p.id) {
				result.ReportedMTU = body.MTU
				return
			}
		}
	}
}

// isEchoReply checks the reply type for the target's IP version.
func (p *ICMP) isEchoReply(msgType icmp.Type) bool {
	if IsIPv6(p.target) {
		return msgType == ipv6.ICMPTypeEchoReply
	}
	return msgType == ipv4.ICMPTypeEchoReply
}
