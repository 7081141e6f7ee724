package probe

import (
	"net"
	"testing"
	"time"

	"golang.org/x/net/icmp"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"valid", Config{Timeout: time.Second, Overhead: 28}, false},
		{"zero overhead allowed", Config{Timeout: time.Second}, false},
		{"zero timeout", Config{Overhead: 28}, true},
		{"negative overhead", Config{Timeout: time.Second, Overhead: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestICMP_PayloadComputation(t *testing.T) {
	// Requesting total size 1500 with overhead 28 must ask the ICMP
	// facility for a 1472-byte payload.
	tests := []struct {
		name     string
		size     int
		overhead int
		want     int
	}{
		{"ethernet ipv4", 1500, 28, 1472},
		{"ethernet ipv6", 1500, 48, 1452},
		{"minimum ipv4", 68, 28, 40},
		{"custom overhead", 1000, 36, 964},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &ICMP{
				target:   net.ParseIP("192.0.2.1"),
				overhead: tt.overhead,
				id:       0x1234,
			}
			msg := p.buildEchoRequest(1, tt.size-tt.overhead)
			echo, ok := msg.Body.(*icmp.Echo)
			if !ok {
				t.Fatalf("unexpected body type %T", msg.Body)
			}
			if got := len(echo.Data); got != tt.want {
				t.Errorf("payload = %d bytes, want %d", got, tt.want)
			}
		})
	}
}

func TestParseNextHopMTU(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want int
		ok   bool
	}{
		{
			name: "valid MTU 1400",
			data: []byte{3, 4, 0, 0, 0, 0, 0x05, 0x78},
			want: 1400,
			ok:   true,
		},
		{
			name: "valid MTU 1500",
			data: []byte{3, 4, 0, 0, 0, 0, 0x05, 0xDC},
			want: 1500,
			ok:   true,
		},
		{
			name: "zero MTU from pre-RFC1191 router",
			data: []byte{3, 4, 0, 0, 0, 0, 0, 0},
			want: 0,
			ok:   false,
		},
		{
			name: "too short",
			data: []byte{3, 4, 0, 0},
			want: 0,
			ok:   false,
		},
		{
			name: "wrong type",
			data: []byte{11, 0, 0, 0, 0, 0, 0x05, 0x78},
			want: 0,
			ok:   false,
		},
		{
			name: "wrong code",
			data: []byte{3, 0, 0, 0, 0, 0, 0x05, 0x78},
			want: 0,
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mtu, ok := ParseNextHopMTU(tt.data)
			if ok != tt.ok {
				t.Errorf("ParseNextHopMTU() ok = %v, want %v", ok, tt.ok)
			}
			if mtu != tt.want {
				t.Errorf("ParseNextHopMTU() = %d, want %d", mtu, tt.want)
			}
		})
	}
}

func TestMatchesEchoID(t *testing.T) {
	// Quoted original datagram: 20-byte IPv4 header, then the echo
	// header with ID 0xBEEF at offset 24.
	quoted := make([]byte, 28)
	quoted[24] = 0xBE
	quoted[25] = 0xEF

	if !matchesEchoID(quoted, 20, 0xBEEF) {
		t.Error("expected quoted datagram to match ID 0xBEEF")
	}
	if matchesEchoID(quoted, 20, 0x1234) {
		t.Error("expected mismatched ID to be rejected")
	}
	if matchesEchoID(quoted[:10], 20, 0xBEEF) {
		t.Error("expected truncated data to be rejected")
	}
}

func TestICMPNetwork(t *testing.T) {
	tests := []struct {
		ip   string
		want string
	}{
		{"192.0.2.1", "ip4:icmp"},
		{"2001:db8::1", "ip6:ipv6-icmp"},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			if got := ICMPNetwork(net.ParseIP(tt.ip)); got != tt.want {
				t.Errorf("ICMPNetwork(%s) = %q, want %q", tt.ip, got, tt.want)
			}
		})
	}
}

func TestIPHeaderSize(t *testing.T) {
	if got := IPHeaderSize(net.ParseIP("192.0.2.1")); got != 20 {
		t.Errorf("IPv4 header size = %d, want 20", got)
	}
	if got := IPHeaderSize(net.ParseIP("2001:db8::1")); got != 40 {
		t.Errorf("IPv6 header size = %d, want 40", got)
	}
}

func TestICMPProtocolNum(t *testing.T) {
	if got := ICMPProtocolNum(net.ParseIP("192.0.2.1")); got != 1 {
		t.Errorf("IPv4 protocol = %d, want 1", got)
	}
	if got := ICMPProtocolNum(net.ParseIP("2001:db8::1")); got != 58 {
		t.Errorf("IPv6 protocol = %d, want 58", got)
	}
}
