package traffic

import (
	"fmt"
	"strings"
)

// Protocol is a transport protocol, numbered as in the IPv4 protocol field.
type Protocol uint8

// Supported transport protocols.
const (
	TCP Protocol = 6
	UDP Protocol = 17
)

func (p Protocol) String() string {
	switch p {
	case TCP:
		return "TCP"
	case UDP:
		return "UDP"
	default:
		return fmt.Sprintf("Protocol(%d)", uint8(p))
	}
}

// IsDatagram tells if the protocol is datagram oriented.
func (p Protocol) IsDatagram() bool {
	return p == UDP
}

// ParseProtocol converts a protocol name such as "udp" or the ns-3 style
// "ns3::UdpSocketFactory" into a Protocol.
func ParseProtocol(s string) (Protocol, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.TrimPrefix(name, "ns3::")
	name = strings.TrimSuffix(name, "socketfactory")

	switch name {
	case "udp":
		return UDP, nil
	case "tcp":
		return TCP, nil
	default:
		return 0, fmt.Errorf("unknown protocol %q", s)
	}
}
