package wireless

import (
	"net/netip"

	"github.com/sarchlab/wlanbench/sim"
)

// Frame sizes in bytes.
const (
	MACOverhead = 36 // MAC header, LLC/SNAP and FCS around a data payload
	RTSLength   = 20
	CTSLength   = 14
	ACKLength   = 14
)

// A Packet is a network layer packet carried by a data frame, or the body of
// a management frame.
type Packet struct {
	UID uint64

	// Data is the IPv4 datagram. Management frames have no data.
	Data []byte

	// Size is the number of bytes handed to the MAC.
	Size int

	Source      netip.Addr
	Destination netip.Addr
	SendTime    sim.VTimeInSec
}

// IsBroadcast tells if the packet goes to every device.
func (p Packet) IsBroadcast() bool {
	return !p.Destination.IsValid()
}

// A Receiver consumes the packets that a device delivers.
type Receiver interface {
	Receive(pkt Packet)
}

type frame struct {
	pkt Packet
	src *Device
	dst *Device
}

func (f *frame) length() int {
	return f.pkt.Size + MACOverhead
}

// DropReason tells why a device discarded a packet.
type DropReason string

// The reasons of drops.
const (
	DropQueueFull    DropReason = "queue full"
	DropRetryLimit   DropReason = "retry limit"
	DropNoRoute      DropReason = "no route"
	DropBroadcastErr DropReason = "broadcast lost"
)
