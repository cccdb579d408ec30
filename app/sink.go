package app

import (
	"net/netip"

	"github.com/sarchlab/wlanbench/sim"
	"github.com/sarchlab/wlanbench/wireless"
)

// PacketSink consumes the UDP packets addressed to its port while it is
// running.
type PacketSink struct {
	timeTeller sim.TimeTeller
	local      netip.AddrPort
	start      sim.VTimeInSec
	stop       sim.VTimeInSec

	rxPackets uint64
	rxBytes   uint64
	senders   map[netip.Addr]uint64
}

// NewPacketSink creates a sink listening on local. An unspecified address
// accepts packets to any address of the node.
func NewPacketSink(
	timeTeller sim.TimeTeller,
	local netip.AddrPort,
	start, stop sim.VTimeInSec,
) *PacketSink {
	return &PacketSink{
		timeTeller: timeTeller,
		local:      local,
		start:      start,
		stop:       stop,
		senders:    make(map[netip.Addr]uint64),
	}
}

// Receive counts the payload of the packet if the sink accepts it.
func (s *PacketSink) Receive(pkt wireless.Packet) {
	now := s.timeTeller.CurrentTime()
	if now < s.start || now > s.stop || pkt.Data == nil {
		return
	}

	src, dst, ok := UDPEndpoints(pkt.Data)
	if !ok || dst.Port() != s.local.Port() {
		return
	}

	if !s.local.Addr().IsUnspecified() && dst.Addr() != s.local.Addr() {
		return
	}

	s.rxPackets++
	s.rxBytes += uint64(len(pkt.Data) - HeaderLength)
	s.senders[src.Addr()]++
}

// TotalRx returns the number of payload bytes received.
func (s *PacketSink) TotalRx() uint64 {
	return s.rxBytes
}

// PacketsReceived returns the number of packets accepted.
func (s *PacketSink) PacketsReceived() uint64 {
	return s.rxPackets
}

// Senders returns the number of packets accepted from each source.
func (s *PacketSink) Senders() map[netip.Addr]uint64 {
	senders := make(map[netip.Addr]uint64, len(s.senders))
	for k, v := range s.senders {
		senders[k] = v
	}

	return senders
}
