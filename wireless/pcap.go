package wireless

import (
	"io"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"github.com/sarchlab/wlanbench/sim"
)

const pcapSnapLen = 65536

// PcapSniffer is a hook that captures the IPv4 packets delivered by devices
// into a pcap stream. Simulated time maps onto the Unix epoch.
type PcapSniffer struct {
	timeTeller sim.TimeTeller
	writer     *pcapgo.Writer
	err        error
	count      int
}

// NewPcapSniffer writes the pcap file header and returns a sniffer that
// appends to w.
func NewPcapSniffer(
	timeTeller sim.TimeTeller,
	w io.Writer,
) (*PcapSniffer, error) {
	pw := pcapgo.NewWriter(w)
	if err := pw.WriteFileHeader(pcapSnapLen, layers.LinkTypeRaw); err != nil {
		return nil, err
	}

	return &PcapSniffer{timeTeller: timeTeller, writer: pw}, nil
}

// Func writes delivered packets. Management frames are skipped.
func (s *PcapSniffer) Func(ctx sim.HookCtx) {
	if ctx.Pos != HookPosNetDeliver || s.err != nil {
		return
	}

	pkt, ok := ctx.Item.(Packet)
	if !ok || pkt.Data == nil {
		return
	}

	now := float64(s.timeTeller.CurrentTime())
	ci := gopacket.CaptureInfo{
		Timestamp:     time.Unix(0, 0).Add(time.Duration(now * float64(time.Second))),
		CaptureLength: len(pkt.Data),
		Length:        len(pkt.Data),
	}

	s.err = s.writer.WritePacket(ci, pkt.Data)
	if s.err == nil {
		s.count++
	}
}

// Count returns the number of packets written.
func (s *PcapSniffer) Count() int {
	return s.count
}

// Err returns the first write error.
func (s *PcapSniffer) Err() error {
	return s.err
}
