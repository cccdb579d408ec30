// Package flowmon counts the packets of every flow that crosses the wireless
// devices.
package flowmon

import (
	"net/netip"
	"sync"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/sarchlab/wlanbench/flowstats"
)

// A Classifier maps packets to flows by their five-tuple.
type Classifier struct {
	lock   sync.Mutex
	flows  map[flowstats.FiveTuple]flowstats.FlowID
	tuples map[flowstats.FlowID]flowstats.FiveTuple
	nextID flowstats.FlowID
}

// NewClassifier creates a Classifier that has seen no flow.
func NewClassifier() *Classifier {
	return &Classifier{
		flows:  make(map[flowstats.FiveTuple]flowstats.FlowID),
		tuples: make(map[flowstats.FlowID]flowstats.FiveTuple),
		nextID: 1,
	}
}

// Classify returns the flow that a packet belongs to. New five-tuples get
// the next free ID. Packets that are not IPv4 belong to the control flow.
func (c *Classifier) Classify(
	data []byte,
) (flowstats.FlowID, flowstats.FiveTuple) {
	tuple, ok := decodeTuple(data)
	if !ok {
		return flowstats.ControlFlowID, flowstats.FiveTuple{}
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	id, found := c.flows[tuple]
	if !found {
		id = c.nextID
		c.nextID++
		c.flows[tuple] = id
		c.tuples[id] = tuple
	}

	return id, tuple
}

// FindFlow returns the five-tuple of a flow.
func (c *Classifier) FindFlow(id flowstats.FlowID) (flowstats.FiveTuple, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()

	t, ok := c.tuples[id]

	return t, ok
}

func decodeTuple(data []byte) (flowstats.FiveTuple, bool) {
	if len(data) == 0 {
		return flowstats.FiveTuple{}, false
	}

	packet := gopacket.NewPacket(data, layers.LayerTypeIPv4, gopacket.NoCopy)

	ip, ok := packet.Layer(layers.LayerTypeIPv4).(*layers.IPv4)
	if !ok {
		return flowstats.FiveTuple{}, false
	}

	src, srcOK := netip.AddrFromSlice(ip.SrcIP.To4())
	dst, dstOK := netip.AddrFromSlice(ip.DstIP.To4())
	if !srcOK || !dstOK {
		return flowstats.FiveTuple{}, false
	}

	tuple := flowstats.FiveTuple{
		Source:      src,
		Destination: dst,
		Protocol:    uint8(ip.Protocol),
	}

	switch l := packet.TransportLayer().(type) {
	case *layers.UDP:
		tuple.SourcePort = uint16(l.SrcPort)
		tuple.DestinationPort = uint16(l.DstPort)
	case *layers.TCP:
		tuple.SourcePort = uint16(l.SrcPort)
		tuple.DestinationPort = uint16(l.DstPort)
	}

	return tuple, true
}
