// Package flowstats reduces per-flow packet counters into throughput figures.
package flowstats

import (
	"fmt"
	"net/netip"

	"github.com/sarchlab/wlanbench/sim"
)

// FlowID identifies a flow. IDs of data flows start from 1.
type FlowID uint32

// ControlFlowID is the reserved flow that collects control and other
// non-data traffic. It never appears in reports.
const ControlFlowID FlowID = 0

// IsControlFlow tells if a flow carries control traffic and must be left out
// of throughput figures.
func IsControlFlow(id FlowID) bool {
	return id == ControlFlowID
}

// FiveTuple is the key that distinguishes flows.
type FiveTuple struct {
	Source          netip.Addr
	Destination     netip.Addr
	SourcePort      uint16
	DestinationPort uint16
	Protocol        uint8
}

func (t FiveTuple) String() string {
	return fmt.Sprintf("%s:%d -> %s:%d (%d)",
		t.Source, t.SourcePort, t.Destination, t.DestinationPort, t.Protocol)
}

// FlowRecord holds the counters of one flow.
type FlowRecord struct {
	Tuple       FiveTuple
	TxPackets   uint64
	TxBytes     uint64
	RxPackets   uint64
	RxBytes     uint64
	LostPackets uint64

	// DelaySum is the total one-way delay of all received packets.
	DelaySum sim.VTimeInSec
}

// MeanDelay returns the average one-way delay of received packets.
func (r FlowRecord) MeanDelay() sim.VTimeInSec {
	if r.RxPackets == 0 {
		return 0
	}

	return r.DelaySum / sim.VTimeInSec(r.RxPackets)
}

// LossRatio returns the fraction of transmitted packets that were lost.
func (r FlowRecord) LossRatio() float64 {
	if r.TxPackets == 0 {
		return 0
	}

	return float64(r.LostPackets) / float64(r.TxPackets)
}
