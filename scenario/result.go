package scenario

import (
	"io"
	"net/netip"
	"sort"

	"github.com/sarchlab/wlanbench/datarecording"
	"github.com/sarchlab/wlanbench/flowstats"
	"github.com/sarchlab/wlanbench/sim"
	"github.com/sarchlab/wlanbench/topology"
	"github.com/sarchlab/wlanbench/wireless"
)

// NodeInfo describes a node of a finished run.
type NodeInfo struct {
	Name     string
	Role     string
	Position topology.Position
	Address  netip.Addr
}

// Result is the outcome of a run.
type Result struct {
	Config  Config
	Nodes   []NodeInfo
	Records map[flowstats.FlowID]flowstats.FlowRecord
	Flows   flowstats.AggregateResult

	// MediumBusyTime is how long the channel carried frame exchanges.
	MediumBusyTime sim.VTimeInSec
	Collisions     uint64
	Transmissions  uint64

	SinkRxBytes uint64
	Drops       map[wireless.DropReason]uint64
}

// WriteReport writes the per-flow blocks and the cumulative throughput.
func (r Result) WriteReport(w io.Writer) error {
	return flowstats.WriteReport(w, r.Flows)
}

type nodeEntry struct {
	Name    string
	Role    string
	X       float64
	Y       float64
	Z       float64
	Address string
}

type flowEntry struct {
	FlowID          uint32
	Source          string
	Destination     string
	SourcePort      uint16
	DestinationPort uint16
	Protocol        uint8
	TxPackets       uint64
	TxBytes         uint64
	RxPackets       uint64
	RxBytes         uint64
	LostPackets     uint64
	OfferedMbps     float64
	ThroughputMbps  float64
	LossRatio       float64
	MeanDelay       float64
}

type summaryEntry struct {
	Standard                 string
	DataMode                 string
	ClientDataRate           string
	StationCount             int
	ActiveCount              int
	RTSCTS                   bool
	WindowStart              float64
	WindowStop               float64
	CumulativeThroughputMbps float64
	MediumBusyTime           float64
	Collisions               uint64
	Transmissions            uint64
}

type dropEntry struct {
	Reason string
	Count  uint64
}

// RecordResult writes the nodes, the flow statistics, the drops and a
// summary of the run into the recorder.
func RecordResult(recorder datarecording.DataRecorder, r Result) {
	recorder.CreateTable("nodes", nodeEntry{})
	for _, n := range r.Nodes {
		recorder.InsertData("nodes", nodeEntry{
			Name:    n.Name,
			Role:    n.Role,
			X:       n.Position.X,
			Y:       n.Position.Y,
			Z:       n.Position.Z,
			Address: n.Address.String(),
		})
	}

	recorder.CreateTable("flow_stats", flowEntry{})
	for _, f := range r.Flows.Flows {
		recorder.InsertData("flow_stats", flowEntry{
			FlowID:          uint32(f.ID),
			Source:          f.Tuple.Source.String(),
			Destination:     f.Tuple.Destination.String(),
			SourcePort:      f.Tuple.SourcePort,
			DestinationPort: f.Tuple.DestinationPort,
			Protocol:        f.Tuple.Protocol,
			TxPackets:       f.Record.TxPackets,
			TxBytes:         f.Record.TxBytes,
			RxPackets:       f.Record.RxPackets,
			RxBytes:         f.Record.RxBytes,
			LostPackets:     f.Record.LostPackets,
			OfferedMbps:     f.OfferedMbps,
			ThroughputMbps:  f.ThroughputMbps,
			LossRatio:       f.LossRatio,
			MeanDelay:       float64(f.MeanDelay),
		})
	}

	recorder.CreateTable("drops", dropEntry{})
	reasons := make([]string, 0, len(r.Drops))
	for reason := range r.Drops {
		reasons = append(reasons, string(reason))
	}

	sort.Strings(reasons)

	for _, reason := range reasons {
		recorder.InsertData("drops", dropEntry{
			Reason: reason,
			Count:  r.Drops[wireless.DropReason(reason)],
		})
	}

	c := r.Config
	recorder.CreateTable("summary", summaryEntry{})
	recorder.InsertData("summary", summaryEntry{
		Standard:                 c.Standard,
		DataMode:                 c.DataMode,
		ClientDataRate:           c.ClientDataRate,
		StationCount:             c.StationCount,
		ActiveCount:              c.ActiveCount,
		RTSCTS:                   c.RTSCTS,
		WindowStart:              float64(r.Flows.Window.Start),
		WindowStop:               float64(r.Flows.Window.Stop),
		CumulativeThroughputMbps: r.Flows.CumulativeThroughputMbps,
		MediumBusyTime:           float64(r.MediumBusyTime),
		Collisions:               r.Collisions,
		Transmissions:            r.Transmissions,
	})

	recorder.Flush()
}
