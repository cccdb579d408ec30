package flowstats

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/sarchlab/wlanbench/sim"
)

// ErrDegenerateWindow is returned when the observation window has no
// positive length.
var ErrDegenerateWindow = errors.New("observation window must have a positive length")

// Window is the observation period that rates are normalized over.
type Window struct {
	Start sim.VTimeInSec
	Stop  sim.VTimeInSec
}

// FlowThroughput is the reduced figure of one data flow.
type FlowThroughput struct {
	ID             FlowID
	Tuple          FiveTuple
	Record         FlowRecord
	OfferedMbps    float64
	ThroughputMbps float64
	LossRatio      float64
	MeanDelay      sim.VTimeInSec
}

// AggregateResult is the reduction of all data flows of a run.
type AggregateResult struct {
	Window                   Window
	Flows                    []FlowThroughput
	CumulativeThroughputMbps float64
}

// Aggregate computes per-flow offered rate and throughput over the window
// and sums the throughput of all data flows. Control flows are skipped.
// Flows are returned in ascending ID order.
func Aggregate(
	records map[FlowID]FlowRecord,
	window Window,
) (AggregateResult, error) {
	duration := float64(window.Stop - window.Start)
	if math.IsNaN(duration) || math.IsInf(duration, 0) || duration <= 0 {
		return AggregateResult{}, fmt.Errorf("%w: [%g, %g]",
			ErrDegenerateWindow, window.Start, window.Stop)
	}

	ids := make([]FlowID, 0, len(records))
	for id := range records {
		if IsControlFlow(id) {
			continue
		}

		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	result := AggregateResult{
		Window: window,
		Flows:  make([]FlowThroughput, 0, len(ids)),
	}

	for _, id := range ids {
		r := records[id]
		f := FlowThroughput{
			ID:             id,
			Tuple:          r.Tuple,
			Record:         r,
			OfferedMbps:    toMbps(r.TxBytes, duration),
			ThroughputMbps: toMbps(r.RxBytes, duration),
			LossRatio:      r.LossRatio(),
			MeanDelay:      r.MeanDelay(),
		}

		result.Flows = append(result.Flows, f)
		result.CumulativeThroughputMbps += f.ThroughputMbps
	}

	return result, nil
}

func toMbps(bytes uint64, duration float64) float64 {
	return float64(bytes) * 8.0 / duration / 1e6
}
