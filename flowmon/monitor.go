package flowmon

import (
	"sync"

	"github.com/sarchlab/wlanbench/flowstats"
	"github.com/sarchlab/wlanbench/sim"
	"github.com/sarchlab/wlanbench/wireless"
)

type inflight struct {
	flow     flowstats.FlowID
	sendTime sim.VTimeInSec
}

// A Monitor is a hook that counts packets per flow. Attach it to every
// device of the network.
type Monitor struct {
	timeTeller sim.TimeTeller
	classifier *Classifier

	lock     sync.Mutex
	records  map[flowstats.FlowID]*flowstats.FlowRecord
	inflight map[uint64]inflight
	drops    map[wireless.DropReason]uint64
}

// NewMonitor creates a Monitor.
func NewMonitor(timeTeller sim.TimeTeller, classifier *Classifier) *Monitor {
	return &Monitor{
		timeTeller: timeTeller,
		classifier: classifier,
		records:    make(map[flowstats.FlowID]*flowstats.FlowRecord),
		inflight:   make(map[uint64]inflight),
		drops:      make(map[wireless.DropReason]uint64),
	}
}

// Classifier returns the classifier that the monitor uses.
func (m *Monitor) Classifier() *Classifier {
	return m.classifier
}

// Func updates the counters.
func (m *Monitor) Func(ctx sim.HookCtx) {
	pkt, ok := ctx.Item.(wireless.Packet)
	if !ok {
		return
	}

	switch ctx.Pos {
	case wireless.HookPosNetSend:
		m.countTx(pkt)
	case wireless.HookPosNetDeliver:
		m.countRx(pkt)
	case wireless.HookPosNetDrop:
		m.countDrop(pkt, ctx.Detail)
	}
}

func (m *Monitor) countTx(pkt wireless.Packet) {
	id, tuple := m.classifier.Classify(pkt.Data)

	m.lock.Lock()
	defer m.lock.Unlock()

	r := m.record(id, tuple)
	r.TxPackets++
	r.TxBytes += uint64(pkt.Size)

	if !pkt.IsBroadcast() {
		m.inflight[pkt.UID] = inflight{flow: id, sendTime: pkt.SendTime}
	}
}

func (m *Monitor) countRx(pkt wireless.Packet) {
	now := m.timeTeller.CurrentTime()

	m.lock.Lock()
	defer m.lock.Unlock()

	if pkt.IsBroadcast() {
		id, tuple := m.classifier.Classify(pkt.Data)
		r := m.record(id, tuple)
		r.RxPackets++
		r.RxBytes += uint64(pkt.Size)
		r.DelaySum += now - pkt.SendTime

		return
	}

	f, found := m.inflight[pkt.UID]
	if !found {
		return
	}

	delete(m.inflight, pkt.UID)

	r := m.records[f.flow]
	r.RxPackets++
	r.RxBytes += uint64(pkt.Size)
	r.DelaySum += now - f.sendTime
}

func (m *Monitor) countDrop(pkt wireless.Packet, detail interface{}) {
	m.lock.Lock()
	defer m.lock.Unlock()

	delete(m.inflight, pkt.UID)

	if reason, ok := detail.(wireless.DropReason); ok {
		m.drops[reason]++
	}
}

func (m *Monitor) record(
	id flowstats.FlowID,
	tuple flowstats.FiveTuple,
) *flowstats.FlowRecord {
	r, ok := m.records[id]
	if !ok {
		r = &flowstats.FlowRecord{Tuple: tuple}
		m.records[id] = r
	}

	return r
}

// Snapshot returns a copy of the counters of every flow seen so far. Packets
// that were sent but not received count as lost.
func (m *Monitor) Snapshot() map[flowstats.FlowID]flowstats.FlowRecord {
	m.lock.Lock()
	defer m.lock.Unlock()

	snapshot := make(map[flowstats.FlowID]flowstats.FlowRecord, len(m.records))
	for id, r := range m.records {
		copied := *r
		copied.LostPackets = 0
		if r.TxPackets > r.RxPackets {
			copied.LostPackets = r.TxPackets - r.RxPackets
		}

		snapshot[id] = copied
	}

	return snapshot
}

// Drops returns the number of packets that devices discarded, by reason.
func (m *Monitor) Drops() map[wireless.DropReason]uint64 {
	m.lock.Lock()
	defer m.lock.Unlock()

	drops := make(map[wireless.DropReason]uint64, len(m.drops))
	for k, v := range m.drops {
		drops[k] = v
	}

	return drops
}
