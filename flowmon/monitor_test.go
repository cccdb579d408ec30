package flowmon

import (
	"net/netip"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/wlanbench/flowstats"
	"github.com/sarchlab/wlanbench/sim"
	"github.com/sarchlab/wlanbench/wireless"
)

type clock struct {
	now sim.VTimeInSec
}

func (c *clock) CurrentTime() sim.VTimeInSec {
	return c.now
}

var _ = Describe("Monitor", func() {
	var (
		c   *clock
		m   *Monitor
		ap  = netip.MustParseAddr("10.0.0.1")
		sta = netip.MustParseAddr("10.0.0.2")
	)

	dataPacket := func(uid uint64, sendTime sim.VTimeInSec) wireless.Packet {
		data := udp("10.0.0.2:49153", "10.0.0.1:10")
		return wireless.Packet{
			UID:         uid,
			Data:        data,
			Size:        len(data),
			Source:      sta,
			Destination: ap,
			SendTime:    sendTime,
		}
	}

	fire := func(pos *sim.HookPos, pkt wireless.Packet, detail interface{}) {
		m.Func(sim.HookCtx{Pos: pos, Item: pkt, Detail: detail})
	}

	BeforeEach(func() {
		c = &clock{}
		m = NewMonitor(c, NewClassifier())
	})

	It("should count sent and received packets", func() {
		fire(wireless.HookPosNetSend, dataPacket(1, 1), nil)
		fire(wireless.HookPosNetSend, dataPacket(2, 1.5), nil)
		c.now = 2
		fire(wireless.HookPosNetDeliver, dataPacket(1, 1), nil)

		records := m.Snapshot()

		Expect(records).To(HaveLen(1))
		r := records[1]
		Expect(r.TxPackets).To(Equal(uint64(2)))
		Expect(r.TxBytes).To(Equal(uint64(2 * 128)))
		Expect(r.RxPackets).To(Equal(uint64(1)))
		Expect(r.RxBytes).To(Equal(uint64(128)))
		Expect(r.LostPackets).To(Equal(uint64(1)))
		Expect(r.DelaySum).To(BeNumerically("~", 1.0, 1e-12))
		Expect(r.Tuple.Source).To(Equal(sta))
	})

	It("should not count a delivery twice", func() {
		fire(wireless.HookPosNetSend, dataPacket(1, 1), nil)
		fire(wireless.HookPosNetDeliver, dataPacket(1, 1), nil)
		fire(wireless.HookPosNetDeliver, dataPacket(1, 1), nil)

		Expect(m.Snapshot()[1].RxPackets).To(Equal(uint64(1)))
	})

	It("should count beacons in the control flow", func() {
		beacon := wireless.Packet{UID: 9, Size: 50, Source: ap}
		fire(wireless.HookPosNetSend, beacon, nil)
		fire(wireless.HookPosNetDeliver, beacon, nil)
		fire(wireless.HookPosNetDeliver, beacon, nil)

		r := m.Snapshot()[flowstats.ControlFlowID]
		Expect(r.TxPackets).To(Equal(uint64(1)))
		Expect(r.RxPackets).To(Equal(uint64(2)))
		Expect(r.LostPackets).To(BeZero())
	})

	It("should count drops by reason", func() {
		fire(wireless.HookPosNetSend, dataPacket(1, 1), nil)
		fire(wireless.HookPosNetDrop, dataPacket(1, 1), wireless.DropRetryLimit)
		fire(wireless.HookPosNetDeliver, dataPacket(1, 1), nil)

		Expect(m.Drops()).To(Equal(map[wireless.DropReason]uint64{
			wireless.DropRetryLimit: 1,
		}))
		Expect(m.Snapshot()[1].LostPackets).To(Equal(uint64(1)))
	})

	It("should ignore other items", func() {
		m.Func(sim.HookCtx{Pos: wireless.HookPosNetSend, Item: 42})

		Expect(m.Snapshot()).To(BeEmpty())
	})

	It("should return independent snapshots", func() {
		fire(wireless.HookPosNetSend, dataPacket(1, 1), nil)
		before := m.Snapshot()

		fire(wireless.HookPosNetSend, dataPacket(2, 1), nil)

		Expect(before[1].TxPackets).To(Equal(uint64(1)))
		Expect(m.Snapshot()[1].TxPackets).To(Equal(uint64(2)))
	})
})
