package wireless

import (
	"bytes"
	"net/netip"

	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/wlanbench/sim"
	"github.com/sarchlab/wlanbench/topology"
	"github.com/sarchlab/wlanbench/tracing"
)

type recordingHook struct {
	sends     []Packet
	delivered []Packet
	drops     []DropReason
}

func (h *recordingHook) Func(ctx sim.HookCtx) {
	pkt := ctx.Item.(Packet)

	switch ctx.Pos {
	case HookPosNetSend:
		h.sends = append(h.sends, pkt)
	case HookPosNetDeliver:
		h.delivered = append(h.delivered, pkt)
	case HookPosNetDrop:
		h.drops = append(h.drops, ctx.Detail.(DropReason))
	}
}

type timedReceiver struct {
	engine sim.Engine
	times  []sim.VTimeInSec
	pkts   []Packet
}

func (r *timedReceiver) Receive(pkt Packet) {
	r.times = append(r.times, r.engine.CurrentTime())
	r.pkts = append(r.pkts, pkt)
}

type sendEvent struct {
	*sim.EventBase
	pkt Packet
}

type sender struct {
	device *Device
}

func (s *sender) Handle(e sim.Event) error {
	s.device.Send(e.(sendEvent).pkt)
	return nil
}

var _ = Describe("Medium", func() {
	var (
		engine   *sim.SerialEngine
		standard Standard
		builder  MediumBuilder
		medium   *Medium
		ap       *Device
		apAddr   netip.Addr
		hook     *recordingHook
		received *timedReceiver
	)

	addStation := func(i int, pos topology.Position) *Device {
		addr := netip.AddrFrom4([4]byte{10, 0, 0, byte(2 + i)})
		d := MakeDeviceBuilder().
			WithEngine(engine).
			WithMedium(medium).
			WithAddress(addr).
			WithPosition(pos).
			Build(sim.BuildNameWithIndex("Net", "STA", i))
		d.AcceptHook(hook)

		return d
	}

	build := func() {
		medium = builder.WithEngine(engine).Build("Net.Medium")

		ap = MakeDeviceBuilder().
			WithEngine(engine).
			WithMedium(medium).
			WithAddress(apAddr).
			Build("Net.AP")
		ap.AcceptHook(hook)
		ap.SetReceiver(received)
	}

	sendAt := func(t sim.VTimeInSec, d *Device, size int) {
		s := &sender{device: d}
		engine.Schedule(sendEvent{
			EventBase: sim.NewEventBase(t, s),
			pkt:       Packet{Size: size, Destination: apAddr},
		})
	}

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		standard, _ = LookupStandard("80211n_2_4GHZ")
		mode, _ := standard.Mode("OfdmRate6_5MbpsBW20MHz")
		builder = MakeMediumBuilder().
			WithStandard(standard).
			WithLossModel(LogDistanceLoss{
				Exponent:          3.2,
				ReferenceDistance: 1,
				ReferenceLoss:     DefaultReferenceLoss,
			}).
			WithRateManager(ConstantRate{Data: mode, Control: mode}).
			WithSeed(1)
		apAddr = netip.MustParseAddr("10.0.0.1")
		hook = &recordingHook{}
		received = &timedReceiver{engine: engine}
	})

	It("should deliver a packet to the access point", func() {
		build()
		sta := addStation(0, topology.Position{X: 50})

		sendAt(1, sta, 1428)
		Expect(engine.Run()).To(Succeed())

		Expect(hook.sends).To(HaveLen(1))
		Expect(hook.delivered).To(HaveLen(1))
		Expect(received.pkts).To(HaveLen(1))
		Expect(received.pkts[0].Source).To(Equal(sta.Address()))
		Expect(received.pkts[0].SendTime).To(Equal(sim.VTimeInSec(1)))
		Expect(received.times[0]).To(BeNumerically(">", 1+standard.DIFS()))
		Expect(received.times[0]).To(BeNumerically("<", 1.003))
		Expect(sta.QueueLength()).To(Equal(0))
		Expect(medium.Transmissions()).To(Equal(uint64(1)))
	})

	It("should assign unique packet ids", func() {
		build()
		sta := addStation(0, topology.Position{X: 50})

		sendAt(1, sta, 100)
		sendAt(1, sta, 100)
		Expect(engine.Run()).To(Succeed())

		Expect(hook.sends).To(HaveLen(2))
		Expect(hook.sends[0].UID).NotTo(Equal(hook.sends[1].UID))
	})

	It("should resolve contention among many stations", func() {
		build()
		positions := topology.ReferenceTable()
		for i := 0; i < 12; i++ {
			sta := addStation(i, positions.Position(i, 12))
			sendAt(1, sta, 1428)
		}

		Expect(engine.Run()).To(Succeed())

		Expect(len(hook.delivered) + len(hook.drops)).To(Equal(12))
		Expect(len(hook.delivered)).To(BeNumerically(">=", 11))
		Expect(medium.Transmissions()).To(BeNumerically(">=", 12))
	})

	It("should let frames queued as the DIFS ends join the round", func() {
		standard.CWMin = 0
		builder = builder.WithStandard(standard)
		build()
		sta0 := addStation(0, topology.Position{X: 50})
		sta1 := addStation(1, topology.Position{X: -50})

		sendAt(1, sta0, 1428)
		sendAt(1+standard.DIFS(), sta1, 1428)
		engine.StopAt(1 + standard.DIFS())
		Expect(engine.Run()).To(Succeed())

		Expect(medium.Transmissions()).To(Equal(uint64(1)))
		Expect(medium.Collisions()).To(Equal(uint64(1)))
	})

	It("should be deterministic for a seed", func() {
		run := func() []sim.VTimeInSec {
			engine = sim.NewSerialEngine()
			received = &timedReceiver{engine: engine}
			hook = &recordingHook{}
			build()

			positions := topology.ReferenceTable()
			for i := 0; i < 6; i++ {
				sendAt(1, addStation(i, positions.Position(i, 6)), 1428)
			}

			Expect(engine.Run()).To(Succeed())

			return received.times
		}

		Expect(run()).To(Equal(run()))
	})

	It("should drop packets that never get through", func() {
		build()
		sta := addStation(0, topology.Position{X: 10000})

		sendAt(1, sta, 1428)
		Expect(engine.Run()).To(Succeed())

		Expect(hook.delivered).To(BeEmpty())
		Expect(hook.drops).To(Equal([]DropReason{DropRetryLimit}))
		Expect(medium.Transmissions()).To(Equal(uint64(DefaultRetryLimit + 1)))
	})

	It("should drop packets when the queue is full", func() {
		build()
		sta := MakeDeviceBuilder().
			WithEngine(engine).
			WithMedium(medium).
			WithAddress(netip.MustParseAddr("10.0.0.2")).
			WithPosition(topology.Position{X: 50}).
			WithQueueSize(1).
			Build("Net.STA[0]")
		sta.AcceptHook(hook)

		sendAt(1, sta, 1428)
		sendAt(1, sta, 1428)
		sendAt(1, sta, 1428)
		Expect(engine.Run()).To(Succeed())

		Expect(hook.sends).To(HaveLen(3))
		Expect(hook.drops).To(Equal([]DropReason{DropQueueFull, DropQueueFull}))
		Expect(hook.delivered).To(HaveLen(1))
	})

	It("should drop packets to unknown addresses", func() {
		build()
		sta := addStation(0, topology.Position{X: 50})

		Expect(sta.Send(Packet{
			Size:        100,
			Destination: netip.MustParseAddr("10.0.0.99"),
		})).To(BeFalse())
		Expect(hook.drops).To(Equal([]DropReason{DropNoRoute}))
	})

	It("should take longer with RTS/CTS", func() {
		deliveryTime := func(threshold int) sim.VTimeInSec {
			engine = sim.NewSerialEngine()
			received = &timedReceiver{engine: engine}
			builder = builder.WithRTSThreshold(threshold)
			build()

			sendAt(1, addStation(0, topology.Position{X: 50}), 1428)
			Expect(engine.Run()).To(Succeed())
			Expect(received.times).To(HaveLen(1))

			return received.times[0]
		}

		withoutRTS := deliveryTime(0)
		withRTS := deliveryTime(1000)

		Expect(withRTS).To(BeNumerically(">", withoutRTS))
	})

	It("should broadcast beacons", func() {
		medium = builder.WithEngine(engine).Build("Net.Medium")
		ap = MakeDeviceBuilder().
			WithEngine(engine).
			WithMedium(medium).
			WithAddress(apAddr).
			WithBeaconInterval(1).
			Build("Net.AP")

		stations := make([]*timedReceiver, 3)
		for i := range stations {
			stations[i] = &timedReceiver{engine: engine}
			addStation(i, topology.Position{Y: 30}).SetReceiver(stations[i])
		}

		ap.StartBeacons(0)
		engine.StopAt(2.5)
		Expect(engine.Run()).To(Succeed())

		for _, r := range stations {
			Expect(r.pkts).To(HaveLen(3))
			Expect(r.pkts[0].IsBroadcast()).To(BeTrue())
			Expect(r.pkts[0].Data).To(BeNil())
		}
	})

	It("should report busy time to tracers", func() {
		build()
		tracer := tracing.NewBusyTimeTracer(engine,
			tracing.KindFilter(TaskKindExchange))
		tracing.CollectTrace(medium, tracer)

		sendAt(1, addStation(0, topology.Position{X: 50}), 1428)
		Expect(engine.Run()).To(Succeed())

		mode, _ := standard.Mode("OfdmRate6_5MbpsBW20MHz")
		expected := standard.FrameDuration(1428+MACOverhead, mode) +
			standard.SIFS + standard.FrameDuration(ACKLength, mode)
		Expect(tracer.BusyTime()).To(BeNumerically("~", expected, 1e-12))
	})

	It("should capture delivered packets", func() {
		build()
		buf := new(bytes.Buffer)
		sniffer, err := NewPcapSniffer(engine, buf)
		Expect(err).NotTo(HaveOccurred())
		ap.AcceptHook(sniffer)

		sta := addStation(0, topology.Position{X: 50})
		s := &sender{device: sta}
		engine.Schedule(sendEvent{
			EventBase: sim.NewEventBase(1, s),
			pkt: Packet{
				Size:        4,
				Data:        []byte{0x45, 0, 0, 4},
				Destination: apAddr,
			},
		})
		Expect(engine.Run()).To(Succeed())

		Expect(sniffer.Err()).NotTo(HaveOccurred())
		Expect(sniffer.Count()).To(Equal(1))

		r, err := pcapgo.NewReader(buf)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.LinkType()).To(Equal(layers.LinkTypeRaw))

		data, ci, err := r.ReadPacketData()
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(Equal([]byte{0x45, 0, 0, 4}))
		Expect(ci.Timestamp.Unix()).To(Equal(int64(1)))
	})
})
