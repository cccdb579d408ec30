package app

import (
	"fmt"
	"log"
	"net/netip"
	"reflect"

	"github.com/sarchlab/wlanbench/sim"
	"github.com/sarchlab/wlanbench/wireless"
)

// EphemeralPort is the first port that a node assigns to an outgoing socket.
const EphemeralPort = 49153

// A NetDevice can send packets to other nodes.
type NetDevice interface {
	Address() netip.Addr
	Send(pkt wireless.Packet) bool
}

type startEvent struct {
	*sim.EventBase
}

type sendEvent struct {
	*sim.EventBase
}

// OnOffApp sends constant-size UDP packets at a constant rate. The
// application is always on between its start and stop times.
type OnOffApp struct {
	*sim.ComponentBase

	engine     sim.Engine
	device     NetDevice
	src        netip.AddrPort
	dst        netip.AddrPort
	packetSize int
	interval   sim.VTimeInSec
	start      sim.VTimeInSec
	stop       sim.VTimeInSec

	nextID   uint16
	sent     uint64
	rejected uint64
}

// PacketsSent returns the number of packets handed to the device.
func (a *OnOffApp) PacketsSent() uint64 {
	return a.sent
}

// PacketsRejected returns the number of packets the device refused.
func (a *OnOffApp) PacketsRejected() uint64 {
	return a.rejected
}

// Interval returns the time between two packets.
func (a *OnOffApp) Interval() sim.VTimeInSec {
	return a.interval
}

// Start schedules the application.
func (a *OnOffApp) Start() {
	a.engine.Schedule(startEvent{sim.NewEventBase(a.start, a)})
}

// Handle processes the events of the application.
func (a *OnOffApp) Handle(e sim.Event) error {
	switch e := e.(type) {
	case startEvent:
		a.scheduleNext(e.Time())
		return nil
	case sendEvent:
		return a.send(e.Time())
	default:
		log.Panicf("cannot handle event of type %s", reflect.TypeOf(e))
	}

	return nil
}

func (a *OnOffApp) scheduleNext(now sim.VTimeInSec) {
	next := now + a.interval
	if next >= a.stop {
		return
	}

	a.engine.Schedule(sendEvent{sim.NewEventBase(next, a)})
}

func (a *OnOffApp) send(now sim.VTimeInSec) error {
	data, err := BuildUDPPacket(a.src, a.dst, a.nextID, a.packetSize)
	if err != nil {
		return fmt.Errorf("%s: %w", a.Name(), err)
	}

	a.nextID++

	ok := a.device.Send(wireless.Packet{
		Data:        data,
		Size:        len(data),
		Destination: a.dst.Addr(),
	})
	if ok {
		a.sent++
	} else {
		a.rejected++
	}

	a.scheduleNext(now)

	return nil
}

// OnOffBuilder can build OnOffApps.
type OnOffBuilder struct {
	engine     sim.Engine
	device     NetDevice
	dst        netip.AddrPort
	packetSize int
	rate       string
	start      sim.VTimeInSec
	stop       sim.VTimeInSec
}

// MakeOnOffBuilder creates an OnOffBuilder with 512-byte packets at
// 500 kbps.
func MakeOnOffBuilder() OnOffBuilder {
	return OnOffBuilder{
		packetSize: 512,
		rate:       "500kbps",
	}
}

// WithEngine sets the engine.
func (b OnOffBuilder) WithEngine(engine sim.Engine) OnOffBuilder {
	b.engine = engine
	return b
}

// WithDevice sets the device that sends the packets.
func (b OnOffBuilder) WithDevice(d NetDevice) OnOffBuilder {
	b.device = d
	return b
}

// WithRemote sets the destination of the packets.
func (b OnOffBuilder) WithRemote(dst netip.AddrPort) OnOffBuilder {
	b.dst = dst
	return b
}

// WithPacketSize sets the payload size.
func (b OnOffBuilder) WithPacketSize(n int) OnOffBuilder {
	b.packetSize = n
	return b
}

// WithDataRate sets the sending rate, such as "1Mbps".
func (b OnOffBuilder) WithDataRate(rate string) OnOffBuilder {
	b.rate = rate
	return b
}

// WithWindow sets when the application starts and stops.
func (b OnOffBuilder) WithWindow(start, stop sim.VTimeInSec) OnOffBuilder {
	b.start = start
	b.stop = stop

	return b
}

// Build creates an OnOffApp. It fails if the data rate cannot be parsed.
func (b OnOffBuilder) Build(name string) (*OnOffApp, error) {
	if b.engine == nil || b.device == nil {
		panic("on/off application requires an engine and a device")
	}

	rate, err := ParseDataRate(b.rate)
	if err != nil {
		return nil, err
	}

	if b.packetSize <= 0 {
		return nil, fmt.Errorf("packet size must be positive, got %d",
			b.packetSize)
	}

	return &OnOffApp{
		ComponentBase: sim.NewComponentBase(name),
		engine:        b.engine,
		device:        b.device,
		src:           netip.AddrPortFrom(b.device.Address(), EphemeralPort),
		dst:           b.dst,
		packetSize:    b.packetSize,
		interval: sim.VTimeInSec(
			float64(b.packetSize*8) / rate.BitsPerSecond()),
		start: b.start,
		stop:  b.stop,
	}, nil
}
