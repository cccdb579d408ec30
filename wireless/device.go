package wireless

import (
	"log"
	"net/netip"
	"reflect"

	"github.com/sarchlab/wlanbench/sim"
	"github.com/sarchlab/wlanbench/topology"
)

// Hook positions of a device. The hook item is always a Packet.
var (
	// HookPosNetSend triggers when the upper layer hands a packet to the
	// device, before the queue is checked.
	HookPosNetSend = &sim.HookPos{Name: "NetSend"}

	// HookPosNetDeliver triggers when a packet arrives at its destination.
	HookPosNetDeliver = &sim.HookPos{Name: "NetDeliver"}

	// HookPosNetDrop triggers when the device discards a packet. The detail
	// is a DropReason.
	HookPosNetDrop = &sim.HookPos{Name: "NetDrop"}
)

type beaconEvent struct {
	*sim.EventBase
}

type deliverEvent struct {
	*sim.EventBase
	pkt Packet
}

// A Device is the wireless interface of a node.
type Device struct {
	*sim.ComponentBase

	engine   sim.Engine
	medium   *Medium
	address  netip.Addr
	position topology.Position
	txPower  float64
	queue    sim.Buffer
	receiver Receiver

	beaconInterval sim.VTimeInSec

	cw      int
	backoff int
	retries int
}

// Address returns the IPv4 address of the device.
func (d *Device) Address() netip.Addr {
	return d.address
}

// Position returns where the device is.
func (d *Device) Position() topology.Position {
	return d.position
}

// QueueLength returns the number of frames waiting for the channel,
// including the one in transmission.
func (d *Device) QueueLength() int {
	return d.queue.Size()
}

// Queue returns the buffer of frames waiting for the channel.
func (d *Device) Queue() sim.Buffer {
	return d.queue
}

// SetReceiver sets the consumer of delivered packets.
func (d *Device) SetReceiver(r Receiver) {
	d.receiver = r
}

// Send queues a packet for transmission. It returns false if the packet is
// dropped. A packet without a valid destination is broadcast.
func (d *Device) Send(pkt Packet) bool {
	pkt.UID = d.medium.nextUID()
	pkt.Source = d.address
	pkt.SendTime = d.engine.CurrentTime()

	d.invoke(HookPosNetSend, pkt, nil)

	f := &frame{pkt: pkt, src: d}
	if !pkt.IsBroadcast() {
		f.dst = d.medium.deviceByAddress(pkt.Destination)
		if f.dst == nil {
			d.invoke(HookPosNetDrop, pkt, DropNoRoute)
			return false
		}
	}

	if !d.queue.CanPush() {
		d.invoke(HookPosNetDrop, pkt, DropQueueFull)
		return false
	}

	d.queue.Push(f)
	d.medium.requestAccess()

	return true
}

// StartBeacons makes the device broadcast a beacon every beacon interval,
// starting at the given time.
func (d *Device) StartBeacons(start sim.VTimeInSec) {
	if d.beaconInterval <= 0 {
		return
	}

	d.engine.Schedule(beaconEvent{sim.NewEventBase(start, d)})
}

// Handle processes the events of the device.
func (d *Device) Handle(e sim.Event) error {
	switch e := e.(type) {
	case beaconEvent:
		d.sendBeacon(e.Time())
	case deliverEvent:
		d.deliver(e.pkt)
	default:
		log.Panicf("cannot handle event of type %s", reflect.TypeOf(e))
	}

	return nil
}

func (d *Device) sendBeacon(now sim.VTimeInSec) {
	d.Send(Packet{Size: d.medium.standard.BeaconLength})

	next := now + d.beaconInterval
	d.engine.Schedule(beaconEvent{sim.NewEventBase(next, d)})
}

func (d *Device) deliver(pkt Packet) {
	d.invoke(HookPosNetDeliver, pkt, nil)

	if d.receiver != nil {
		d.receiver.Receive(pkt)
	}
}

func (d *Device) head() *frame {
	f := d.queue.Peek()
	if f == nil {
		return nil
	}

	return f.(*frame)
}

func (d *Device) resetContention() {
	d.cw = d.medium.standard.CWMin
	d.retries = 0
}

func (d *Device) invoke(pos *sim.HookPos, pkt Packet, detail interface{}) {
	if d.NumHooks() == 0 {
		return
	}

	d.InvokeHook(sim.HookCtx{
		Domain: d,
		Pos:    pos,
		Item:   pkt,
		Detail: detail,
	})
}
