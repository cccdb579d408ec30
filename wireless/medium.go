package wireless

import (
	"log"
	"math"
	"math/rand"
	"net/netip"
	"reflect"

	"github.com/sarchlab/wlanbench/sim"
	"github.com/sarchlab/wlanbench/tracing"
)

// TaskKindExchange is the tracing task kind of a frame exchange on the
// medium.
const TaskKindExchange = "frame_exchange"

// contentionEvent is secondary, so frames queued at the instant the DIFS
// ends still join the round.
type contentionEvent struct {
	*sim.EventBase
}

type txStartEvent struct {
	*sim.EventBase
	senders []*Device
}

type txEndEvent struct {
	*sim.EventBase
	exchange *exchange
}

type mediumState int

const (
	mediumIdle mediumState = iota
	mediumContending
	mediumTransmitting
)

// An exchange is one transmission opportunity: the frames that the winning
// devices send and, when the channel is not garbled, the responses.
type exchange struct {
	id        string
	senders   []*Device
	collision bool
	success   []bool
}

// A Medium is the channel shared by all devices. It arbitrates access with
// the distributed coordination function: every device with a pending frame
// draws a backoff from its contention window, and the smallest backoff wins
// the channel after DIFS. Equal backoffs collide.
type Medium struct {
	*sim.ComponentBase

	engine       sim.Engine
	standard     Standard
	loss         LossModel
	delay        DelayModel
	rates        RateManager
	rtsThreshold int
	retryLimit   int
	rng          *rand.Rand

	devices []*Device
	byAddr  map[netip.Addr]*Device
	state   mediumState
	lastUID uint64

	collisions    uint64
	transmissions uint64
}

// Standard returns the 802.11 standard that the medium runs.
func (m *Medium) Standard() Standard {
	return m.standard
}

// Devices returns the devices attached to the medium.
func (m *Medium) Devices() []*Device {
	return m.devices
}

// Collisions returns how many exchanges were garbled by collisions.
func (m *Medium) Collisions() uint64 {
	return m.collisions
}

// Transmissions returns how many exchanges took place.
func (m *Medium) Transmissions() uint64 {
	return m.transmissions
}

func (m *Medium) attach(d *Device) {
	m.devices = append(m.devices, d)

	if d.address.IsValid() {
		m.byAddr[d.address] = d
	}
}

func (m *Medium) deviceByAddress(addr netip.Addr) *Device {
	return m.byAddr[addr]
}

func (m *Medium) nextUID() uint64 {
	m.lastUID++
	return m.lastUID
}

func (m *Medium) requestAccess() {
	if m.state != mediumIdle {
		return
	}

	m.scheduleContention(m.engine.CurrentTime())
}

func (m *Medium) scheduleContention(now sim.VTimeInSec) {
	m.state = mediumContending
	evt := contentionEvent{
		sim.NewSecondaryEventBase(now+m.standard.DIFS(), m),
	}
	m.engine.Schedule(evt)
}

// Handle processes the events of the medium.
func (m *Medium) Handle(e sim.Event) error {
	switch e := e.(type) {
	case contentionEvent:
		m.contend(e.Time())
	case txStartEvent:
		m.startExchange(e.Time(), e.senders)
	case txEndEvent:
		m.endExchange(e.Time(), e.exchange)
	default:
		log.Panicf("cannot handle event of type %s", reflect.TypeOf(e))
	}

	return nil
}

func (m *Medium) contend(now sim.VTimeInSec) {
	contenders := m.pendingDevices()
	if len(contenders) == 0 {
		m.state = mediumIdle
		return
	}

	minBackoff := math.MaxInt
	for _, d := range contenders {
		if d.backoff < 0 {
			d.backoff = m.rng.Intn(d.cw + 1)
		}

		minBackoff = min(minBackoff, d.backoff)
	}

	winners := make([]*Device, 0, 1)
	for _, d := range contenders {
		if d.backoff == minBackoff {
			winners = append(winners, d)
			d.backoff = -1

			continue
		}

		d.backoff -= minBackoff
	}

	m.state = mediumTransmitting
	start := now + sim.VTimeInSec(minBackoff)*m.standard.Slot
	m.engine.Schedule(txStartEvent{sim.NewEventBase(start, m), winners})
}

func (m *Medium) pendingDevices() []*Device {
	pending := make([]*Device, 0, len(m.devices))
	for _, d := range m.devices {
		if d.head() != nil {
			pending = append(pending, d)
		}
	}

	return pending
}

func (m *Medium) startExchange(now sim.VTimeInSec, senders []*Device) {
	x := &exchange{
		id:        sim.GetIDGenerator().Generate(),
		senders:   senders,
		collision: len(senders) > 1,
		success:   make([]bool, len(senders)),
	}

	var duration sim.VTimeInSec
	if x.collision {
		duration = m.collisionDuration(senders)
	} else {
		duration, x.success[0] = m.exchangeDuration(senders[0].head())
	}

	m.transmissions++
	if x.collision {
		m.collisions++
	}

	tracing.StartTask(x.id, "", m, TaskKindExchange, m.describe(x), x)

	m.engine.Schedule(txEndEvent{sim.NewEventBase(now+duration, m), x})
}

func (m *Medium) describe(x *exchange) string {
	if x.collision {
		return "collision"
	}

	if x.senders[0].head().pkt.IsBroadcast() {
		return "beacon"
	}

	return "data"
}

// exchangeDuration returns the airtime of a frame exchange without
// collision and whether the receiver decodes it.
func (m *Medium) exchangeDuration(f *frame) (sim.VTimeInSec, bool) {
	s := m.standard

	if f.dst == nil {
		mode := m.rates.ControlMode(0)
		return s.FrameDuration(f.length(), mode), true
	}

	rxPower := m.rxPower(f.src, f.dst)
	data := m.rates.DataMode(rxPower)
	control := m.rates.ControlMode(rxPower)

	var duration sim.VTimeInSec
	if m.useRTS(f) {
		rts := s.FrameDuration(RTSLength, control) + s.SIFS +
			s.FrameDuration(CTSLength, control)
		if !control.Decodable(rxPower) {
			return rts, false
		}

		duration += rts + s.SIFS
	}

	duration += s.FrameDuration(f.length(), data) + s.SIFS +
		s.FrameDuration(ACKLength, control)

	return duration, data.Decodable(rxPower) && control.Decodable(rxPower)
}

// collisionDuration returns how long the channel stays garbled. With RTS,
// only the RTS and the CTS timeout are lost.
func (m *Medium) collisionDuration(senders []*Device) sim.VTimeInSec {
	s := m.standard

	var longest sim.VTimeInSec
	for _, d := range senders {
		f := d.head()

		var duration sim.VTimeInSec
		switch {
		case f.dst == nil:
			duration = s.FrameDuration(f.length(), m.rates.ControlMode(0))
		case m.useRTS(f):
			control := m.rates.ControlMode(m.rxPower(f.src, f.dst))
			duration = s.FrameDuration(RTSLength, control) + s.SIFS +
				s.FrameDuration(CTSLength, control)
		default:
			rxPower := m.rxPower(f.src, f.dst)
			duration = s.FrameDuration(f.length(), m.rates.DataMode(rxPower)) +
				s.SIFS + s.FrameDuration(ACKLength, m.rates.ControlMode(rxPower))
		}

		longest = max(longest, duration)
	}

	return longest
}

func (m *Medium) useRTS(f *frame) bool {
	return m.rtsThreshold > 0 && f.length() > m.rtsThreshold
}

func (m *Medium) rxPower(src, dst *Device) float64 {
	distance := src.position.DistanceTo(dst.position)
	return m.loss.RxPower(src.txPower, distance)
}

func (m *Medium) endExchange(now sim.VTimeInSec, x *exchange) {
	tracing.EndTask(x.id, m)

	for i, d := range x.senders {
		f := d.head()

		switch {
		case f.dst == nil:
			m.finishBroadcast(now, d, f, !x.collision)
		case x.success[i]:
			m.finishUnicast(now, d, f)
		default:
			m.retry(d, f)
		}
	}

	if len(m.pendingDevices()) == 0 {
		m.state = mediumIdle
		return
	}

	m.scheduleContention(now)
}

func (m *Medium) finishUnicast(now sim.VTimeInSec, d *Device, f *frame) {
	d.queue.Pop()
	d.resetContention()

	distance := d.position.DistanceTo(f.dst.position)
	at := now + m.delay.Delay(distance)
	m.engine.Schedule(deliverEvent{sim.NewEventBase(at, f.dst), f.pkt})
}

func (m *Medium) finishBroadcast(
	now sim.VTimeInSec,
	d *Device,
	f *frame,
	intact bool,
) {
	d.queue.Pop()
	d.resetContention()

	if !intact {
		d.invoke(HookPosNetDrop, f.pkt, DropBroadcastErr)
		return
	}

	for _, r := range m.devices {
		if r == d {
			continue
		}

		rxPower := m.rxPower(d, r)
		if !m.rates.ControlMode(rxPower).Decodable(rxPower) {
			continue
		}

		distance := d.position.DistanceTo(r.position)
		at := now + m.delay.Delay(distance)
		m.engine.Schedule(deliverEvent{sim.NewEventBase(at, r), f.pkt})
	}
}

func (m *Medium) retry(d *Device, f *frame) {
	d.retries++
	if d.retries > m.retryLimit {
		d.queue.Pop()
		d.resetContention()
		d.invoke(HookPosNetDrop, f.pkt, DropRetryLimit)

		return
	}

	d.cw = min(2*d.cw+1, m.standard.CWMax)
}
