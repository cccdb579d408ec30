package wireless

import (
	"math/rand"
	"net/netip"

	"github.com/sarchlab/wlanbench/sim"
	"github.com/sarchlab/wlanbench/topology"
)

// Defaults of the 802.11 MAC and PHY.
const (
	DefaultTxPower    = 16.0206 // dBm
	DefaultQueueSize  = 500
	DefaultRetryLimit = 7
)

// MediumBuilder can build media.
type MediumBuilder struct {
	engine       sim.Engine
	standard     Standard
	loss         LossModel
	delay        DelayModel
	rates        RateManager
	rtsThreshold int
	retryLimit   int
	seed         int64
}

// MakeMediumBuilder creates a MediumBuilder with 802.11n at 2.4 GHz, a
// log-distance loss with exponent 3, and no RTS/CTS.
func MakeMediumBuilder() MediumBuilder {
	s, _ := LookupStandard("80211n_2_4GHZ")

	return MediumBuilder{
		standard: s,
		loss: LogDistanceLoss{
			Exponent:          3,
			ReferenceDistance: 1,
			ReferenceLoss:     DefaultReferenceLoss,
		},
		delay:      ConstantSpeedDelay{Speed: SpeedOfLight},
		retryLimit: DefaultRetryLimit,
		seed:       1,
	}
}

// WithEngine sets the engine that the medium schedules events on.
func (b MediumBuilder) WithEngine(engine sim.Engine) MediumBuilder {
	b.engine = engine
	return b
}

// WithStandard sets the 802.11 standard.
func (b MediumBuilder) WithStandard(s Standard) MediumBuilder {
	b.standard = s
	return b
}

// WithLossModel sets the propagation loss model.
func (b MediumBuilder) WithLossModel(m LossModel) MediumBuilder {
	b.loss = m
	return b
}

// WithDelayModel sets the propagation delay model.
func (b MediumBuilder) WithDelayModel(m DelayModel) MediumBuilder {
	b.delay = m
	return b
}

// WithRateManager sets how transmission modes are selected. By default, the
// most robust mode of the standard is always used.
func (b MediumBuilder) WithRateManager(r RateManager) MediumBuilder {
	b.rates = r
	return b
}

// WithRTSThreshold enables RTS/CTS for frames longer than the threshold in
// bytes. Zero disables RTS/CTS.
func (b MediumBuilder) WithRTSThreshold(bytes int) MediumBuilder {
	b.rtsThreshold = bytes
	return b
}

// WithRetryLimit sets how many times a unicast frame is retransmitted before
// being dropped.
func (b MediumBuilder) WithRetryLimit(n int) MediumBuilder {
	b.retryLimit = n
	return b
}

// WithSeed sets the seed of the backoff random number generator.
func (b MediumBuilder) WithSeed(seed int64) MediumBuilder {
	b.seed = seed
	return b
}

// Build creates a medium.
func (b MediumBuilder) Build(name string) *Medium {
	if b.engine == nil {
		panic("medium requires an engine")
	}

	rates := b.rates
	if rates == nil {
		basic := b.standard.BasicMode()
		rates = ConstantRate{Data: basic, Control: basic}
	}

	return &Medium{
		ComponentBase: sim.NewComponentBase(name),
		engine:        b.engine,
		standard:      b.standard,
		loss:          b.loss,
		delay:         b.delay,
		rates:         rates,
		rtsThreshold:  b.rtsThreshold,
		retryLimit:    b.retryLimit,
		rng:           rand.New(rand.NewSource(b.seed)),
		byAddr:        make(map[netip.Addr]*Device),
	}
}

// DeviceBuilder can build devices.
type DeviceBuilder struct {
	engine         sim.Engine
	medium         *Medium
	address        netip.Addr
	position       topology.Position
	txPower        float64
	queueSize      int
	beaconInterval sim.VTimeInSec
}

// MakeDeviceBuilder creates a DeviceBuilder with default values.
func MakeDeviceBuilder() DeviceBuilder {
	return DeviceBuilder{
		txPower:   DefaultTxPower,
		queueSize: DefaultQueueSize,
	}
}

// WithEngine sets the engine.
func (b DeviceBuilder) WithEngine(engine sim.Engine) DeviceBuilder {
	b.engine = engine
	return b
}

// WithMedium sets the medium that the device attaches to.
func (b DeviceBuilder) WithMedium(m *Medium) DeviceBuilder {
	b.medium = m
	return b
}

// WithAddress sets the IPv4 address of the device.
func (b DeviceBuilder) WithAddress(addr netip.Addr) DeviceBuilder {
	b.address = addr
	return b
}

// WithPosition sets where the device is.
func (b DeviceBuilder) WithPosition(p topology.Position) DeviceBuilder {
	b.position = p
	return b
}

// WithTxPower sets the transmission power in dBm.
func (b DeviceBuilder) WithTxPower(dBm float64) DeviceBuilder {
	b.txPower = dBm
	return b
}

// WithQueueSize sets how many packets the MAC queue holds.
func (b DeviceBuilder) WithQueueSize(n int) DeviceBuilder {
	b.queueSize = n
	return b
}

// WithBeaconInterval makes the device an access point that broadcasts
// beacons. Zero disables beacons.
func (b DeviceBuilder) WithBeaconInterval(t sim.VTimeInSec) DeviceBuilder {
	b.beaconInterval = t
	return b
}

// Build creates a device and attaches it to the medium.
func (b DeviceBuilder) Build(name string) *Device {
	if b.engine == nil || b.medium == nil {
		panic("device requires an engine and a medium")
	}

	d := &Device{
		ComponentBase:  sim.NewComponentBase(name),
		engine:         b.engine,
		medium:         b.medium,
		address:        b.address,
		position:       b.position,
		txPower:        b.txPower,
		queue:          sim.NewBuffer(name+".Queue", b.queueSize),
		beaconInterval: b.beaconInterval,
		backoff:        -1,
	}
	d.resetContention()

	b.medium.attach(d)

	return d
}
