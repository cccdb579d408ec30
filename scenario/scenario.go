package scenario

import (
	"errors"
	"fmt"
	"io"
	"net/netip"

	"github.com/sarchlab/wlanbench/addressing"
	"github.com/sarchlab/wlanbench/app"
	"github.com/sarchlab/wlanbench/flowmon"
	"github.com/sarchlab/wlanbench/flowstats"
	"github.com/sarchlab/wlanbench/sim"
	"github.com/sarchlab/wlanbench/topology"
	"github.com/sarchlab/wlanbench/tracing"
	"github.com/sarchlab/wlanbench/traffic"
	"github.com/sarchlab/wlanbench/wireless"
)

// ErrAlreadyRun is returned when a scenario is run twice.
var ErrAlreadyRun = errors.New("scenario has already run")

// A Scenario is a fully wired network that is ready to run.
type Scenario struct {
	name      string
	config    Config
	engine    sim.Engine
	topology  topology.Topology
	addresses *addressing.Allocator
	schedule  traffic.Schedule

	medium   *wireless.Medium
	ap       *wireless.Device
	stations []*wireless.Device
	apps     []*app.OnOffApp
	sink     *app.PacketSink

	monitor *flowmon.Monitor
	busy    *tracing.BusyTimeTracer
	sniffer *wireless.PcapSniffer

	ran bool
}

// Name returns the name of the network.
func (s *Scenario) Name() string {
	return s.name
}

// Config returns the configuration of the scenario.
func (s *Scenario) Config() Config {
	return s.config
}

// Engine returns the engine that runs the scenario.
func (s *Scenario) Engine() sim.Engine {
	return s.engine
}

// Topology returns the nodes of the network.
func (s *Scenario) Topology() topology.Topology {
	return s.topology
}

// Schedule returns the traffic schedule.
func (s *Scenario) Schedule() traffic.Schedule {
	return s.schedule
}

// Medium returns the shared wireless channel.
func (s *Scenario) Medium() *wireless.Medium {
	return s.medium
}

// Monitor returns the flow monitor.
func (s *Scenario) Monitor() *flowmon.Monitor {
	return s.monitor
}

// Sink returns the packet sink on the access point.
func (s *Scenario) Sink() *app.PacketSink {
	return s.sink
}

// Apps returns the installed traffic sources.
func (s *Scenario) Apps() []*app.OnOffApp {
	return s.apps
}

// Devices returns the access point followed by the stations.
func (s *Scenario) Devices() []*wireless.Device {
	return append([]*wireless.Device{s.ap}, s.stations...)
}

// Components returns every simulated component, the medium first, then the
// access point and the stations, then the applications.
func (s *Scenario) Components() []sim.Component {
	components := []sim.Component{s.medium, s.ap}
	for _, d := range s.stations {
		components = append(components, d)
	}

	for _, a := range s.apps {
		components = append(components, a)
	}

	return components
}

// Address returns the IPv4 address of a node.
func (s *Scenario) Address(node topology.Node) netip.Addr {
	addr, _ := s.addresses.Lookup(node.Name)
	return addr
}

// Window returns the period that throughput is measured over.
func (s *Scenario) Window() flowstats.Window {
	w := s.config.windows().Client

	return flowstats.Window{Start: w.Start, Stop: w.Stop}
}

// Run starts the applications, runs the engine until the clients stop, and
// reduces the flow counters over the client window.
func (s *Scenario) Run() (Result, error) {
	if s.ran {
		return Result{}, ErrAlreadyRun
	}

	s.ran = true

	s.ap.StartBeacons(0)
	for _, a := range s.apps {
		a.Start()
	}

	window := s.Window()

	s.engine.StopAt(window.Stop)
	if err := s.engine.Run(); err != nil {
		return Result{}, err
	}

	s.engine.Finished()
	s.busy.TerminateAllTasks(s.engine.CurrentTime())

	if s.sniffer != nil && s.sniffer.Err() != nil {
		return Result{}, fmt.Errorf("writing pcap: %w", s.sniffer.Err())
	}

	records := s.monitor.Snapshot()

	flows, err := flowstats.Aggregate(records, window)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Config:         s.config,
		Nodes:          s.nodeInfo(),
		Records:        records,
		Flows:          flows,
		MediumBusyTime: s.busy.BusyTime(),
		Collisions:     s.medium.Collisions(),
		Transmissions:  s.medium.Transmissions(),
		SinkRxBytes:    s.sink.TotalRx(),
		Drops:          s.monitor.Drops(),
	}, nil
}

func (s *Scenario) nodeInfo() []NodeInfo {
	nodes := s.topology.Nodes()
	info := make([]NodeInfo, len(nodes))

	for i, n := range nodes {
		info[i] = NodeInfo{
			Name:     n.Name,
			Role:     n.Role.String(),
			Position: n.Position,
			Address:  s.Address(n),
		}
	}

	return info
}

// Builder can build scenarios.
type Builder struct {
	name       string
	config     Config
	engine     sim.Engine
	tracers    []tracing.Tracer
	monitor    *flowmon.Monitor
	pcapWriter io.Writer
}

// MakeBuilder creates a Builder with the default configuration.
func MakeBuilder() Builder {
	return Builder{
		name:   "Net",
		config: DefaultConfig(),
	}
}

// WithName sets the name of the network.
func (b Builder) WithName(name string) Builder {
	b.name = name
	return b
}

// WithConfig sets the configuration.
func (b Builder) WithConfig(c Config) Builder {
	b.config = c
	return b
}

// WithEngine sets the engine. A serial engine is used if not set.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithTracer adds a tracer that collects the frame exchanges of the medium.
func (b Builder) WithTracer(t tracing.Tracer) Builder {
	b.tracers = append(b.tracers, t)
	return b
}

// WithMonitor sets the flow monitor. A new monitor is created if not set.
func (b Builder) WithMonitor(m *flowmon.Monitor) Builder {
	b.monitor = m
	return b
}

// WithPcapWriter captures delivered packets into w in the pcap format.
func (b Builder) WithPcapWriter(w io.Writer) Builder {
	b.pcapWriter = w
	return b
}

// Build validates the configuration and wires the network.
func (b Builder) Build() (*Scenario, error) {
	sim.NameMustBeValid(b.name)

	c := b.config
	if err := c.Validate(); err != nil {
		return nil, err
	}

	s := &Scenario{
		name:   b.name,
		config: c,
		engine: b.engine,
	}

	if s.engine == nil {
		s.engine = sim.NewSerialEngine()
	}

	if err := b.buildNetwork(s); err != nil {
		return nil, err
	}

	if err := b.buildTraffic(s); err != nil {
		return nil, err
	}

	if err := b.buildInstruments(s); err != nil {
		return nil, err
	}

	return s, nil
}

func (b Builder) buildNetwork(s *Scenario) error {
	c := s.config

	placement, _ := c.placement()

	topo, err := topology.MakeBuilder().
		WithName(b.name).
		WithPlacement(placement).
		Build(c.StationCount)
	if err != nil {
		return err
	}

	s.topology = topo

	s.addresses, err = addressing.NewAllocator(c.Subnet)
	if err != nil {
		return err
	}

	nodes := append([]topology.Node{topo.AP}, topo.Stations...)
	for _, n := range nodes {
		if _, err := s.addresses.Assign(n.Name); err != nil {
			return err
		}
	}

	medium, err := b.buildMedium(s)
	if err != nil {
		return err
	}

	s.medium = medium

	deviceBuilder := wireless.MakeDeviceBuilder().
		WithEngine(s.engine).
		WithMedium(medium).
		WithTxPower(c.TxPower).
		WithQueueSize(c.QueueSize)

	s.ap = deviceBuilder.
		WithAddress(s.Address(topo.AP)).
		WithPosition(topo.AP.Position).
		WithBeaconInterval(sim.VTimeInSec(c.BeaconInterval)).
		Build(topo.AP.Name)

	for _, n := range topo.Stations {
		d := deviceBuilder.
			WithAddress(s.Address(n)).
			WithPosition(n.Position).
			Build(n.Name)
		s.stations = append(s.stations, d)
	}

	return nil
}

func (b Builder) buildMedium(s *Scenario) (*wireless.Medium, error) {
	c := s.config

	standard, err := wireless.LookupStandard(c.Standard)
	if err != nil {
		return nil, err
	}

	loss, err := wireless.NewLossModel(
		c.LossModel, c.LossExponent, standard.Frequency)
	if err != nil {
		return nil, err
	}

	rates, err := wireless.NewRateManager(
		c.RateManager, standard, c.DataMode, c.ControlMode)
	if err != nil {
		return nil, err
	}

	return wireless.MakeMediumBuilder().
		WithEngine(s.engine).
		WithStandard(standard).
		WithLossModel(loss).
		WithRateManager(rates).
		WithRTSThreshold(c.rtsThreshold()).
		WithSeed(c.Seed).
		Build(sim.BuildName(b.name, "Medium")), nil
}

func (b Builder) buildTraffic(s *Scenario) error {
	c := s.config

	protocol, _ := traffic.ParseProtocol(c.Protocol)
	stagger, _ := c.stagger()

	schedule, err := traffic.Generate(s.topology, s.Address(s.topology.AP),
		traffic.Params{
			ActiveCount: c.ActiveCount,
			DataRate:    c.ClientDataRate,
			PacketSize:  c.PacketSize,
			Protocol:    protocol,
			Port:        c.Port,
			Windows:     c.windows(),
			Stagger:     stagger,
		})
	if err != nil {
		return err
	}

	s.schedule = schedule

	sink := schedule.Sink
	s.sink = app.NewPacketSink(s.engine,
		netip.AddrPortFrom(netip.IPv4Unspecified(), sink.Address.Port()),
		sink.Window.Start, sink.Window.Stop)
	s.ap.SetReceiver(s.sink)

	for _, src := range schedule.Installed() {
		onoff, err := app.MakeOnOffBuilder().
			WithEngine(s.engine).
			WithDevice(s.stations[src.Station.Index]).
			WithRemote(src.Destination).
			WithPacketSize(src.PacketSize).
			WithDataRate(src.DataRate).
			WithWindow(src.Start, src.Stop).
			Build(sim.BuildName(src.Station.Name, "OnOff"))
		if err != nil {
			return err
		}

		s.apps = append(s.apps, onoff)
	}

	return nil
}

func (b Builder) buildInstruments(s *Scenario) error {
	s.monitor = b.monitor
	if s.monitor == nil {
		s.monitor = flowmon.NewMonitor(s.engine, flowmon.NewClassifier())
	}

	if b.pcapWriter != nil {
		sniffer, err := wireless.NewPcapSniffer(s.engine, b.pcapWriter)
		if err != nil {
			return err
		}

		s.sniffer = sniffer
	}

	devices := append([]*wireless.Device{s.ap}, s.stations...)
	for _, d := range devices {
		d.AcceptHook(s.monitor)

		if s.sniffer != nil {
			d.AcceptHook(s.sniffer)
		}
	}

	s.busy = tracing.NewBusyTimeTracer(s.engine,
		tracing.KindFilter(wireless.TaskKindExchange))
	tracing.CollectTrace(s.medium, s.busy)

	for _, t := range b.tracers {
		tracing.CollectTrace(s.medium, t)
	}

	return nil
}
