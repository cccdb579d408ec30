// Package traffic turns a topology into the set of traffic sources and the
// sink that drive a scenario.
package traffic

import (
	"errors"
	"fmt"
	"math"
	"net/netip"

	"github.com/sarchlab/wlanbench/sim"
	"github.com/sarchlab/wlanbench/topology"
)

// Configuration errors reported by Generate.
var (
	ErrTooManyActive      = errors.New("active station count exceeds station count")
	ErrNegativeActive     = errors.New("active station count must not be negative")
	ErrInvalidPacketSize  = errors.New("packet size must be positive")
	ErrMissingDataRate    = errors.New("data rate must not be empty")
	ErrInvalidWindow      = errors.New("invalid traffic window")
	ErrUncoveredWindow    = errors.New("server window does not cover client window")
	ErrStartBeforeServer  = errors.New("source starts before the server is listening")
	ErrStartAfterStop     = errors.New("source starts after the client stop time")
	ErrMissingDestination = errors.New("sink address is not valid")
)

// A Window is a period of simulated time.
type Window struct {
	Start sim.VTimeInSec
	Stop  sim.VTimeInSec
}

// Duration returns Stop - Start.
func (w Window) Duration() sim.VTimeInSec {
	return w.Stop - w.Start
}

// Covers tells if w contains o.
func (w Window) Covers(o Window) bool {
	return w.Start <= o.Start && w.Stop >= o.Stop
}

func (w Window) valid() bool {
	return !math.IsNaN(float64(w.Start)) &&
		!math.IsNaN(float64(w.Stop)) &&
		w.Start >= 0 && w.Stop > w.Start
}

// Windows holds the server and client activity periods.
type Windows struct {
	Server Window
	Client Window
}

// SinkDescriptor describes the packet sink installed on the access point.
type SinkDescriptor struct {
	Node     topology.Node
	Address  netip.AddrPort
	Protocol Protocol
	Window   Window
}

// SourceDescriptor describes the traffic source of one station. Sources with
// Installed set to false are never run.
type SourceDescriptor struct {
	Station     topology.Node
	Destination netip.AddrPort
	Protocol    Protocol
	PacketSize  int
	DataRate    string
	Start       sim.VTimeInSec
	Stop        sim.VTimeInSec
	OnTime      sim.VTimeInSec
	OffTime     sim.VTimeInSec
	Installed   bool
}

// Params configures the schedule.
type Params struct {
	ActiveCount int
	DataRate    string
	PacketSize  int
	Protocol    Protocol
	Port        uint16
	Windows     Windows

	// Stagger defaults to a UniformStagger with DefaultStaggerIncrement.
	Stagger Stagger
}

// Schedule is the traffic plan of a scenario.
type Schedule struct {
	Sink    SinkDescriptor
	Sources []SourceDescriptor
}

// Installed returns the sources that are going to run.
func (s Schedule) Installed() []SourceDescriptor {
	installed := make([]SourceDescriptor, 0, len(s.Sources))
	for _, src := range s.Sources {
		if src.Installed {
			installed = append(installed, src)
		}
	}

	return installed
}

// Generate creates one sink on the access point and one source per station.
// Only the first ActiveCount stations get an installed source. The data rate
// is carried as given and is only parsed by the application layer.
func Generate(
	topo topology.Topology,
	apAddr netip.Addr,
	params Params,
) (Schedule, error) {
	if err := validateParams(topo, apAddr, params); err != nil {
		return Schedule{}, err
	}

	stagger := params.Stagger
	if stagger == nil {
		stagger = UniformStagger{Increment: DefaultStaggerIncrement}
	}

	dst := netip.AddrPortFrom(apAddr, params.Port)
	s := Schedule{
		Sink: SinkDescriptor{
			Node:     topo.AP,
			Address:  dst,
			Protocol: params.Protocol,
			Window:   params.Windows.Server,
		},
		Sources: make([]SourceDescriptor, len(topo.Stations)),
	}

	client := params.Windows.Client
	for i, sta := range topo.Stations {
		src := SourceDescriptor{
			Station:     sta,
			Destination: dst,
			Protocol:    params.Protocol,
			PacketSize:  params.PacketSize,
			DataRate:    params.DataRate,
			Start:       client.Start,
			Stop:        client.Stop,
			Installed:   i < params.ActiveCount,
		}

		if src.Installed {
			src.Start = client.Start + stagger.Offset(i)
			if err := checkSourceStart(src, params.Windows); err != nil {
				return Schedule{}, err
			}
		}

		src.OnTime = src.Stop - src.Start
		src.OffTime = 0

		s.Sources[i] = src
	}

	return s, nil
}

func validateParams(
	topo topology.Topology,
	apAddr netip.Addr,
	params Params,
) error {
	switch {
	case params.ActiveCount < 0:
		return fmt.Errorf("%w: %d", ErrNegativeActive, params.ActiveCount)
	case params.ActiveCount > topo.StationCount():
		return fmt.Errorf("%w: %d active, %d stations",
			ErrTooManyActive, params.ActiveCount, topo.StationCount())
	case params.PacketSize <= 0:
		return fmt.Errorf("%w: %d", ErrInvalidPacketSize, params.PacketSize)
	case params.DataRate == "":
		return ErrMissingDataRate
	case !apAddr.IsValid():
		return ErrMissingDestination
	}

	w := params.Windows
	if !w.Server.valid() {
		return fmt.Errorf("%w: server [%g, %g]",
			ErrInvalidWindow, w.Server.Start, w.Server.Stop)
	}

	if !w.Client.valid() {
		return fmt.Errorf("%w: client [%g, %g]",
			ErrInvalidWindow, w.Client.Start, w.Client.Stop)
	}

	if !w.Server.Covers(w.Client) {
		return fmt.Errorf("%w: server [%g, %g], client [%g, %g]",
			ErrUncoveredWindow,
			w.Server.Start, w.Server.Stop, w.Client.Start, w.Client.Stop)
	}

	return nil
}

func checkSourceStart(src SourceDescriptor, w Windows) error {
	if src.Start <= w.Server.Start {
		return fmt.Errorf("%w: %s starts at %g, server at %g",
			ErrStartBeforeServer, src.Station.Name, src.Start, w.Server.Start)
	}

	if src.Start >= w.Client.Stop {
		return fmt.Errorf("%w: %s starts at %g, clients stop at %g",
			ErrStartAfterStop, src.Station.Name, src.Start, w.Client.Stop)
	}

	return nil
}
