// Package scenario assembles the access point, the stations, the traffic and
// the flow monitor of one run and reduces the outcome into throughput
// figures.
package scenario

import (
	"errors"
	"fmt"
	"net/netip"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sarchlab/wlanbench/sim"
	"github.com/sarchlab/wlanbench/topology"
	"github.com/sarchlab/wlanbench/traffic"
)

// ErrInvalidConfig is returned when a configuration value is out of range.
var ErrInvalidConfig = errors.New("invalid configuration")

// Placement names.
const (
	PlacementTable = "table"
	PlacementRing  = "ring"
)

// Stagger names.
const (
	StaggerUniform    = "uniform"
	StaggerPerStation = "per-station"
)

// RTSThresholdEnabled is the RTS threshold in bytes used when RTS/CTS is
// turned on.
const RTSThresholdEnabled = 1000

// Config holds every parameter of a run.
type Config struct {
	StationCount int `yaml:"staCount"`
	ActiveCount  int `yaml:"activeStaCount"`

	Standard    string `yaml:"standard"`
	DataMode    string `yaml:"dataMode"`
	ControlMode string `yaml:"controlMode"`
	RateManager string `yaml:"rateManager"`

	ClientDataRate string `yaml:"clientDataRate"`
	Protocol       string `yaml:"protocol"`
	Port           uint16 `yaml:"port"`
	PacketSize     int    `yaml:"packetSize"`

	LossModel    string  `yaml:"lossModel"`
	LossExponent float64 `yaml:"lossExponent"`
	TxPower      float64 `yaml:"txPower"`

	RTSCTS       bool `yaml:"rtsCts"`
	RTSThreshold int  `yaml:"rtsThreshold"`

	ServerStart float64 `yaml:"serverStart"`
	ServerStop  float64 `yaml:"serverStop"`
	ClientStart float64 `yaml:"clientStart"`
	ClientStop  float64 `yaml:"clientStop"`

	Placement  string  `yaml:"placement"`
	RingRadius float64 `yaml:"ringRadius"`

	Stagger          string  `yaml:"stagger"`
	StaggerIncrement float64 `yaml:"staggerIncrement"`

	Seed           int64   `yaml:"seed"`
	QueueSize      int     `yaml:"queueSize"`
	BeaconInterval float64 `yaml:"beaconInterval"`
	Subnet         string  `yaml:"subnet"`
}

// DefaultConfig returns the reference setup: 12 stations, all active,
// 802.11n at 2.4 GHz with a constant 6.5 Mbps mode, 1 Mbps UDP clients
// sending 1400-byte packets to port 10.
func DefaultConfig() Config {
	return Config{
		StationCount:     12,
		ActiveCount:      12,
		Standard:         "80211n_2_4GHZ",
		DataMode:         "OfdmRate6_5MbpsBW20MHz",
		ControlMode:      "OfdmRate6_5MbpsBW20MHz",
		RateManager:      "ns3::ConstantRateWifiManager",
		ClientDataRate:   "1Mbps",
		Protocol:         "ns3::UdpSocketFactory",
		Port:             10,
		PacketSize:       1400,
		LossModel:        "ns3::LogDistancePropagationLossModel",
		LossExponent:     3.2,
		TxPower:          16.0206,
		RTSThreshold:     RTSThresholdEnabled,
		ServerStart:      1,
		ServerStop:       3,
		ClientStart:      1,
		ClientStop:       3,
		Placement:        PlacementTable,
		RingRadius:       50,
		Stagger:          StaggerUniform,
		StaggerIncrement: float64(traffic.DefaultStaggerIncrement),
		Seed:             1,
		QueueSize:        500,
		BeaconInterval:   5,
		Subnet:           "10.0.0.0/24",
	}
}

// LoadConfig reads a YAML file. Fields missing from the file keep their
// default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("cannot read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}

	return cfg, nil
}

// Dump renders the configuration as YAML.
func (c Config) Dump() string {
	d, err := yaml.Marshal(c)
	if err != nil {
		panic(err)
	}

	return string(d)
}

// Validate checks the values that do not depend on the simulation
// substrate. Station counts and traffic windows are checked again when the
// topology and the traffic schedule are built.
func (c Config) Validate() error {
	switch {
	case c.StationCount < 0:
		return fmt.Errorf("%w: %d", topology.ErrNegativeStationCount,
			c.StationCount)
	case c.ActiveCount < 0:
		return fmt.Errorf("%w: %d", traffic.ErrNegativeActive, c.ActiveCount)
	case c.ActiveCount > c.StationCount:
		return fmt.Errorf("%w: %d active, %d stations",
			traffic.ErrTooManyActive, c.ActiveCount, c.StationCount)
	case c.PacketSize <= 0:
		return fmt.Errorf("%w: %d", traffic.ErrInvalidPacketSize, c.PacketSize)
	case c.ClientDataRate == "":
		return traffic.ErrMissingDataRate
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue size must be positive, got %d",
			ErrInvalidConfig, c.QueueSize)
	case c.BeaconInterval < 0:
		return fmt.Errorf("%w: beacon interval must not be negative, got %g",
			ErrInvalidConfig, c.BeaconInterval)
	case c.RTSCTS && c.RTSThreshold < 0:
		return fmt.Errorf("%w: RTS threshold must not be negative, got %d",
			ErrInvalidConfig, c.RTSThreshold)
	}

	if _, err := c.placement(); err != nil {
		return err
	}

	if _, err := c.stagger(); err != nil {
		return err
	}

	if _, err := netip.ParsePrefix(c.Subnet); err != nil {
		return fmt.Errorf("%w: subnet %q", ErrInvalidConfig, c.Subnet)
	}

	p, err := traffic.ParseProtocol(c.Protocol)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if !p.IsDatagram() {
		return fmt.Errorf("%w: only datagram traffic is supported, got %s",
			ErrInvalidConfig, p)
	}

	return nil
}

func (c Config) windows() traffic.Windows {
	return traffic.Windows{
		Server: traffic.Window{
			Start: sim.VTimeInSec(c.ServerStart),
			Stop:  sim.VTimeInSec(c.ServerStop),
		},
		Client: traffic.Window{
			Start: sim.VTimeInSec(c.ClientStart),
			Stop:  sim.VTimeInSec(c.ClientStop),
		},
	}
}

func (c Config) placement() (topology.Placement, error) {
	switch c.Placement {
	case PlacementTable, "":
		return topology.ReferenceTable(), nil
	case PlacementRing:
		if c.RingRadius <= 0 {
			return nil, fmt.Errorf("%w: ring radius must be positive, got %g",
				ErrInvalidConfig, c.RingRadius)
		}

		return topology.RingPlacement{Radius: c.RingRadius}, nil
	default:
		return nil, fmt.Errorf("%w: unknown placement %q",
			ErrInvalidConfig, c.Placement)
	}
}

func (c Config) stagger() (traffic.Stagger, error) {
	switch c.Stagger {
	case StaggerUniform, "":
		return traffic.UniformStagger{
			Increment: sim.VTimeInSec(c.StaggerIncrement),
		}, nil
	case StaggerPerStation:
		return traffic.PerStationStagger{
			Base: sim.VTimeInSec(c.StaggerIncrement),
			Step: sim.VTimeInSec(c.StaggerIncrement),
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown stagger %q",
			ErrInvalidConfig, c.Stagger)
	}
}

func (c Config) rtsThreshold() int {
	if !c.RTSCTS {
		return 0
	}

	return c.RTSThreshold
}
