// Package wireless models the IEEE 802.11 channel shared by the access point
// and the stations: PHY modes, propagation, rate control, devices, and the
// medium that arbitrates access with DCF.
package wireless

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/sarchlab/wlanbench/sim"
)

// ErrUnknownStandard is returned when a standard name is not recognized.
var ErrUnknownStandard = errors.New("unknown wifi standard")

// ErrUnknownMode is returned when a mode is not supported by a standard.
var ErrUnknownMode = errors.New("unsupported wifi mode")

// Modulation is the way that a mode encodes bits on the air.
type Modulation int

// Supported modulation families.
const (
	DSSS Modulation = iota
	OFDM
)

// A Mode is a PHY transmission mode.
type Mode struct {
	Name           string
	Modulation     Modulation
	DataRate       float64 // bits per second
	ChannelWidth   float64 // MHz
	MinSNR         float64 // dB needed to decode
	HighThroughput bool
}

// SNR returns the signal to noise ratio in dB of a signal received at the
// given power over the channel width of the mode.
func (m Mode) SNR(rxPower float64) float64 {
	return rxPower - NoiseFloor(m.ChannelWidth)
}

// Decodable tells if a frame received at the given power can be decoded.
func (m Mode) Decodable(rxPower float64) bool {
	return m.SNR(rxPower) >= m.MinSNR
}

// BitsPerSymbol returns the data bits carried by one 4 us OFDM symbol.
func (m Mode) BitsPerSymbol() float64 {
	return m.DataRate * ofdmSymbolDuration
}

// A Standard is a variant of 802.11 with its timing and mode set.
type Standard struct {
	Name         string
	Frequency    float64 // MHz
	Slot         sim.VTimeInSec
	SIFS         sim.VTimeInSec
	CWMin        int
	CWMax        int
	Modes        []Mode
	BeaconLength int // bytes
}

// DIFS returns SIFS plus two slots.
func (s Standard) DIFS() sim.VTimeInSec {
	return s.SIFS + 2*s.Slot
}

// Mode looks up a mode by name.
func (s Standard) Mode(name string) (Mode, error) {
	for _, m := range s.Modes {
		if m.Name == name {
			return m, nil
		}
	}

	return Mode{}, fmt.Errorf("%w: %s does not support %q",
		ErrUnknownMode, s.Name, name)
}

// BasicMode returns the most robust mode of the standard, which is used for
// management frames.
func (s Standard) BasicMode() Mode {
	best := s.Modes[0]
	for _, m := range s.Modes[1:] {
		if m.MinSNR < best.MinSNR {
			best = m
		}
	}

	return best
}

// FrameDuration returns how long a frame of the given size occupies the
// channel in the given mode, including the PHY preamble and header.
func (s Standard) FrameDuration(bytes int, mode Mode) sim.VTimeInSec {
	if mode.Modulation == DSSS {
		bits := float64(bytes * 8)
		return dsssPreamble + sim.VTimeInSec(bits/mode.DataRate)
	}

	preamble := ofdmPreamble
	if mode.HighThroughput {
		preamble = htPreamble
	}

	bits := float64(ofdmServiceBits + 8*bytes + ofdmTailBits)
	symbols := math.Ceil(bits / mode.BitsPerSymbol())

	return preamble + sim.VTimeInSec(symbols*ofdmSymbolDuration)
}

const (
	ofdmSymbolDuration = 4e-6
	ofdmServiceBits    = 16
	ofdmTailBits       = 6
	defaultCWMax       = 1023
	defaultBeacon      = 100

	ofdmPreamble sim.VTimeInSec = 20e-6
	htPreamble   sim.VTimeInSec = 36e-6
	dsssPreamble sim.VTimeInSec = 192e-6
)

var standards = map[string]Standard{}

// LookupStandard finds a standard by name, such as "80211n_2_4GHZ". The
// ns-3 style "WIFI_PHY_STANDARD_80211a" names are also accepted.
func LookupStandard(name string) (Standard, error) {
	s, ok := standards[normalizeStandardName(name)]
	if !ok {
		return Standard{}, fmt.Errorf("%w: %q", ErrUnknownStandard, name)
	}

	return s, nil
}

// StandardNames returns the names of all standards, sorted.
func StandardNames() []string {
	names := make([]string, 0, len(standards))
	for name := range standards {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func normalizeStandardName(name string) string {
	const prefix = "WIFI_PHY_STANDARD_"
	if len(name) > len(prefix) && name[:len(prefix)] == prefix {
		return name[len(prefix):]
	}

	return name
}

func registerStandard(s Standard) {
	if s.CWMax == 0 {
		s.CWMax = defaultCWMax
	}

	if s.BeaconLength == 0 {
		s.BeaconLength = defaultBeacon
	}

	standards[s.Name] = s
}

func init() {
	registerStandard(Standard{
		Name:      "80211a",
		Frequency: 5180,
		Slot:      9e-6,
		SIFS:      16e-6,
		CWMin:     15,
		Modes:     ofdmModes("OfdmRate"),
	})

	registerStandard(Standard{
		Name:      "80211b",
		Frequency: 2412,
		Slot:      20e-6,
		SIFS:      10e-6,
		CWMin:     31,
		Modes:     dsssModes(),
	})

	registerStandard(Standard{
		Name:      "80211g",
		Frequency: 2412,
		Slot:      9e-6,
		SIFS:      10e-6,
		CWMin:     15,
		Modes:     append(ofdmModes("ErpOfdmRate"), dsssModes()...),
	})

	registerStandard(Standard{
		Name:      "80211n_2_4GHZ",
		Frequency: 2412,
		Slot:      9e-6,
		SIFS:      10e-6,
		CWMin:     15,
		Modes: concatModes(
			htModes(20), htModes(40),
			ofdmModes("ErpOfdmRate"), dsssModes(),
		),
	})

	registerStandard(Standard{
		Name:      "80211n_5GHZ",
		Frequency: 5180,
		Slot:      9e-6,
		SIFS:      16e-6,
		CWMin:     15,
		Modes: concatModes(
			htModes(20), htModes(40), ofdmModes("OfdmRate"),
		),
	})
}

// minimum SNR per modulation and coding scheme
var (
	snrBPSK12  = 2.0
	snrBPSK34  = 4.0
	snrQPSK12  = 5.0
	snrQPSK34  = 8.0
	snrQAM1612 = 11.0
	snrQAM1634 = 15.0
	snrQAM6423 = 19.0
	snrQAM6434 = 21.0
	snrQAM6456 = 25.0
)

func ofdmModes(prefix string) []Mode {
	rates := []struct {
		name string
		rate float64
		snr  float64
	}{
		{"6", 6e6, snrBPSK12},
		{"9", 9e6, snrBPSK34},
		{"12", 12e6, snrQPSK12},
		{"18", 18e6, snrQPSK34},
		{"24", 24e6, snrQAM1612},
		{"36", 36e6, snrQAM1634},
		{"48", 48e6, snrQAM6423},
		{"54", 54e6, snrQAM6434},
	}

	modes := make([]Mode, 0, len(rates))
	for _, r := range rates {
		modes = append(modes, Mode{
			Name:         prefix + r.name + "Mbps",
			Modulation:   OFDM,
			DataRate:     r.rate,
			ChannelWidth: 20,
			MinSNR:       r.snr,
		})
	}

	return modes
}

func htModes(width float64) []Mode {
	type mcs struct {
		rate20, rate40 string
		bps20          float64
		snr            float64
	}

	table := []mcs{
		{"6_5", "13_5", 6.5e6, snrBPSK12},
		{"13", "27", 13e6, snrQPSK12},
		{"19_5", "40_5", 19.5e6, snrQPSK34},
		{"26", "54", 26e6, snrQAM1612},
		{"39", "81", 39e6, snrQAM1634},
		{"52", "108", 52e6, snrQAM6423},
		{"58_5", "121_5", 58.5e6, snrQAM6434},
		{"65", "135", 65e6, snrQAM6456},
	}

	modes := make([]Mode, 0, len(table))
	for _, m := range table {
		name, rate := m.rate20, m.bps20
		if width == 40 {
			name, rate = m.rate40, m.bps20*27/13
		}

		modes = append(modes, Mode{
			Name:           fmt.Sprintf("OfdmRate%sMbpsBW%.0fMHz", name, width),
			Modulation:     OFDM,
			DataRate:       rate,
			ChannelWidth:   width,
			MinSNR:         m.snr,
			HighThroughput: true,
		})
	}

	return modes
}

func dsssModes() []Mode {
	return []Mode{
		{Name: "DsssRate1Mbps", DataRate: 1e6, ChannelWidth: 22, MinSNR: -1},
		{Name: "DsssRate2Mbps", DataRate: 2e6, ChannelWidth: 22, MinSNR: 1},
		{Name: "DsssRate5_5Mbps", DataRate: 5.5e6, ChannelWidth: 22, MinSNR: 4},
		{Name: "DsssRate11Mbps", DataRate: 11e6, ChannelWidth: 22, MinSNR: 7},
	}
}

func concatModes(groups ...[]Mode) []Mode {
	var modes []Mode
	for _, g := range groups {
		modes = append(modes, g...)
	}

	return modes
}
