package wireless

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownRateManager is returned when a rate adaptation name is not
// recognized.
var ErrUnknownRateManager = errors.New("unknown rate manager")

// A RateManager picks the modes used to transmit to a receiver.
type RateManager interface {
	// DataMode returns the mode of data frames on a link, given the power in
	// dBm that the receiver sees.
	DataMode(rxPower float64) Mode

	// ControlMode returns the mode of RTS, CTS, ACK and broadcast frames.
	ControlMode(rxPower float64) Mode
}

// ConstantRate always uses the same modes.
type ConstantRate struct {
	Data    Mode
	Control Mode
}

// DataMode returns the configured data mode.
func (r ConstantRate) DataMode(_ float64) Mode {
	return r.Data
}

// ControlMode returns the configured control mode.
func (r ConstantRate) ControlMode(_ float64) Mode {
	return r.Control
}

// IdealRate picks the fastest mode whose SNR threshold is met, assuming
// perfect knowledge of the link.
type IdealRate struct {
	modes []Mode
	basic Mode
}

// NewIdealRate creates an IdealRate over the modes of a standard.
func NewIdealRate(s Standard) IdealRate {
	return IdealRate{modes: s.Modes, basic: s.BasicMode()}
}

// DataMode returns the fastest mode that the link supports.
func (r IdealRate) DataMode(rxPower float64) Mode {
	best := r.basic
	for _, m := range r.modes {
		if m.Decodable(rxPower) && m.DataRate > best.DataRate {
			best = m
		}
	}

	return best
}

// ControlMode returns the most robust mode.
func (r IdealRate) ControlMode(_ float64) Mode {
	return r.basic
}

// NewRateManager creates a rate manager by name. Both "constant" and the ns-3
// "ns3::ConstantRateWifiManager" forms are accepted.
func NewRateManager(
	name string,
	s Standard,
	dataMode, controlMode string,
) (RateManager, error) {
	n := strings.ToLower(strings.TrimPrefix(name, "ns3::"))
	n = strings.TrimSuffix(n, "wifimanager")

	switch n {
	case "constantrate", "constant":
		return newConstantRate(s, dataMode, controlMode)
	case "ideal":
		return NewIdealRate(s), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRateManager, name)
	}
}

func newConstantRate(
	s Standard,
	dataMode, controlMode string,
) (ConstantRate, error) {
	data, err := s.Mode(dataMode)
	if err != nil {
		return ConstantRate{}, err
	}

	if controlMode == "" {
		controlMode = dataMode
	}

	control, err := s.Mode(controlMode)
	if err != nil {
		return ConstantRate{}, err
	}

	return ConstantRate{Data: data, Control: control}, nil
}
