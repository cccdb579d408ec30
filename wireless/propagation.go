package wireless

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/sarchlab/wlanbench/sim"
)

// ErrUnknownLossModel is returned when a propagation loss model name is not
// recognized.
var ErrUnknownLossModel = errors.New("unknown propagation loss model")

// SpeedOfLight is the propagation speed in meters per second.
const SpeedOfLight = 299792458.0

// A LossModel computes the received power of a transmission.
type LossModel interface {
	RxPower(txPowerDbm, distance float64) float64
}

// LogDistanceLoss attenuates with 10 * Exponent * log10(d / d0) beyond the
// reference distance.
type LogDistanceLoss struct {
	Exponent          float64
	ReferenceDistance float64 // meters
	ReferenceLoss     float64 // dB at the reference distance
}

// RxPower returns the received power in dBm.
func (m LogDistanceLoss) RxPower(txPowerDbm, distance float64) float64 {
	if distance <= m.ReferenceDistance {
		return txPowerDbm - m.ReferenceLoss
	}

	loss := 10 * m.Exponent * math.Log10(distance/m.ReferenceDistance)

	return txPowerDbm - m.ReferenceLoss - loss
}

// FriisLoss is the free space loss at a carrier frequency.
type FriisLoss struct {
	Frequency float64 // MHz
}

// RxPower returns the received power in dBm.
func (m FriisLoss) RxPower(txPowerDbm, distance float64) float64 {
	if distance <= 0 {
		return txPowerDbm
	}

	lambda := SpeedOfLight / (m.Frequency * 1e6)
	loss := -20 * math.Log10(lambda/(4*math.Pi*distance))

	return txPowerDbm - math.Max(loss, 0)
}

// DefaultReferenceLoss is the log-distance loss at 1 m for 5.15 GHz, which
// is also the default used for every band.
const DefaultReferenceLoss = 46.6777

// NewLossModel creates a loss model by name. Names are matched without case
// and the ns-3 style "ns3::LogDistancePropagationLossModel" is accepted.
func NewLossModel(
	name string,
	exponent float64,
	frequency float64,
) (LossModel, error) {
	n := strings.ToLower(strings.TrimPrefix(name, "ns3::"))
	n = strings.TrimSuffix(n, "propagationlossmodel")

	switch n {
	case "logdistance":
		if exponent <= 0 {
			return nil, fmt.Errorf("%w: exponent must be positive, got %g",
				ErrUnknownLossModel, exponent)
		}

		return LogDistanceLoss{
			Exponent:          exponent,
			ReferenceDistance: 1,
			ReferenceLoss:     DefaultReferenceLoss,
		}, nil
	case "friis":
		return FriisLoss{Frequency: frequency}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownLossModel, name)
	}
}

// A DelayModel computes how long a signal takes to travel.
type DelayModel interface {
	Delay(distance float64) sim.VTimeInSec
}

// ConstantSpeedDelay propagates at a fixed speed.
type ConstantSpeedDelay struct {
	Speed float64
}

// Delay returns distance / speed.
func (m ConstantSpeedDelay) Delay(distance float64) sim.VTimeInSec {
	return sim.VTimeInSec(distance / m.Speed)
}

// NoiseFloor returns the thermal noise power in dBm over a channel width in
// MHz, including the receiver noise figure.
func NoiseFloor(channelWidth float64) float64 {
	const (
		thermalNoise = -174.0 // dBm/Hz at 290 K
		noiseFigure  = 7.0
	)

	return thermalNoise + 10*math.Log10(channelWidth*1e6) + noiseFigure
}
