package traffic

import "github.com/sarchlab/wlanbench/sim"

// DefaultStaggerIncrement is how long after the client start time sources
// begin sending. It keeps the first packet behind the sink.
const DefaultStaggerIncrement sim.VTimeInSec = 0.01

// A Stagger decides how far after the client start time each installed
// source starts.
type Stagger interface {
	// Offset returns the start offset of the i-th installed source.
	Offset(activeIndex int) sim.VTimeInSec
}

// UniformStagger starts every source at the same offset.
type UniformStagger struct {
	Increment sim.VTimeInSec
}

// Offset returns the shared increment.
func (s UniformStagger) Offset(_ int) sim.VTimeInSec {
	return s.Increment
}

// PerStationStagger starts source i at Base + i*Step so that stations do not
// transmit their first packets at the same instant.
type PerStationStagger struct {
	Base sim.VTimeInSec
	Step sim.VTimeInSec
}

// Offset returns Base + activeIndex*Step.
func (s PerStationStagger) Offset(activeIndex int) sim.VTimeInSec {
	return s.Base + sim.VTimeInSec(activeIndex)*s.Step
}
