package topology

import "math"

// Unlimited is the capacity of a placement that can locate any number of
// stations.
const Unlimited = -1

// A Placement decides where stations are located around the access point.
type Placement interface {
	// Capacity returns the maximum number of stations that the placement can
	// locate. Unlimited is returned for placements without a limit.
	Capacity() int

	// Position returns the location of the index-th station out of count
	// stations.
	Position(index, count int) Position
}

// TablePlacement places stations at fixed slots, indexed by station number.
type TablePlacement struct {
	slots []Position
}

// NewTablePlacement creates a placement backed by the given slots.
func NewTablePlacement(slots []Position) TablePlacement {
	s := make([]Position, len(slots))
	copy(s, slots)

	return TablePlacement{slots: s}
}

// ReferenceTable returns the 12-slot star layout. Every slot is 50 m away
// from the access point.
func ReferenceTable() TablePlacement {
	xs := []float64{50, -50, 0, 0, 40, -40, 30, -30, -30, 30, -40, 40}
	ys := []float64{0, 0, 50, -50, 30, -30, 40, -40, 40, -40, 30, -30}

	slots := make([]Position, len(xs))
	for i := range xs {
		slots[i] = Position{X: xs[i], Y: ys[i]}
	}

	return TablePlacement{slots: slots}
}

// Capacity returns the number of slots in the table.
func (p TablePlacement) Capacity() int {
	return len(p.slots)
}

// Position returns the slot of the station.
func (p TablePlacement) Position(index, _ int) Position {
	return p.slots[index]
}

// RingPlacement spreads stations evenly on a circle around the access point,
// station i at angle 2*pi*i/count.
type RingPlacement struct {
	Radius float64
}

// Capacity is unlimited for a ring.
func (p RingPlacement) Capacity() int {
	return Unlimited
}

// Position returns the point on the ring for the station.
func (p RingPlacement) Position(index, count int) Position {
	angle := 2 * math.Pi * float64(index) / float64(count)

	return Position{
		X: roundMillimeter(p.Radius * math.Cos(angle)),
		Y: roundMillimeter(p.Radius * math.Sin(angle)),
	}
}

func roundMillimeter(v float64) float64 {
	r := math.Round(v*1000) / 1000
	if r == 0 {
		return 0
	}

	return r
}
