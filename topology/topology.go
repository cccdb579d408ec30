// Package topology synthesizes the infrastructure-mode layout of a scenario:
// one access point at the origin and a set of stations around it.
package topology

import (
	"errors"
	"fmt"
	"math"

	"github.com/sarchlab/wlanbench/sim"
)

// ErrPlacementExhausted is returned when more stations are requested than the
// placement can locate.
var ErrPlacementExhausted = errors.New("station count exceeds placement capacity")

// ErrNegativeStationCount is returned when the station count is negative.
var ErrNegativeStationCount = errors.New("station count must not be negative")

// Role tells if a node is the access point or a client station.
type Role int

// The roles that a node can take.
const (
	AccessPoint Role = iota
	Station
)

func (r Role) String() string {
	switch r {
	case AccessPoint:
		return "AP"
	case Station:
		return "STA"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// Position is a location in meters. The access point is at the origin.
type Position struct {
	X, Y, Z float64
}

// DistanceTo returns the euclidean distance between two positions.
func (p Position) DistanceTo(q Position) float64 {
	dx, dy, dz := p.X-q.X, p.Y-q.Y, p.Z-q.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// A Node is a participant of the scenario. Nodes never move.
type Node struct {
	ID       int
	Name     string
	Role     Role
	Index    int
	Position Position
}

// Topology is the set of nodes in a scenario.
type Topology struct {
	AP       Node
	Stations []Node
}

// Nodes returns all the nodes, stations first and then the access point,
// which is also the order of node IDs.
func (t Topology) Nodes() []Node {
	nodes := make([]Node, 0, len(t.Stations)+1)
	nodes = append(nodes, t.Stations...)
	nodes = append(nodes, t.AP)

	return nodes
}

// StationCount returns the number of stations.
func (t Topology) StationCount() int {
	return len(t.Stations)
}

// Builder creates topologies.
type Builder struct {
	name      string
	placement Placement
}

// MakeBuilder creates a builder that uses the reference 12-slot table.
func MakeBuilder() Builder {
	return Builder{
		name:      "Net",
		placement: ReferenceTable(),
	}
}

// WithPlacement sets how stations are located.
func (b Builder) WithPlacement(p Placement) Builder {
	b.placement = p
	return b
}

// WithName sets the name prefix of the nodes.
func (b Builder) WithName(name string) Builder {
	b.name = name
	return b
}

// Build creates a topology with the given number of stations. The result only
// depends on the input, so identical requests produce identical topologies.
func (b Builder) Build(stationCount int) (Topology, error) {
	if stationCount < 0 {
		return Topology{}, fmt.Errorf("%w: %d",
			ErrNegativeStationCount, stationCount)
	}

	capacity := b.placement.Capacity()
	if capacity != Unlimited && stationCount > capacity {
		return Topology{}, fmt.Errorf("%w: %d stations, %d slots",
			ErrPlacementExhausted, stationCount, capacity)
	}

	t := Topology{
		Stations: make([]Node, stationCount),
	}

	for i := 0; i < stationCount; i++ {
		t.Stations[i] = Node{
			ID:       i,
			Name:     sim.BuildNameWithIndex(b.name, "STA", i),
			Role:     Station,
			Index:    i,
			Position: b.placement.Position(i, stationCount),
		}
	}

	t.AP = Node{
		ID:    stationCount,
		Name:  sim.BuildName(b.name, "AP"),
		Role:  AccessPoint,
		Index: -1,
	}

	return t, nil
}
