// Package addressing assigns IPv4 addresses to the nodes of a scenario from a
// single subnet.
package addressing

import (
	"errors"
	"fmt"
	"net/netip"
)

// ErrSubnetExhausted is returned when no host address is left in the subnet.
var ErrSubnetExhausted = errors.New("no available IP addresses")

// Allocator hands out host addresses of a subnet in ascending order, skipping
// the network and broadcast addresses.
type Allocator struct {
	prefix   netip.Prefix
	next     netip.Addr
	assigned map[string]netip.Addr
	owners   map[netip.Addr]string
}

// NewAllocator creates an allocator over an IPv4 subnet in CIDR notation,
// such as "10.0.0.0/24".
func NewAllocator(cidr string) (*Allocator, error) {
	prefix, err := netip.ParsePrefix(cidr)
	if err != nil {
		return nil, fmt.Errorf("invalid subnet %q: %w", cidr, err)
	}

	if !prefix.Addr().Is4() {
		return nil, fmt.Errorf("subnet %q is not IPv4", cidr)
	}

	if prefix.Bits() > 30 {
		return nil, fmt.Errorf("subnet %q has no room for hosts", cidr)
	}

	prefix = prefix.Masked()

	return &Allocator{
		prefix:   prefix,
		next:     prefix.Addr().Next(),
		assigned: make(map[string]netip.Addr),
		owners:   make(map[netip.Addr]string),
	}, nil
}

// Assign returns the address of the owner, allocating the next free one if
// the owner does not have an address yet.
func (a *Allocator) Assign(owner string) (netip.Addr, error) {
	if addr, ok := a.assigned[owner]; ok {
		return addr, nil
	}

	if !a.isHost(a.next) {
		return netip.Addr{}, fmt.Errorf("%w in %s", ErrSubnetExhausted, a.prefix)
	}

	addr := a.next
	a.next = addr.Next()
	a.assigned[owner] = addr
	a.owners[addr] = owner

	return addr, nil
}

// Lookup returns the address assigned to the owner.
func (a *Allocator) Lookup(owner string) (netip.Addr, bool) {
	addr, ok := a.assigned[owner]
	return addr, ok
}

// Owner returns the owner of an address.
func (a *Allocator) Owner(addr netip.Addr) (string, bool) {
	owner, ok := a.owners[addr]
	return owner, ok
}

// Subnet returns the subnet that addresses are allocated from.
func (a *Allocator) Subnet() netip.Prefix {
	return a.prefix
}

func (a *Allocator) isHost(addr netip.Addr) bool {
	return a.prefix.Contains(addr) && addr != a.broadcast()
}

func (a *Allocator) broadcast() netip.Addr {
	b := a.prefix.Addr().As4()
	hostBits := 32 - a.prefix.Bits()

	for i := 3; i >= 0 && hostBits > 0; i-- {
		n := min(hostBits, 8)
		b[i] |= byte(1<<n - 1)
		hostBits -= n
	}

	return netip.AddrFrom4(b)
}
