package app

import (
	"fmt"
	"net/netip"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// HeaderLength is the size of the IPv4 and UDP headers.
const HeaderLength = 20 + 8

const defaultTTL = 64

// BuildUDPPacket serializes an IPv4 datagram that carries a UDP segment with
// a zero-filled payload.
func BuildUDPPacket(
	src, dst netip.AddrPort,
	id uint16,
	payloadSize int,
) ([]byte, error) {
	if !src.Addr().Is4() || !dst.Addr().Is4() {
		return nil, fmt.Errorf("UDP packets need IPv4 addresses, got %s -> %s",
			src, dst)
	}

	ip := &layers.IPv4{
		Version:  4,
		Id:       id,
		TTL:      defaultTTL,
		Protocol: layers.IPProtocolUDP,
		SrcIP:    src.Addr().AsSlice(),
		DstIP:    dst.Addr().AsSlice(),
	}

	udp := &layers.UDP{
		SrcPort: layers.UDPPort(src.Port()),
		DstPort: layers.UDPPort(dst.Port()),
	}
	if err := udp.SetNetworkLayerForChecksum(ip); err != nil {
		return nil, err
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{
		FixLengths:       true,
		ComputeChecksums: true,
	}

	err := gopacket.SerializeLayers(buf, opts,
		ip, udp, gopacket.Payload(make([]byte, payloadSize)))
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// UDPEndpoints decodes the addresses and ports of an IPv4/UDP datagram.
func UDPEndpoints(data []byte) (src, dst netip.AddrPort, ok bool) {
	packet := gopacket.NewPacket(data, layers.LayerTypeIPv4, gopacket.NoCopy)

	ip, isIP := packet.Layer(layers.LayerTypeIPv4).(*layers.IPv4)
	udp, isUDP := packet.Layer(layers.LayerTypeUDP).(*layers.UDP)
	if !isIP || !isUDP {
		return netip.AddrPort{}, netip.AddrPort{}, false
	}

	srcAddr, _ := netip.AddrFromSlice(ip.SrcIP.To4())
	dstAddr, _ := netip.AddrFromSlice(ip.DstIP.To4())

	return netip.AddrPortFrom(srcAddr, uint16(udp.SrcPort)),
		netip.AddrPortFrom(dstAddr, uint16(udp.DstPort)),
		true
}
