// Package replay reads packet captures and hands the transport payload of
// each IPv4/IPv6 packet to a handler.
package replay

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// ErrReassemblyNeeded may be returned by a handler that cannot use a
// fragment. Playback counts the frame as skipped and carries on.
var ErrReassemblyNeeded = errors.New("reassembly needed")

type IPFrame struct {
	FrameNumber uint64
	IsFragment  bool
	IPProtocol  layers.IPProtocol
	SrcAddr     net.IPAddr
	DstAddr     net.IPAddr
	SrcPort     uint16
	DstPort     uint16
	Data        []byte
}

func (f *IPFrame) String() string {
	return fmt.Sprintf("frame %d %s %s:%d > %s:%d", f.FrameNumber, f.IPProtocol, f.SrcAddr.IP, f.SrcPort, f.DstAddr.IP, f.DstPort)
}

type IPFrameHandler interface {
	HandleIPFrame(frame *IPFrame) error
}

type IPFrameHandleFunc func(frame *IPFrame) error

func (f IPFrameHandleFunc) HandleIPFrame(frame *IPFrame) error {
	return f(frame)
}

type Stats struct {
	Packets uint64 // every packet in the capture
	Frames  uint64 // packets with a UDP, TCP or ICMP payload
	Skipped uint64 // frames the handler returned ErrReassemblyNeeded for
}

func PlaybackFile(filename string, handler IPFrameHandler) (Stats, error) {
	f, err := os.Open(filename)
	if err != nil {
		return Stats{}, err
	}
	defer f.Close()
	return Playback(f, handler)
}

var pcapngMagic = []byte{0x0a, 0x0d, 0x0d, 0x0a}

type packetReader interface {
	gopacket.PacketDataSource
	LinkType() layers.LinkType
}

// Playback accepts both pcap and pcapng streams.
func Playback(r io.Reader, handler IPFrameHandler) (Stats, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(4)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to read capture header: %w", err)
	}
	var source packetReader
	if bytes.Equal(magic, pcapngMagic) {
		source, err = pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions)
	} else {
		source, err = pcapgo.NewReader(br)
	}
	if err != nil {
		return Stats{}, fmt.Errorf("failed to create pcap reader: %w", err)
	}

	stats := Stats{}
	packetSource := gopacket.NewPacketSource(source, source.LinkType())
	packetSource.DecodeOptions = gopacket.DecodeOptions{Lazy: true}
	ipFrame := &IPFrame{}
	for packet := range packetSource.Packets() {
		stats.Packets++
		ipFrame.FrameNumber = stats.Packets
		if !fillFrame(ipFrame, packet) {
			continue
		}
		stats.Frames++
		err := handler.HandleIPFrame(ipFrame)
		if errors.Is(err, ErrReassemblyNeeded) {
			stats.Skipped++
			continue
		}
		if err != nil {
			return stats, fmt.Errorf("failed to handle IP frame %d: %w", ipFrame.FrameNumber, err)
		}
	}

	return stats, nil
}

// fillFrame reports false for packets with nothing to hand on. Fragments
// carry the raw IP payload and no ports.
func fillFrame(ipFrame *IPFrame, packet gopacket.Packet) bool {
	var ipPayload []byte
	if ipV4 := packet.Layer(layers.LayerTypeIPv4); ipV4 != nil {
		ip := ipV4.(*layers.IPv4)
		ipFrame.IsFragment = ip.Flags&layers.IPv4MoreFragments != 0 || ip.FragOffset != 0
		ipFrame.IPProtocol = ip.Protocol
		ipFrame.SrcAddr = net.IPAddr{IP: ip.SrcIP}
		ipFrame.DstAddr = net.IPAddr{IP: ip.DstIP}
		ipPayload = ip.Payload
	} else if ipV6 := packet.Layer(layers.LayerTypeIPv6); ipV6 != nil {
		ip := ipV6.(*layers.IPv6)
		ipFrame.IPProtocol = ip.NextHeader
		ipFrame.SrcAddr = net.IPAddr{IP: ip.SrcIP}
		ipFrame.DstAddr = net.IPAddr{IP: ip.DstIP}
		frag := packet.Layer(layers.LayerTypeIPv6Fragment)
		ipFrame.IsFragment = frag != nil
		if frag != nil {
			ipPayload = frag.LayerPayload()
		}
	} else {
		return false
	}
	if ipFrame.IsFragment {
		ipFrame.SrcPort = 0
		ipFrame.DstPort = 0
		ipFrame.Data = ipPayload
		return true
	}
	if tcp := packet.Layer(layers.LayerTypeTCP); tcp != nil {
		tcp := tcp.(*layers.TCP)
		ipFrame.IPProtocol = layers.IPProtocolTCP
		ipFrame.SrcPort = uint16(tcp.SrcPort)
		ipFrame.DstPort = uint16(tcp.DstPort)
		ipFrame.Data = tcp.Payload
	} else if udp := packet.Layer(layers.LayerTypeUDP); udp != nil {
		udp := udp.(*layers.UDP)
		ipFrame.IPProtocol = layers.IPProtocolUDP
		ipFrame.SrcPort = uint16(udp.SrcPort)
		ipFrame.DstPort = uint16(udp.DstPort)
		ipFrame.Data = udp.Payload
	} else if icmp := packet.Layer(layers.LayerTypeICMPv4); icmp != nil {
		ipFrame.Data = icmp.LayerPayload()
		ipFrame.SrcPort = 0
		ipFrame.DstPort = 0
	} else if icmp := packet.Layer(layers.LayerTypeICMPv6); icmp != nil {
		ipFrame.Data = icmp.LayerPayload()
		ipFrame.SrcPort = 0
		ipFrame.DstPort = 0
	} else {
		return false
	}
	return true
}

// PortFilter passes on frames to or from port, eg 161 for SNMP. Fragments
// have no ports and are always passed on.
func PortFilter(port uint16, next IPFrameHandler) IPFrameHandler {
	return IPFrameHandleFunc(func(frame *IPFrame) error {
		if !frame.IsFragment && frame.SrcPort != port && frame.DstPort != port {
			return nil
		}
		return next.HandleIPFrame(frame)
	})
}
