// Package capture pulls UDP payloads out of pcap and pcapng files so they can
// be decoded as OSC packets.
package capture

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

var pcapngMagic = []byte{0x0a, 0x0d, 0x0d, 0x0a}

// Datagram is one UDP payload found in a capture.
type Datagram struct {
	Timestamp time.Time
	Src       *net.UDPAddr
	Dst       *net.UDPAddr
	Payload   []byte
}

type packetSource interface {
	ReadPacketData() ([]byte, gopacket.CaptureInfo, error)
	LinkType() layers.LinkType
}

// Reader yields the UDP datagrams of a capture file in order.
type Reader struct {
	src packetSource

	// Port, when non-zero, keeps only datagrams sent from or to that port.
	Port uint16
}

// NewReader detects the file format of r and prepares to read it.
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(len(pcapngMagic))
	if err != nil {
		return nil, fmt.Errorf("failed to read capture header: %w", err)
	}

	var src packetSource
	if bytes.Equal(magic, pcapngMagic) {
		src, err = pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions)
	} else {
		src, err = pcapgo.NewReader(br)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open capture: %w", err)
	}
	return &Reader{src: src}, nil
}

// Next returns the next UDP datagram. Frames that are not UDP, or that do
// not match Port, are skipped. io.EOF marks the end of the capture.
func (r *Reader) Next() (*Datagram, error) {
	for {
		data, ci, err := r.src.ReadPacketData()
		if err != nil {
			return nil, err
		}

		pkt := gopacket.NewPacket(data, r.src.LinkType(), gopacket.NoCopy)
		d, ok := r.datagram(pkt)
		if !ok {
			continue
		}
		d.Timestamp = ci.Timestamp
		return d, nil
	}
}

func (r *Reader) datagram(pkt gopacket.Packet) (*Datagram, bool) {
	udp, ok := pkt.Layer(layers.LayerTypeUDP).(*layers.UDP)
	if !ok {
		return nil, false
	}
	if r.Port != 0 && uint16(udp.SrcPort) != r.Port && uint16(udp.DstPort) != r.Port {
		return nil, false
	}

	var srcIP, dstIP net.IP
	switch ip := pkt.NetworkLayer().(type) {
	case *layers.IPv4:
		srcIP, dstIP = ip.SrcIP, ip.DstIP
	case *layers.IPv6:
		srcIP, dstIP = ip.SrcIP, ip.DstIP
	}

	return &Datagram{
		Src:     &net.UDPAddr{IP: srcIP, Port: int(udp.SrcPort)},
		Dst:     &net.UDPAddr{IP: dstIP, Port: int(udp.DstPort)},
		Payload: append([]byte(nil), udp.Payload...),
	}, true
}
