package capture

import (
	"bytes"
	"io"
	"net"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func udpFrame(t *testing.T, srcPort, dstPort uint16, payload []byte) []byte {
	t.Helper()
	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0, 1, 2, 3, 4, 5},
		DstMAC:       net.HardwareAddr{6, 7, 8, 9, 10, 11},
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := &layers.IPv4{
		Version:  4,
		TTL:      64,
		Protocol: layers.IPProtocolUDP,
		SrcIP:    net.IPv4(10, 0, 0, 1),
		DstIP:    net.IPv4(10, 0, 0, 2),
	}
	udp := &layers.UDP{SrcPort: layers.UDPPort(srcPort), DstPort: layers.UDPPort(dstPort)}
	require.NoError(t, udp.SetNetworkLayerForChecksum(ip))

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	require.NoError(t, gopacket.SerializeLayers(buf, opts, eth, ip, udp, gopacket.Payload(payload)))
	return buf.Bytes()
}

func tcpFrame(t *testing.T) []byte {
	t.Helper()
	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0, 1, 2, 3, 4, 5},
		DstMAC:       net.HardwareAddr{6, 7, 8, 9, 10, 11},
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := &layers.IPv4{
		Version:  4,
		TTL:      64,
		Protocol: layers.IPProtocolTCP,
		SrcIP:    net.IPv4(10, 0, 0, 1),
		DstIP:    net.IPv4(10, 0, 0, 2),
	}
	tcp := &layers.TCP{SrcPort: 1234, DstPort: 80, SYN: true, Window: 1024}
	require.NoError(t, tcp.SetNetworkLayerForChecksum(ip))

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	require.NoError(t, gopacket.SerializeLayers(buf, opts, eth, ip, tcp))
	return buf.Bytes()
}

func writeCapture(t *testing.T, frames ...[]byte) *bytes.Buffer {
	t.Helper()
	var out bytes.Buffer
	w := pcapgo.NewWriter(&out)
	require.NoError(t, w.WriteFileHeader(65536, layers.LinkTypeEthernet))
	for i, f := range frames {
		ci := gopacket.CaptureInfo{
			Timestamp:     time.Unix(1600000000+int64(i), 0),
			CaptureLength: len(f),
			Length:        len(f),
		}
		require.NoError(t, w.WritePacket(ci, f))
	}
	return &out
}

func TestReader(t *testing.T) {
	capture := writeCapture(t,
		udpFrame(t, 50000, 9000, []byte("first")),
		tcpFrame(t),
		udpFrame(t, 50000, 53, []byte("dns")),
		udpFrame(t, 9000, 50000, []byte("reply")),
	)

	r, err := NewReader(capture)
	require.NoError(t, err)
	r.Port = 9000

	d, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), d.Payload)
	assert.Equal(t, "10.0.0.1:50000", d.Src.String())
	assert.Equal(t, "10.0.0.2:9000", d.Dst.String())
	assert.Equal(t, time.Unix(1600000000, 0).UTC(), d.Timestamp.UTC())

	d, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte("reply"), d.Payload)

	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReaderAllPorts(t *testing.T) {
	r, err := NewReader(writeCapture(t,
		udpFrame(t, 1, 2, []byte("a")),
		udpFrame(t, 3, 4, []byte("b")),
	))
	require.NoError(t, err)

	var payloads []string
	for {
		d, err := r.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		payloads = append(payloads, string(d.Payload))
	}
	assert.Equal(t, []string{"a", "b"}, payloads)
}

func TestNewReaderInvalid(t *testing.T) {
	_, err := NewReader(bytes.NewReader([]byte{1, 2}))
	assert.Error(t, err)

	_, err = NewReader(bytes.NewReader([]byte("definitely not a capture file")))
	assert.Error(t, err)
}
