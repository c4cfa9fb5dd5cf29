package osc

import (
	"io"

	"github.com/Lobaro/slip"
)

// StreamReader reads SLIP framed packets, the OSC 1.1 framing for stream
// transports such as TCP or serial lines.
type StreamReader struct {
	r      *slip.Reader
	Strict bool
}

// NewStreamReader returns a StreamReader reading from r.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{r: slip.NewReader(r)}
}

// ReadRaw returns the next non-empty frame.
func (s *StreamReader) ReadRaw() ([]byte, error) {
	var frame []byte
	for {
		packet, isPrefix, err := s.r.ReadPacket()
		frame = append(frame, packet...)
		if err != nil {
			if err == io.EOF && len(frame) > 0 {
				return frame, nil
			}
			return nil, err
		}
		if isPrefix || len(frame) == 0 {
			continue
		}
		return frame, nil
	}
}

// ReadPacket reads and decodes the next packet.
func (s *StreamReader) ReadPacket() (Packet, error) {
	data, err := s.ReadRaw()
	if err != nil {
		return nil, err
	}
	return DecodePacket(data, s.Strict)
}

// StreamWriter writes SLIP framed packets.
type StreamWriter struct {
	w      *slip.Writer
	Strict bool
}

// NewStreamWriter returns a StreamWriter writing to w.
func NewStreamWriter(w io.Writer) *StreamWriter {
	return &StreamWriter{w: slip.NewWriter(w)}
}

// WriteRaw frames an already encoded packet.
func (s *StreamWriter) WriteRaw(data []byte) error {
	return s.w.WritePacket(data)
}

// WritePacket encodes p with EncodePacket and frames it.
func (s *StreamWriter) WritePacket(p interface{}) error {
	data, err := EncodePacket(p, s.Strict)
	if err != nil {
		return err
	}
	return s.w.WritePacket(data)
}
