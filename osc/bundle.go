package osc

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const bundleTagString = "#bundle"

// Bundle represents an OSC bundle. It consists of the OSC-string "#bundle"
// followed by an OSC Time Tag, followed by zero or more OSC bundle/message
// elements. The OSC-timetag is a 64-bit fixed point time tag. See
// http://opensoundcontrol.org/spec-1_0 for more information.
type Bundle struct {
	Timetag  Timetag
	Elements []Packet
}

// Verify that Bundle implements the Packet interface.
var _ Packet = (*Bundle)(nil)

// NewBundle returns an OSC Bundle. Use this function to create a new OSC
// Bundle.
func NewBundle(time time.Time) *Bundle {
	return &Bundle{
		Timetag:  TimetagFromTime(time),
		Elements: []Packet{},
	}
}

// Append appends an OSC bundle or OSC message to the bundle.
func (b *Bundle) Append(pck Packet) error {
	switch t := pck.(type) {
	case *Bundle:
		if t == nil {
			return fmt.Errorf("nil bundle")
		}
	case *Message:
		if t == nil {
			return fmt.Errorf("nil message")
		}
	default:
		return fmt.Errorf("unsupported OSC packet type: only Bundle and Message are supported")
	}
	b.Elements = append(b.Elements, pck)
	return nil
}

// Messages returns the messages directly contained in the bundle.
func (b *Bundle) Messages() []*Message {
	var msgs []*Message
	for _, e := range b.Elements {
		if m, ok := e.(*Message); ok && m != nil {
			msgs = append(msgs, m)
		}
	}
	return msgs
}

// Bundles returns the bundles directly contained in the bundle.
func (b *Bundle) Bundles() []*Bundle {
	var bundles []*Bundle
	for _, e := range b.Elements {
		if bd, ok := e.(*Bundle); ok && bd != nil {
			bundles = append(bundles, bd)
		}
	}
	return bundles
}

func (b *Bundle) String() string {
	if b == nil {
		return ""
	}
	parts := make([]string, 0, len(b.Elements))
	for _, e := range b.Elements {
		if s, ok := e.(fmt.Stringer); ok && !isNilPacket(e) {
			parts = append(parts, s.String())
		}
	}
	return fmt.Sprintf("%s %d {%s}", bundleTagString, b.Timetag.TimeTag(), strings.Join(parts, "; "))
}

// MarshalBinary implements encoding.BinaryMarshaler using strict encoding.
func (b *Bundle) MarshalBinary() ([]byte, error) {
	return EncodeBundle(b, true)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler using lenient
// decoding.
func (b *Bundle) UnmarshalBinary(data []byte) error {
	bd, err := DecodeBundle(data, false)
	if err != nil {
		return err
	}
	*b = *bd
	return nil
}

// EncodeBundle serializes b. Elements that fail to encode are dropped; only
// ErrTooDeep is passed on.
func EncodeBundle(b *Bundle, strict bool) ([]byte, error) {
	return b.encode(strict, 0)
}

func (b *Bundle) encode(strict bool, depth int) ([]byte, error) {
	if b == nil {
		return nil, newError(KindNullTimetag, "bundle is nil")
	}
	if depth > MaxDepth {
		return nil, newError(KindTooDeep, "bundle nesting exceeds %d", MaxDepth)
	}

	data := appendString(nil, bundleTagString)
	tt, _ := b.Timetag.MarshalBinary()
	data = append(data, tt...)

	for i, elem := range b.Elements {
		if elem == nil {
			logDropped("encode", i, 0, errors.New("nil element"))
			continue
		}

		// Typed nils fail in encode and are dropped below.
		buf, err := elem.encode(strict, depth+1)
		if err != nil {
			if isTooDeep(err) {
				return nil, err
			}
			logDropped("encode", i, 0, err)
			continue
		}

		data = appendUint32(data, uint32(len(buf)))
		data = append(data, buf...)
	}

	return data, nil
}

// DecodeBundle parses an OSC bundle. The "#bundle" tag is required in both
// modes. An element length past the end of data fails with
// ErrTruncatedBundle, while elements that fail to decode are dropped.
func DecodeBundle(data []byte, strict bool) (*Bundle, error) {
	return decodeBundle(data, strict, 0)
}

func decodeBundle(data []byte, strict bool, depth int) (*Bundle, error) {
	if depth > MaxDepth {
		return nil, newError(KindTooDeep, "bundle nesting exceeds %d", MaxDepth)
	}

	tag, rest, err := SplitString(data, strict)
	if err != nil {
		return nil, fmt.Errorf("bundle tag: %w", err)
	}
	if tag != bundleTagString {
		return nil, newError(KindNotABundle, "invalid bundle tag %q", tag)
	}

	timetag, rest, err := SplitTimetag(rest)
	if err != nil {
		return nil, fmt.Errorf("bundle timetag: %w", err)
	}

	b := &Bundle{Timetag: timetag, Elements: []Packet{}}
	err = eachElement(rest, func(_ int, elem []byte) error {
		pkt, err := decodePacket(elem, strict, depth+1)
		if err != nil {
			return err
		}
		b.Elements = append(b.Elements, pkt)
		return nil
	}, "decode")
	if err != nil {
		return nil, err
	}
	return b, nil
}

// eachElement walks the length-framed elements of a bundle body. Errors from
// fn drop the element; broken framing and ErrTooDeep end the walk.
func eachElement(data []byte, fn func(index int, elem []byte) error, op string) error {
	for i := 0; len(data) > 0; i++ {
		n, rest, err := splitUint32(data)
		if err != nil {
			return newError(KindTruncatedBundle, "element %d: %d stray bytes", i, len(data))
		}
		if uint64(n) > uint64(len(rest)) {
			return newError(KindTruncatedBundle, "element %d declares %d bytes, have %d", i, n, len(rest))
		}

		elem := rest[:n]
		data = rest[n:]

		if err := fn(i, elem); err != nil {
			if isTooDeep(err) {
				return err
			}
			logDropped(op, i, len(elem), err)
		}
	}
	return nil
}

func isTooDeep(err error) bool {
	return errors.Is(err, ErrTooDeep)
}
