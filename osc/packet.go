package osc

import (
	"encoding"
	"time"
)

// MaxDepth bounds the nesting of bundles inside bundles and of arrays inside
// arrays. Deeper input fails with ErrTooDeep.
const MaxDepth = 32

// Packet is the interface for Message and Bundle.
type Packet interface {
	encoding.BinaryMarshaler
	encode(strict bool, depth int) ([]byte, error)
}

// IsBundle reports whether data starts with the "#bundle" tag. Nothing is
// consumed.
func IsBundle(data []byte) bool {
	tag, _, _ := SplitString(data, false)
	return tag == bundleTagString
}

// DecodePacket parses an OSC packet, which is either a *Message or a *Bundle.
func DecodePacket(data []byte, strict bool) (Packet, error) {
	return decodePacket(data, strict, 0)
}

func decodePacket(data []byte, strict bool, depth int) (Packet, error) {
	if IsBundle(data) {
		b, err := decodeBundle(data, strict, depth)
		if err != nil {
			return nil, err
		}
		return b, nil
	}

	msg, err := DecodeMessage(data, strict)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// EncodePacket serializes v, which may be a Message, a Bundle (values or
// pointers), a bare address string or a generic map as produced by YAML and
// JSON decoders. See PacketFromMap for the map layout.
func EncodePacket(v interface{}, strict bool) ([]byte, error) {
	switch p := v.(type) {
	case nil:
		return nil, newError(KindMissingAddress, "no packet given")
	case *Message:
		return EncodeMessage(p, strict)
	case Message:
		return p.encode(strict, 0)
	case *Bundle:
		return EncodeBundle(p, strict)
	case Bundle:
		return p.encode(strict, 0)
	case string:
		return (&Message{Address: p}).encode(strict, 0)
	case map[string]interface{}:
		pkt, err := PacketFromMap(p, strict)
		if err != nil {
			return nil, err
		}
		return pkt.encode(strict, 0)
	}
	return nil, newError(KindTypeMismatch, "cannot encode %T as a packet", v)
}

// isNilPacket reports whether p is nil or a nil *Message or *Bundle.
func isNilPacket(p Packet) bool {
	switch t := p.(type) {
	case nil:
		return true
	case *Message:
		return t == nil
	case *Bundle:
		return t == nil
	}
	return false
}

////
// Generic map form
////

// PacketFromMap converts a generic map into a Packet.
//
// The "oscType" key ("message" or "bundle") decides the kind when present.
// Otherwise a "timetag" or "elements" key means bundle. Messages carry
// "address" and "args"; each argument is a bare value or a map with "type"
// (a canonical type name or code) and "value". Bundles carry "timetag" and
// "elements". A bundle without a timetag fails in strict mode and is stamped
// with the current time otherwise. Elements that cannot be converted are
// dropped.
func PacketFromMap(m map[string]interface{}, strict bool) (Packet, error) {
	return packetFromMap(m, strict, 0)
}

func packetFromMap(m map[string]interface{}, strict bool, depth int) (Packet, error) {
	if depth > MaxDepth {
		return nil, newError(KindTooDeep, "bundle nesting exceeds %d", MaxDepth)
	}

	if kind, ok := m["oscType"].(string); ok {
		if kind == "bundle" {
			return bundleFromMap(m, strict, depth)
		}
		return messageFromMap(m)
	}
	_, hasTimetag := m["timetag"]
	_, hasElements := m["elements"]
	if hasTimetag || hasElements {
		return bundleFromMap(m, strict, depth)
	}
	return messageFromMap(m)
}

func messageFromMap(m map[string]interface{}) (*Message, error) {
	addr, ok := m["address"].(string)
	if !ok {
		return nil, newError(KindMissingAddress, "address is %T", m["address"])
	}

	msg := &Message{Address: addr, Arguments: []interface{}{}}
	for _, arg := range listOf(m["args"]) {
		a, err := argumentFromMap(arg)
		if err != nil {
			return nil, err
		}
		msg.Arguments = append(msg.Arguments, a)
	}
	return msg, nil
}

func argumentFromMap(arg interface{}) (interface{}, error) {
	switch t := arg.(type) {
	case []interface{}:
		elems := make([]interface{}, 0, len(t))
		for _, e := range t {
			a, err := argumentFromMap(e)
			if err != nil {
				return nil, err
			}
			elems = append(elems, a)
		}
		return NewArray(elems...), nil

	case map[string]interface{}:
		name, typed := t["type"].(string)
		if !typed {
			// An untyped map with a list value is an array.
			if _, isList := t["value"].([]interface{}); isList {
				return argumentFromMap(t["value"])
			}
			return t["value"], nil
		}

		tag, err := LookupTypeName(name)
		if err != nil && len(name) == 1 {
			tag, err = LookupTypeTag(rune(name[0]))
		}
		if err != nil {
			return nil, err
		}

		value := t["value"]
		switch tag {
		case TypeArray:
			return argumentFromMap(listOf(value))
		case TypeBlob:
			value = blobValue(value)
		}
		return Argument{Type: tag, Value: value}, nil
	}
	return arg, nil
}

func bundleFromMap(m map[string]interface{}, strict bool, depth int) (*Bundle, error) {
	b := &Bundle{Elements: []Packet{}}

	if v, ok := m["timetag"]; ok && v != nil {
		tt, err := toTimetag(v)
		if err != nil {
			return nil, err
		}
		b.Timetag = tt
	} else if strict {
		return nil, newError(KindNullTimetag, "bundle has no timetag")
	} else {
		b.Timetag = TimetagFromTime(time.Now())
	}

	for i, elem := range listOf(m["elements"]) {
		var (
			pkt Packet
			err error
		)
		switch e := elem.(type) {
		case Packet:
			if isNilPacket(e) {
				err = newError(KindTypeMismatch, "element %d is a nil %T", i, e)
			}
			pkt = e
		case map[string]interface{}:
			pkt, err = packetFromMap(e, strict, depth+1)
		case string:
			pkt = &Message{Address: e}
		default:
			err = newError(KindTypeMismatch, "element is %T", elem)
		}
		if err != nil {
			if isTooDeep(err) {
				return nil, err
			}
			logDropped("convert", i, 0, err)
			continue
		}
		b.Elements = append(b.Elements, pkt)
	}
	return b, nil
}

// blobValue accepts the blob spellings that survive YAML and JSON: a string
// or a list of byte values.
func blobValue(v interface{}) interface{} {
	switch t := v.(type) {
	case string:
		return []byte(t)
	case []interface{}:
		b := make([]byte, len(t))
		for i, e := range t {
			u, err := toUint64(e, 8)
			if err != nil {
				return v
			}
			b[i] = byte(u)
		}
		return b
	}
	return v
}

// listOf wraps a lone value into a one element list.
func listOf(v interface{}) []interface{} {
	switch t := v.(type) {
	case nil:
		return nil
	case []interface{}:
		return t
	}
	return []interface{}{v}
}

// PacketToMap is the inverse of PacketFromMap. Arguments are written as
// {type, value} maps and timetags as [seconds, fraction] pairs. A nil packet
// gives a nil map and nil bundle elements are left out.
func PacketToMap(p Packet) map[string]interface{} {
	if isNilPacket(p) {
		return nil
	}
	switch t := p.(type) {
	case *Message:
		args := make([]interface{}, 0, len(t.Arguments))
		for _, arg := range t.Arguments {
			args = append(args, argumentToMap(arg))
		}
		return map[string]interface{}{
			"oscType": "message",
			"address": t.Address,
			"args":    args,
		}
	case *Bundle:
		elems := make([]interface{}, 0, len(t.Elements))
		for _, e := range t.Elements {
			if m := PacketToMap(e); m != nil {
				elems = append(elems, m)
			}
		}
		return map[string]interface{}{
			"oscType":  "bundle",
			"timetag":  timetagPair(t.Timetag),
			"elements": elems,
		}
	}
	return nil
}

func argumentToMap(arg interface{}) interface{} {
	if elems, ok := arrayElements(arg); ok {
		values := make([]interface{}, 0, len(elems))
		for _, e := range elems {
			values = append(values, argumentToMap(e))
		}
		return map[string]interface{}{"type": TypeArray.String(), "value": values}
	}

	tag, value, err := resolveArgument(arg)
	if err != nil {
		return map[string]interface{}{"value": arg}
	}
	if tag == TypeTimeTag {
		if tt, err := toTimetag(value); err == nil {
			value = timetagPair(tt)
		}
	}
	return map[string]interface{}{"type": tag.String(), "value": value}
}

func timetagPair(tt Timetag) []interface{} {
	return []interface{}{tt.Seconds(), tt.Fraction()}
}
