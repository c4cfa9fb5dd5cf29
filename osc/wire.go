package osc

import (
	"bytes"
	"encoding/binary"
	"math"
	"reflect"
	"strconv"
	"strings"
)

const (
	bit32Size = 4
	bit64Size = 8
)

////
// OSC strings
////

// SplitString splits a leading OSC string off data and returns it together
// with the remaining bytes.
//
// The string ends at the first null byte and is followed by null padding up
// to the next multiple of four. In strict mode a missing terminator or a
// padding region that is short or not all zero is an error; otherwise the
// best-effort string is returned.
func SplitString(data []byte, strict bool) (string, []byte, error) {
	pos := bytes.IndexByte(data, 0)
	if pos == -1 {
		if strict {
			return "", nil, newError(KindMissingTerminator, "no null byte in %d bytes", len(data))
		}
		return string(data), data[len(data):], nil
	}

	end := pos + 1 + padBytesNeeded(pos+1)
	if end > len(data) {
		if strict {
			return "", nil, newError(KindBadPadding, "string needs %d bytes, have %d", end, len(data))
		}
		end = len(data)
	}

	if strict {
		for i := pos; i < end; i++ {
			if data[i] != 0 {
				return "", nil, newError(KindBadPadding, "non-null byte 0x%02x at offset %d", data[i], i)
			}
		}
	}

	return string(data[:pos]), data[end:], nil
}

// BuildString encodes str as an OSC string. Anything from the first embedded
// null byte on is dropped, which is an error in strict mode.
func BuildString(str string, strict bool) ([]byte, error) {
	if i := strings.IndexByte(str, 0); i != -1 {
		if strict {
			return nil, newError(KindEmbeddedNull, "null byte at offset %d", i)
		}
		str = str[:i]
	}
	return appendString(nil, str), nil
}

// appendString appends str, its terminator and padding to b. str must not
// contain null bytes.
func appendString(b []byte, str string) []byte {
	n := len(str) + 1
	b = append(b, str...)
	return append(b, make([]byte, 1+padBytesNeeded(n))...)
}

// padBytesNeeded determines how many bytes are needed to fill up to the next 4
// byte length.
func padBytesNeeded(elementLen int) int {
	return (4 - (elementLen % 4)) % 4
}

////
// Blobs
////

// splitBlob reads a 4 byte big-endian length followed by that many bytes.
// A declared length past the end of data is clipped unless strict is set.
func splitBlob(data []byte, strict bool) ([]byte, []byte, error) {
	n, rest, err := splitUint32(data)
	if err != nil {
		return nil, nil, err
	}

	blobLen := int(n)
	if blobLen > len(rest) || blobLen < 0 {
		if strict {
			return nil, nil, newError(KindBufferTooSmall, "blob of %d bytes, have %d", n, len(rest))
		}
		blobLen = len(rest)
	}

	blob := make([]byte, blobLen)
	copy(blob, rest)
	return blob, rest[blobLen:], nil
}

// buildBlob writes the length prefix followed by data.
func buildBlob(data []byte) []byte {
	b := make([]byte, bit32Size, bit32Size+len(data))
	binary.BigEndian.PutUint32(b, uint32(len(data)))
	return append(b, data...)
}

////
// Fixed width numbers
////

// IntegerType selects the width and representation used by SplitInteger and
// BuildInteger.
type IntegerType int

const (
	Int8 IntegerType = iota + 1
	Uint8
	Int16
	Uint16
	Int32
	Uint32
	Int64
	Uint64
	Float32
	Float64
)

var integerTypes = map[IntegerType]struct {
	name string
	size int
}{
	Int8:    {"Int8", 1},
	Uint8:   {"UInt8", 1},
	Int16:   {"Int16", 2},
	Uint16:  {"UInt16", 2},
	Int32:   {"Int32", 4},
	Uint32:  {"UInt32", 4},
	Int64:   {"Int64", 8},
	Uint64:  {"UInt64", 8},
	Float32: {"Float32", 4},
	Float64: {"Float64", 8},
}

func (t IntegerType) String() string {
	if it, ok := integerTypes[t]; ok {
		return it.name
	}
	return "IntegerType(" + strconv.Itoa(int(t)) + ")"
}

// Size returns the encoded width in bytes, or 0 for an unknown type.
func (t IntegerType) Size() int {
	return integerTypes[t].size
}

// SplitInteger decodes a big-endian number of type t from the front of data.
// The value is returned as the matching Go type (int8, uint16, float32, ...).
func SplitInteger(data []byte, t IntegerType) (interface{}, []byte, error) {
	size := t.Size()
	if size == 0 {
		return nil, nil, newError(KindUnsupportedWidth, "%s", t)
	}
	if len(data) < size {
		return nil, nil, newError(KindBufferTooSmall, "%s needs %d bytes, have %d", t, size, len(data))
	}

	b, rest := data[:size], data[size:]
	var v interface{}
	switch t {
	case Int8:
		v = int8(b[0])
	case Uint8:
		v = b[0]
	case Int16:
		v = int16(binary.BigEndian.Uint16(b))
	case Uint16:
		v = binary.BigEndian.Uint16(b)
	case Int32:
		v = int32(binary.BigEndian.Uint32(b))
	case Uint32:
		v = binary.BigEndian.Uint32(b)
	case Int64:
		v = int64(binary.BigEndian.Uint64(b))
	case Uint64:
		v = binary.BigEndian.Uint64(b)
	case Float32:
		v = math.Float32frombits(binary.BigEndian.Uint32(b))
	case Float64:
		v = math.Float64frombits(binary.BigEndian.Uint64(b))
	}
	return v, rest, nil
}

// BuildInteger encodes the numeric value v as a big-endian number of type t.
// Integer types reject values outside their range.
func BuildInteger(v interface{}, t IntegerType) ([]byte, error) {
	size := t.Size()
	if size == 0 {
		return nil, newError(KindUnsupportedWidth, "%s", t)
	}

	b := make([]byte, size)
	switch t {
	case Float32, Float64:
		f, ok := toFloat64(v)
		if !ok {
			return nil, newError(KindTypeMismatch, "%s needs a number, got %T", t, v)
		}
		if t == Float32 {
			binary.BigEndian.PutUint32(b, math.Float32bits(float32(f)))
		} else {
			binary.BigEndian.PutUint64(b, math.Float64bits(f))
		}

	case Uint8, Uint16, Uint32, Uint64:
		u, err := toUint64(v, size*8)
		if err != nil {
			return nil, err
		}
		putUint(b, u)

	default:
		i, err := toInt64(v, size*8)
		if err != nil {
			return nil, err
		}
		putUint(b, uint64(i))
	}
	return b, nil
}

func putUint(b []byte, u uint64) {
	switch len(b) {
	case 1:
		b[0] = byte(u)
	case 2:
		binary.BigEndian.PutUint16(b, uint16(u))
	case 4:
		binary.BigEndian.PutUint32(b, uint32(u))
	case 8:
		binary.BigEndian.PutUint64(b, u)
	}
}

// splitUint32 is the length prefix reader used by blobs and bundles.
func splitUint32(data []byte) (uint32, []byte, error) {
	if len(data) < bit32Size {
		return 0, nil, newError(KindBufferTooSmall, "UInt32 needs %d bytes, have %d", bit32Size, len(data))
	}
	return binary.BigEndian.Uint32(data), data[bit32Size:], nil
}

func appendUint32(b []byte, u uint32) []byte {
	return append(b, byte(u>>24), byte(u>>16), byte(u>>8), byte(u))
}

////
// Numeric conversion helpers
////

func isNumber(v interface{}) bool {
	if v == nil {
		return false
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func toFloat64(v interface{}) (float64, bool) {
	if !isNumber(v) {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	default:
		return float64(rv.Int()), true
	}
}

func toInt64(v interface{}, bits int) (int64, error) {
	if !isNumber(v) {
		return 0, newError(KindTypeMismatch, "integer needs a number, got %T", v)
	}

	min := int64(-1) << uint(bits-1)
	max := int64(uint64(1)<<uint(bits-1) - 1)

	rv := reflect.ValueOf(v)
	var i int64
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		f := math.Trunc(rv.Float())
		if math.IsNaN(f) || f < float64(min) || f >= -float64(min) {
			return 0, newError(KindTypeMismatch, "%v does not fit in %d bits", v, bits)
		}
		return int64(f), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > uint64(max) {
			return 0, newError(KindTypeMismatch, "%v does not fit in %d bits", v, bits)
		}
		i = int64(u)
	default:
		i = rv.Int()
	}

	if i < min || i > max {
		return 0, newError(KindTypeMismatch, "%v does not fit in %d bits", v, bits)
	}
	return i, nil
}

func toUint64(v interface{}, bits int) (uint64, error) {
	if !isNumber(v) {
		return 0, newError(KindTypeMismatch, "unsigned integer needs a number, got %T", v)
	}

	max := uint64(math.MaxUint64)
	if bits < 64 {
		max = uint64(1)<<uint(bits) - 1
	}

	rv := reflect.ValueOf(v)
	var u uint64
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		f := math.Trunc(rv.Float())
		if math.IsNaN(f) || f < 0 || f >= math.Ldexp(1, bits) {
			return 0, newError(KindTypeMismatch, "%v does not fit in %d bits", v, bits)
		}
		return uint64(f), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u = rv.Uint()
	default:
		i := rv.Int()
		if i < 0 {
			return 0, newError(KindTypeMismatch, "%v is negative", v)
		}
		u = uint64(i)
	}

	if u > max {
		return 0, newError(KindTypeMismatch, "%v does not fit in %d bits", v, bits)
	}
	return u, nil
}
