package osc

import (
	"encoding/binary"
	"math"
	"reflect"
	"time"
)

const (
	// The time tag value consisting of 63 zero bits followed by a one in the
	// least significant bit is a special case meaning "immediately."
	timeTagImmediate      = uint64(1)
	secondsFrom1900To1970 = 2208988800
	twoPow32              = 1 << 32
)

// Timetag represents an OSC Time Tag.
// An OSC Time Tag is defined as follows:
// Time tags are represented by a 64 bit fixed point number. The first 32 bits
// specify the number of seconds since midnight on January 1, 1900, and the
// last 32 bits specify fractional parts of a second to a precision of about
// 200 picoseconds. This is the representation used by Internet NTP timestamps.
type Timetag uint64

// ImmediateTimetag is the special time tag meaning "now".
const ImmediateTimetag = Timetag(timeTagImmediate)

// NewTimetag builds a time tag from its NTP seconds and fraction halves.
func NewTimetag(seconds, fraction uint32) Timetag {
	return Timetag(uint64(seconds)<<32 | uint64(fraction))
}

// TimetagFromTime returns the time tag for the given time.
func TimetagFromTime(t time.Time) Timetag {
	return Timetag(timeToTimetag(t))
}

// TimetagFromTimestamp converts Unix seconds (with a fractional part) to a
// time tag.
func TimetagFromTimestamp(secs float64) Timetag {
	whole := math.Floor(secs)
	frac := math.Round((secs - whole) * twoPow32)
	if frac >= twoPow32 {
		whole++
		frac = 0
	}
	return NewTimetag(uint32(int64(whole)+secondsFrom1900To1970), uint32(frac))
}

// TimetagIn returns the time tag d from now.
func TimetagIn(d time.Duration) Timetag {
	return TimetagFromTime(time.Now().Add(d))
}

// Seconds returns the NTP seconds since midnight 1900.
func (t Timetag) Seconds() uint32 {
	return uint32(t >> 32)
}

// Fraction returns the fractional second scaled by 2^32.
func (t Timetag) Fraction() uint32 {
	return uint32(t)
}

// SecondsSinceEpoch returns the first 32 bits (the number of seconds since the
// midnight 1900) from the OSC time tag.
func (t Timetag) SecondsSinceEpoch() uint32 {
	return t.Seconds()
}

// FractionalSecond returns the last 32 bits of the OSC time tag. Specifies the
// fractional part of a second.
func (t Timetag) FractionalSecond() uint32 {
	return t.Fraction()
}

// TimeTag returns the time tag value
func (t Timetag) TimeTag() uint64 {
	return uint64(t)
}

// Time returns the time.
func (t Timetag) Time() time.Time {
	return timetagToTime(uint64(t))
}

// Timestamp returns Unix seconds. Sub-microsecond precision is lost.
func (t Timetag) Timestamp() float64 {
	return float64(int64(t.Seconds())-secondsFrom1900To1970) + float64(t.Fraction())/twoPow32
}

// ExpiresIn calculates the number of seconds until the current time is the
// same as the value of the time tag. It returns zero if the value of the
// time tag is in the past.
func (t Timetag) ExpiresIn() time.Duration {
	if uint64(t) <= timeTagImmediate {
		return 0
	}

	seconds := time.Until(t.Time())
	if seconds <= 0 {
		return 0
	}

	return seconds
}

// MarshalBinary converts the OSC time tag to a byte array.
func (t Timetag) MarshalBinary() ([]byte, error) {
	b := make([]byte, bit64Size)
	binary.BigEndian.PutUint64(b, uint64(t))
	return b, nil
}

// SplitTimetag splits the 8 byte time tag off the front of data.
func SplitTimetag(data []byte) (Timetag, []byte, error) {
	if len(data) < bit64Size {
		return 0, nil, newError(KindBufferTooSmall, "timetag needs %d bytes, have %d", bit64Size, len(data))
	}
	return Timetag(binary.BigEndian.Uint64(data)), data[bit64Size:], nil
}

// BuildTimetag encodes v as an 8 byte time tag. v may be a Timetag, a
// time.Time, a Unix timestamp in seconds, or a (seconds, fraction) pair given
// as [2]uint32, []uint32 or a two element []interface{} of numbers.
func BuildTimetag(v interface{}) ([]byte, error) {
	tt, err := toTimetag(v)
	if err != nil {
		return nil, err
	}
	return tt.MarshalBinary()
}

func toTimetag(v interface{}) (Timetag, error) {
	switch t := v.(type) {
	case nil:
		return 0, newError(KindNullTimetag, "no timetag given")
	case Timetag:
		return t, nil
	case *Timetag:
		if t == nil {
			return 0, newError(KindNullTimetag, "no timetag given")
		}
		return *t, nil
	case time.Time:
		return TimetagFromTime(t), nil
	case *time.Time:
		if t == nil {
			return 0, newError(KindNullTimetag, "no timetag given")
		}
		return TimetagFromTime(*t), nil
	case [2]uint32:
		return NewTimetag(t[0], t[1]), nil
	case []uint32:
		if len(t) != 2 {
			return 0, newError(KindInvalidTimetag, "pair has %d elements", len(t))
		}
		return NewTimetag(t[0], t[1]), nil
	case []interface{}:
		if len(t) != 2 {
			return 0, newError(KindInvalidTimetag, "pair has %d elements", len(t))
		}
		sec, err := toUint64(t[0], 32)
		if err != nil {
			return 0, newError(KindInvalidTimetag, "seconds: %v", err)
		}
		frac, err := toUint64(t[1], 32)
		if err != nil {
			return 0, newError(KindInvalidTimetag, "fraction: %v", err)
		}
		return NewTimetag(uint32(sec), uint32(frac)), nil
	}

	if f, ok := toFloat64(v); ok {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, newError(KindInvalidTimetag, "timestamp %v", f)
		}
		return TimetagFromTimestamp(f), nil
	}

	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		return 0, newError(KindInvalidTimetag, "unsupported pair %T", v)
	}
	return 0, newError(KindInvalidTimetag, "unsupported timetag %T", v)
}

////
// Timetag utility functions
////

// timeToTimetag converts the given time to an OSC time tag.
//
// The fraction is the nanosecond part scaled by 2^32/1e9.
func timeToTimetag(t time.Time) uint64 {
	secs := uint64(t.Unix()+secondsFrom1900To1970) << 32
	frac := uint64(t.Nanosecond()) * twoPow32 / uint64(time.Second)
	return secs + frac
}

// timetagToTime converts the given time tag to a time object.
func timetagToTime(timetag uint64) time.Time {
	secs := int64(timetag>>32) - secondsFrom1900To1970
	nsec := (timetag & 0xffffffff) * uint64(time.Second) >> 32
	return time.Unix(secs, int64(nsec))
}
