package osc

import (
	"reflect"
	"strconv"
)

// TypeTag is a single OSC type tag character.
type TypeTag rune

const (
	TypeString  TypeTag = 's'
	TypeInt32   TypeTag = 'i'
	TypeTimeTag TypeTag = 't'
	TypeFloat32 TypeTag = 'f'
	TypeFloat64 TypeTag = 'd'
	TypeBlob    TypeTag = 'b'
	TypeTrue    TypeTag = 'T'
	TypeFalse   TypeTag = 'F'
	TypeNil     TypeTag = 'N'
	TypeBang    TypeTag = 'I'
	TypeArray   TypeTag = '['
	TypeInvalid TypeTag = 0
)

// bangValue is the decoded value of an 'I' argument.
const bangValue = "bang"

type typeCode struct {
	name  string
	split func(data []byte, strict bool) (interface{}, []byte, error)
	build func(v interface{}, strict bool) ([]byte, error)
}

// typeCodes is never written after package initialisation, so concurrent
// lookups need no locking.
var typeCodes = map[TypeTag]typeCode{
	TypeString: {
		name: "string",
		split: func(data []byte, strict bool) (interface{}, []byte, error) {
			return SplitString(data, strict)
		},
		build: func(v interface{}, strict bool) ([]byte, error) {
			s, ok := v.(string)
			if !ok {
				return nil, newError(KindNotAString, "got %T", v)
			}
			return BuildString(s, strict)
		},
	},
	TypeInt32: {
		name: "integer",
		split: func(data []byte, _ bool) (interface{}, []byte, error) {
			return SplitInteger(data, Int32)
		},
		build: func(v interface{}, _ bool) ([]byte, error) {
			return BuildInteger(v, Int32)
		},
	},
	TypeTimeTag: {
		name: "timetag",
		split: func(data []byte, _ bool) (interface{}, []byte, error) {
			return SplitTimetag(data)
		},
		build: func(v interface{}, _ bool) ([]byte, error) {
			return BuildTimetag(v)
		},
	},
	TypeFloat32: {
		name: "float",
		split: func(data []byte, _ bool) (interface{}, []byte, error) {
			return SplitInteger(data, Float32)
		},
		build: func(v interface{}, _ bool) ([]byte, error) {
			return BuildInteger(v, Float32)
		},
	},
	TypeFloat64: {
		name: "double",
		split: func(data []byte, _ bool) (interface{}, []byte, error) {
			return SplitInteger(data, Float64)
		},
		build: func(v interface{}, _ bool) ([]byte, error) {
			return BuildInteger(v, Float64)
		},
	},
	TypeBlob: {
		name: "blob",
		split: func(data []byte, strict bool) (interface{}, []byte, error) {
			return splitBlob(data, strict)
		},
		build: func(v interface{}, _ bool) ([]byte, error) {
			b, ok := v.([]byte)
			if !ok {
				return nil, newError(KindNotABuffer, "got %T", v)
			}
			return buildBlob(b), nil
		},
	},
	TypeTrue: {
		name: "true",
		split: func(data []byte, _ bool) (interface{}, []byte, error) {
			return true, data, nil
		},
		build: func(v interface{}, strict bool) ([]byte, error) {
			if strict && v != nil && !truthy(v) {
				return nil, newError(KindTypeMismatch, "expected true, got %v", v)
			}
			return []byte{}, nil
		},
	},
	TypeFalse: {
		name: "false",
		split: func(data []byte, _ bool) (interface{}, []byte, error) {
			return false, data, nil
		},
		build: func(v interface{}, strict bool) ([]byte, error) {
			if strict && truthy(v) {
				return nil, newError(KindTypeMismatch, "expected false, got %v", v)
			}
			return []byte{}, nil
		},
	},
	TypeNil: {
		name: "null",
		split: func(data []byte, _ bool) (interface{}, []byte, error) {
			return nil, data, nil
		},
		build: func(v interface{}, strict bool) ([]byte, error) {
			if strict && truthy(v) {
				return nil, newError(KindTypeMismatch, "expected null, got %v", v)
			}
			return []byte{}, nil
		},
	},
	TypeBang: {
		name: "bang",
		split: func(data []byte, _ bool) (interface{}, []byte, error) {
			return bangValue, data, nil
		},
		build: func(interface{}, bool) ([]byte, error) {
			return []byte{}, nil
		},
	},
	// Arrays are walked by the message codec; the entry only carries the name.
	TypeArray: {name: "array"},
}

var typeNames = func() map[string]TypeTag {
	m := make(map[string]TypeTag, len(typeCodes))
	for tag, tc := range typeCodes {
		m[tc.name] = tag
	}
	return m
}()

// LookupTypeTag resolves a type tag character.
func LookupTypeTag(code rune) (TypeTag, error) {
	if _, ok := typeCodes[TypeTag(code)]; !ok {
		return TypeInvalid, newError(KindUnknownTypeCode, "%q", code)
	}
	return TypeTag(code), nil
}

// LookupTypeName resolves a canonical type name such as "integer" or "blob".
func LookupTypeName(name string) (TypeTag, error) {
	tag, ok := typeNames[name]
	if !ok {
		return TypeInvalid, newError(KindUnknownTypeCode, "type name %q", name)
	}
	return tag, nil
}

// String returns the canonical name of the type.
func (t TypeTag) String() string {
	if tc, ok := typeCodes[t]; ok {
		return tc.name
	}
	return "TypeTag(" + strconv.QuoteRune(rune(t)) + ")"
}

// ToTypeTag returns the type inferred for a bare Go value, or TypeInvalid if
// there is none. Numbers always map to float.
func ToTypeTag(arg interface{}) TypeTag {
	switch t := arg.(type) {
	case nil:
		return TypeNil
	case []byte:
		return TypeBlob
	case string:
		return TypeString
	case Timetag, *Timetag:
		return TypeTimeTag
	case bool:
		if t {
			return TypeTrue
		}
		return TypeFalse
	}
	if isTimeValue(arg) {
		return TypeTimeTag
	}
	if isNumber(arg) {
		return TypeFloat32
	}
	return TypeInvalid
}

// truthy mirrors the loose truthiness used by the T, F and N encoders.
func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	}
	if f, ok := toFloat64(v); ok {
		return f != 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		return !rv.IsNil()
	}
	return true
}
