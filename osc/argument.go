package osc

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// Argument is a message argument with an explicit type. Decoded messages
// always carry Arguments; when encoding, Arguments and bare Go values may be
// mixed freely.
//
// The Value of an array Argument is a []Argument (as decoded) or a
// []interface{}.
type Argument struct {
	Type  TypeTag
	Value interface{}
}

// NewArray returns an array Argument holding args.
func NewArray(args ...interface{}) Argument {
	return Argument{Type: TypeArray, Value: args}
}

// Name returns the canonical name of the argument's type.
func (a Argument) Name() string {
	return a.Type.String()
}

func (a Argument) String() string {
	switch a.Type {
	case TypeArray:
		elems, _ := arrayElements(a)
		parts := make([]string, len(elems))
		for i, e := range elems {
			parts[i] = formatArgument(e)
		}
		return "[" + strings.Join(parts, " ") + "]"
	case TypeBlob:
		if b, ok := a.Value.([]byte); ok {
			return fmt.Sprintf("blob(%d)", len(b))
		}
	case TypeNil:
		return "Nil"
	case TypeTimeTag:
		if tt, err := toTimetag(a.Value); err == nil {
			return fmt.Sprintf("%d", tt.TimeTag())
		}
	}
	return fmt.Sprintf("%v", a.Value)
}

func formatArgument(arg interface{}) string {
	switch t := arg.(type) {
	case Argument:
		return t.String()
	case *Argument:
		return t.String()
	case nil:
		return "Nil"
	case []byte:
		return fmt.Sprintf("blob(%d)", len(t))
	case Timetag:
		return fmt.Sprintf("%d", t.TimeTag())
	}
	if elems, ok := arrayElements(arg); ok {
		return NewArray(elems...).String()
	}
	return fmt.Sprintf("%v", arg)
}

// arrayElements reports whether arg is array shaped and returns its elements.
func arrayElements(arg interface{}) ([]interface{}, bool) {
	switch t := arg.(type) {
	case []interface{}:
		return t, true
	case []Argument:
		elems := make([]interface{}, len(t))
		for i := range t {
			elems[i] = t[i]
		}
		return elems, true
	case Argument:
		if t.Type == TypeArray {
			if t.Value == nil {
				return nil, true
			}
			return arrayElements(t.Value)
		}
	case *Argument:
		if t != nil {
			return arrayElements(*t)
		}
	case nil, []byte:
	default:
		// Any other Go slice or array, except byte slices which are blobs.
		v := reflect.ValueOf(arg)
		switch v.Kind() {
		case reflect.Slice:
			if v.Type().Elem().Kind() == reflect.Uint8 {
				return nil, false
			}
		case reflect.Array:
		default:
			return nil, false
		}
		elems := make([]interface{}, v.Len())
		for i := range elems {
			elems[i] = v.Index(i).Interface()
		}
		return elems, true
	}
	return nil, false
}

// resolveArgument turns a bare or tagged argument into a type tag and the
// value to encode.
func resolveArgument(arg interface{}) (TypeTag, interface{}, error) {
	switch t := arg.(type) {
	case *Argument:
		if t == nil {
			return TypeNil, nil, nil
		}
		return resolveArgument(*t)
	case Argument:
		if _, ok := typeCodes[t.Type]; !ok {
			return TypeInvalid, nil, newError(KindUnknownTypeCode, "%q", rune(t.Type))
		}
		return t.Type, t.Value, nil
	}

	tag := ToTypeTag(arg)
	if tag == TypeInvalid {
		return TypeInvalid, nil, newError(KindTypeMismatch, "unsupported type: %T", arg)
	}
	return tag, arg, nil
}

// appendArguments appends the type tags and encoded payload of args.
func appendArguments(tags, payload []byte, args []interface{}, strict bool, depth int) ([]byte, []byte, error) {
	if depth > MaxDepth {
		return nil, nil, newError(KindTooDeep, "array nesting exceeds %d", MaxDepth)
	}

	for i, arg := range args {
		if elems, ok := arrayElements(arg); ok {
			var err error
			tags = append(tags, '[')
			if tags, payload, err = appendArguments(tags, payload, elems, strict, depth+1); err != nil {
				return nil, nil, err
			}
			tags = append(tags, ']')
			continue
		}

		tag, value, err := resolveArgument(arg)
		if err != nil {
			return nil, nil, fmt.Errorf("argument %d: %w", i, err)
		}
		if tag == TypeArray {
			return nil, nil, newError(KindTypeMismatch, "argument %d: array value is %T", i, value)
		}

		b, err := typeCodes[tag].build(value, strict)
		if err != nil {
			return nil, nil, fmt.Errorf("argument %d (%s): %w", i, tag, err)
		}
		tags = append(tags, byte(tag))
		payload = append(payload, b...)
	}

	return tags, payload, nil
}

func isTimeValue(v interface{}) bool {
	switch v.(type) {
	case time.Time, *time.Time:
		return true
	}
	return false
}
