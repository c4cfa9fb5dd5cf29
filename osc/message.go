package osc

import (
	"fmt"
	"reflect"
	"strings"
)

// Message represents a single OSC message. An OSC message consists of an OSC
// address pattern and zero or more arguments.
//
// Arguments holds bare Go values ([]byte, string, numbers, bool, nil,
// Timetag, time.Time, slices for arrays) or explicitly typed Argument values.
// Decoding always produces Arguments.
type Message struct {
	Address   string
	Arguments []interface{}
}

// Verify that Messages implements the Packet interface.
var _ Packet = (*Message)(nil)

// NewMessage returns a new Message. The address parameter is the OSC address.
func NewMessage(address string, args ...interface{}) *Message {
	return &Message{Address: address, Arguments: args}
}

// Append appends the given arguments to the arguments list.
func (msg *Message) Append(args ...interface{}) {
	msg.Arguments = append(msg.Arguments, args...)
}

// Equals determines if the given OSC Message b is equal to the current OSC Message.
// It checks if the OSC address and the arguments are equal.
func (msg *Message) Equals(b *Message) bool {
	if msg == nil || b == nil {
		return msg == b
	}
	if msg.Address != b.Address || len(msg.Arguments) != len(b.Arguments) {
		return false
	}
	for i := range msg.Arguments {
		if !reflect.DeepEqual(msg.Arguments[i], b.Arguments[i]) {
			return false
		}
	}
	return true
}

// Clear clears the OSC address and all arguments.
func (msg *Message) Clear() {
	msg.Address = ""
	msg.ClearData()
}

// ClearData removes all arguments from the OSC Message.
func (msg *Message) ClearData() {
	msg.Arguments = msg.Arguments[len(msg.Arguments):]
}

// CountArguments returns the number of arguments.
func (msg *Message) CountArguments() int {
	return len(msg.Arguments)
}

// TypeTags returns the type tag string, including the leading comma.
func (msg *Message) TypeTags() (string, error) {
	if msg == nil {
		return "", newError(KindMissingAddress, "message is nil")
	}
	tags, _, err := appendArguments([]byte{','}, nil, msg.Arguments, false, 0)
	if err != nil {
		return "", err
	}
	return string(tags), nil
}

// String implements the fmt.Stringer interface.
func (msg *Message) String() string {
	if msg == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(msg.Address)

	tags, err := msg.TypeTags()
	if err != nil {
		return sb.String()
	}
	sb.WriteByte(' ')
	sb.WriteString(tags)

	for _, arg := range msg.Arguments {
		sb.WriteByte(' ')
		sb.WriteString(formatArgument(arg))
	}
	return sb.String()
}

// MarshalBinary implements encoding.BinaryMarshaler using strict encoding.
func (msg *Message) MarshalBinary() ([]byte, error) {
	return EncodeMessage(msg, true)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler using lenient
// decoding.
func (msg *Message) UnmarshalBinary(data []byte) error {
	m, err := DecodeMessage(data, false)
	if err != nil {
		return err
	}
	*msg = *m
	return nil
}

// EncodeMessage serializes msg. The result has the following format:
// 1. OSC Address Pattern
// 2. OSC Type Tag String
// 3. OSC Arguments
func EncodeMessage(msg *Message, strict bool) ([]byte, error) {
	return msg.encode(strict, 0)
}

// encode ignores the bundle depth; array nesting is counted separately.
func (msg *Message) encode(strict bool, _ int) ([]byte, error) {
	if msg == nil {
		return nil, newError(KindMissingAddress, "message is nil")
	}
	if strict && msg.Address == "" {
		return nil, newError(KindMissingAddress, "empty address")
	}

	addr, err := BuildString(msg.Address, strict)
	if err != nil {
		return nil, fmt.Errorf("address: %w", err)
	}

	// Type tag string starts with ","
	tags, payload, err := appendArguments([]byte{','}, nil, msg.Arguments, strict, 0)
	if err != nil {
		return nil, err
	}

	data := make([]byte, 0, len(addr)+len(tags)+4+len(payload))
	data = append(data, addr...)
	data = appendString(data, string(tags))
	return append(data, payload...), nil
}

// DecodeMessage parses an OSC message.
//
// A message that ends right after its address has no arguments in either
// mode. Strict mode additionally rejects addresses not starting with '/',
// type tag strings without the leading ',' and unbalanced brackets. An
// unknown type tag always fails the whole message.
func DecodeMessage(data []byte, strict bool) (*Message, error) {
	// First, read the OSC address
	addr, rest, err := SplitString(data, strict)
	if err != nil {
		return nil, fmt.Errorf("address: %w", err)
	}
	if strict && !strings.HasPrefix(addr, "/") {
		return nil, newError(KindInvalidAddress, "%q does not start with '/'", addr)
	}

	msg := &Message{Address: addr, Arguments: []interface{}{}}

	// Older implementations send no type tag string at all.
	if len(rest) == 0 {
		return msg, nil
	}

	typetags, rest, err := SplitString(rest, strict)
	if err != nil {
		return nil, fmt.Errorf("type tags: %w", err)
	}

	// If the typetag doesn't start with ',', it's not valid
	if !strings.HasPrefix(typetags, ",") {
		if strict {
			return nil, newError(KindMissingTypeTag, "type tag string %q", typetags)
		}
		return msg, nil
	}

	args, err := readArguments(typetags[1:], rest, strict)
	if err != nil {
		return nil, err
	}
	msg.Arguments = args
	return msg, nil
}

// readArguments walks the type tags with a stack of open arrays; the bottom
// frame is the message's own argument list.
func readArguments(typetags string, data []byte, strict bool) ([]interface{}, error) {
	stack := [][]Argument{{}}

	closeFrame := func() {
		built := stack[len(stack)-1]
		if built == nil {
			built = []Argument{}
		}
		stack = stack[:len(stack)-1]
		stack[len(stack)-1] = append(stack[len(stack)-1], Argument{Type: TypeArray, Value: built})
	}

	// n counts decoded values; i is the offset into the type tags.
	n := 0
	for i, c := range typetags {
		switch c {
		case '[':
			if len(stack) > MaxDepth {
				return nil, newError(KindTooDeep, "array nesting exceeds %d", MaxDepth)
			}
			stack = append(stack, []Argument{})

		case ']':
			if len(stack) == 1 {
				if strict {
					return nil, newError(KindUnbalancedBracket, "unmatched ']' at type tag offset %d", i)
				}
				continue
			}
			closeFrame()

		default:
			tag, err := LookupTypeTag(c)
			if err != nil {
				return nil, err
			}

			var v interface{}
			if v, data, err = typeCodes[tag].split(data, strict); err != nil {
				return nil, fmt.Errorf("argument %d (%s) at type tag offset %d: %w", n, tag, i, err)
			}
			n++
			stack[len(stack)-1] = append(stack[len(stack)-1], Argument{Type: tag, Value: v})
		}
	}

	if len(stack) > 1 {
		if strict {
			return nil, newError(KindUnbalancedBracket, "%d unclosed '['", len(stack)-1)
		}
		for len(stack) > 1 {
			closeFrame()
		}
	}

	args := make([]interface{}, len(stack[0]))
	for i := range stack[0] {
		args[i] = stack[0][i]
	}
	return args, nil
}
