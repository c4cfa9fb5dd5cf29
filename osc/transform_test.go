package osc

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upperAddress(addr string) string { return strings.ToUpper(addr) }

func TestAddressTransformMessage(t *testing.T) {
	args := []byte{0, 0, 0, 5}
	data := append(oscStrings("/abc", ",i"), args...)

	out, err := ApplyAddressTransform(data, func(string) string { return "/longer/address" })
	require.NoError(t, err)
	assert.Equal(t, append(oscStrings("/longer/address", ",i"), args...), out)
}

func TestAddressTransformLeavesArgumentsUnparsed(t *testing.T) {
	// The argument bytes are garbage; only the address is touched.
	data := append(oscStrings("/a", ",x"), 0xde, 0xad)

	out, err := ApplyAddressTransform(data, upperAddress)
	require.NoError(t, err)
	assert.Equal(t, append(oscStrings("/A", ",x"), 0xde, 0xad), out)
}

func TestApplyTransformBundle(t *testing.T) {
	tt := NewTimetag(0xdeadbeef, 0x01020304)
	inner := frameBundle(ImmediateTimetag, oscStrings("/inner", ","))
	data := frameBundle(tt, oscStrings("/outer", ","), inner)

	out, err := ApplyAddressTransform(data, func(addr string) string { return addr + "/renamed" })
	require.NoError(t, err)

	want := frameBundle(tt,
		oscStrings("/outer/renamed", ","),
		frameBundle(ImmediateTimetag, oscStrings("/inner/renamed", ",")),
	)
	assert.Equal(t, want, out)

	b, err := DecodeBundle(out, true)
	require.NoError(t, err)
	assert.Equal(t, tt, b.Timetag)
}

func TestApplyTransformDropsFailingElements(t *testing.T) {
	captureLog(t)

	data := frameBundle(ImmediateTimetag, oscStrings("/keep", ","), oscStrings("/drop", ","))
	fail := func(b []byte) ([]byte, error) {
		if IsBundle(b) {
			return b, nil
		}
		addr, _, _ := SplitString(b, false)
		if addr == "/drop" {
			return nil, errors.New("no")
		}
		return b, nil
	}

	out, err := ApplyTransform(data, fail, nil)
	require.NoError(t, err)
	assert.Equal(t, frameBundle(ImmediateTimetag, oscStrings("/keep", ",")), out)
}

func TestApplyTransformCustomBundle(t *testing.T) {
	called := false
	bundle := func(b []byte) ([]byte, error) {
		called = true
		return b, nil
	}
	data := frameBundle(ImmediateTimetag)

	out, err := ApplyTransform(data, nil, bundle)
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, data, out)

	msg := oscStrings("/a", ",")
	out, err = ApplyTransform(msg, nil, bundle)
	require.NoError(t, err)
	assert.Equal(t, msg, out)
}

func TestBundleTransformErrors(t *testing.T) {
	identity := func(b []byte) ([]byte, error) { return b, nil }

	_, err := BundleTransform(identity)(oscStrings("/not", ","))
	assert.ErrorIs(t, err, ErrNotABundle)

	_, err = BundleTransform(identity)(oscStrings(bundleTagString))
	assert.ErrorIs(t, err, ErrTruncatedBundle)

	data := append(frameBundle(ImmediateTimetag), 0x00, 0x0f, 0x42, 0x3f)
	_, err = ApplyTransform(data, identity, nil)
	assert.ErrorIs(t, err, ErrTruncatedBundle)
}

func TestBundleTransformTooDeep(t *testing.T) {
	data := oscStrings("/leaf", ",")
	for i := 0; i < MaxDepth+2; i++ {
		data = frameBundle(ImmediateTimetag, data)
	}
	_, err := ApplyAddressTransform(data, upperAddress)
	assert.ErrorIs(t, err, ErrTooDeep)
}

func TestMessageTransform(t *testing.T) {
	data, err := EncodePacket(&Bundle{Timetag: ImmediateTimetag, Elements: []Packet{
		NewMessage("/volume", Argument{Type: TypeFloat32, Value: 0.5}),
		NewMessage("/mute", true),
	}}, true)
	require.NoError(t, err)

	out, err := ApplyMessageTransform(data, func(msg *Message) (*Message, error) {
		if msg.Address == "/mute" {
			return nil, errors.New("filtered")
		}
		msg.Append("extra")
		return msg, nil
	})
	require.NoError(t, err)

	b, err := DecodeBundle(out, true)
	require.NoError(t, err)
	require.Len(t, b.Elements, 1)
	msg := b.Elements[0].(*Message)
	assert.Equal(t, "/volume", msg.Address)
	assert.Equal(t, []interface{}{
		Argument{Type: TypeFloat32, Value: float32(0.5)},
		Argument{Type: TypeString, Value: "extra"},
	}, msg.Arguments)
}

func TestMessageTransformSingleMessage(t *testing.T) {
	out, err := ApplyMessageTransform(oscStrings("/a", ","), func(msg *Message) (*Message, error) {
		return NewMessage("/b", Argument{Type: TypeInt32, Value: 2}), nil
	})
	require.NoError(t, err)
	assert.Equal(t, append(oscStrings("/b", ",i"), 0, 0, 0, 2), out)

	_, err = ApplyMessageTransform(oscStrings("/a", ",x"), func(msg *Message) (*Message, error) {
		return msg, nil
	})
	assert.ErrorIs(t, err, ErrUnknownTypeCode)
}
