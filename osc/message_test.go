package osc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// oscStrings concatenates the padded encodings of strs.
func oscStrings(strs ...string) []byte {
	var b []byte
	for _, s := range strs {
		b = appendString(b, s)
	}
	return b
}

func TestMessageRoundTrip(t *testing.T) {
	msg := NewMessage("/test/all",
		Argument{Type: TypeInt32, Value: 888},
		"hello",
		1.5,
		Argument{Type: TypeFloat64, Value: 2.5},
		[]byte{1, 2, 3},
		true,
		false,
		nil,
		Argument{Type: TypeBang},
		ImmediateTimetag,
		[]interface{}{"a", Argument{Type: TypeInt32, Value: 1}},
	)

	tags, err := msg.TypeTags()
	require.NoError(t, err)
	assert.Equal(t, ",isfdbTFNIt[si]", tags)

	data, err := EncodeMessage(msg, true)
	require.NoError(t, err)

	got, err := DecodeMessage(data, true)
	require.NoError(t, err)
	assert.Equal(t, "/test/all", got.Address)
	assert.Equal(t, []interface{}{
		Argument{Type: TypeInt32, Value: int32(888)},
		Argument{Type: TypeString, Value: "hello"},
		Argument{Type: TypeFloat32, Value: float32(1.5)},
		Argument{Type: TypeFloat64, Value: 2.5},
		Argument{Type: TypeBlob, Value: []byte{1, 2, 3}},
		Argument{Type: TypeTrue, Value: true},
		Argument{Type: TypeFalse, Value: false},
		Argument{Type: TypeNil, Value: nil},
		Argument{Type: TypeBang, Value: "bang"},
		Argument{Type: TypeTimeTag, Value: ImmediateTimetag},
		Argument{Type: TypeArray, Value: []Argument{
			{Type: TypeString, Value: "a"},
			{Type: TypeInt32, Value: int32(1)},
		}},
	}, got.Arguments)

	again, err := EncodeMessage(got, true)
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestEncodeMessageWire(t *testing.T) {
	data, err := EncodeMessage(NewMessage("/a", Argument{Type: TypeInt32, Value: 1}, "hi"), true)
	require.NoError(t, err)

	want := oscStrings("/a", ",is")
	want = append(want, 0, 0, 0, 1)
	want = append(want, oscStrings("hi")...)
	assert.Equal(t, want, data)
}

func TestDecodeMessage(t *testing.T) {
	for _, tt := range []struct {
		name string
		data []byte
		want []interface{}
	}{
		{
			name: "no type tags",
			data: []byte("/stuff\x00\x00"),
			want: []interface{}{},
		},
		{
			name: "empty type tags",
			data: oscStrings("/stuff", ","),
			want: []interface{}{},
		},
		{
			name: "bang in array",
			data: oscStrings("/stuff", ",[I]"),
			want: []interface{}{
				Argument{Type: TypeArray, Value: []Argument{{Type: TypeBang, Value: "bang"}}},
			},
		},
		{
			name: "empty array",
			data: oscStrings("/stuff", ",[]"),
			want: []interface{}{Argument{Type: TypeArray, Value: []Argument{}}},
		},
		{
			name: "nested array",
			data: oscStrings("/stuff", ",[[I]]"),
			want: []interface{}{
				Argument{Type: TypeArray, Value: []Argument{
					{Type: TypeArray, Value: []Argument{{Type: TypeBang, Value: "bang"}}},
				}},
			},
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			for _, strict := range []bool{true, false} {
				msg, err := DecodeMessage(tt.data, strict)
				require.NoError(t, err)
				assert.Equal(t, "/stuff", msg.Address)
				assert.Equal(t, tt.want, msg.Arguments)
			}
		})
	}
}

func TestDecodeMessageStrictness(t *testing.T) {
	for _, tt := range []struct {
		name    string
		data    []byte
		wantErr error
		lenient []interface{}
	}{
		{
			name:    "missing comma",
			data:    oscStrings("/a", "sif"),
			wantErr: ErrMissingTypeTag,
			lenient: []interface{}{},
		},
		{
			name:    "address without slash",
			data:    oscStrings("abc", ","),
			wantErr: ErrInvalidAddress,
			lenient: []interface{}{},
		},
		{
			name:    "stray close bracket",
			data:    oscStrings("/a", ",]"),
			wantErr: ErrUnbalancedBracket,
			lenient: []interface{}{},
		},
		{
			name:    "unclosed bracket",
			data:    append(oscStrings("/a", ",[i"), 0, 0, 0, 7),
			wantErr: ErrUnbalancedBracket,
			lenient: []interface{}{
				Argument{Type: TypeArray, Value: []Argument{{Type: TypeInt32, Value: int32(7)}}},
			},
		},
		{
			name:    "missing terminator",
			data:    []byte("/abc"),
			wantErr: ErrMissingTerminator,
			lenient: []interface{}{},
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeMessage(tt.data, true)
			require.ErrorIs(t, err, tt.wantErr)
			assert.True(t, IsStrict(err))

			msg, err := DecodeMessage(tt.data, false)
			require.NoError(t, err)
			assert.Equal(t, tt.lenient, msg.Arguments)
		})
	}
}

func TestDecodeMessageFatal(t *testing.T) {
	for _, tt := range []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"unknown type tag", append(oscStrings("/a", ",ix"), 0, 0, 0, 1), ErrUnknownTypeCode},
		{"missing argument bytes", oscStrings("/a", ",i"), ErrBufferTooSmall},
		{"too deep", oscStrings("/a", ","+strings.Repeat("[", MaxDepth+1)), ErrTooDeep},
	} {
		t.Run(tt.name, func(t *testing.T) {
			for _, strict := range []bool{true, false} {
				_, err := DecodeMessage(tt.data, strict)
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestDecodeMessageMaxDepth(t *testing.T) {
	tags := "," + strings.Repeat("[", MaxDepth) + strings.Repeat("]", MaxDepth)
	msg, err := DecodeMessage(oscStrings("/a", tags), true)
	require.NoError(t, err)
	require.Len(t, msg.Arguments, 1)
}

func TestEncodeMessageErrors(t *testing.T) {
	_, err := EncodeMessage(nil, true)
	assert.ErrorIs(t, err, ErrMissingAddress)

	_, err = EncodeMessage(NewMessage("/a", Argument{Type: 'x', Value: 1}), false)
	assert.ErrorIs(t, err, ErrUnknownTypeCode)

	_, err = EncodeMessage(NewMessage("/a", struct{}{}), false)
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = EncodeMessage(NewMessage("/a", Argument{Type: TypeString, Value: 1}), false)
	assert.ErrorIs(t, err, ErrNotAString)

	_, err = EncodeMessage(NewMessage("/a\x00b"), true)
	assert.ErrorIs(t, err, ErrEmbeddedNull)

	var deep interface{} = "x"
	for i := 0; i <= MaxDepth; i++ {
		deep = []interface{}{deep}
	}
	_, err = EncodeMessage(NewMessage("/a", deep), false)
	assert.ErrorIs(t, err, ErrTooDeep)
}

func TestEncodeMessageEmptyAddress(t *testing.T) {
	_, err := EncodeMessage(&Message{}, true)
	assert.ErrorIs(t, err, ErrMissingAddress)

	data, err := EncodeMessage(&Message{}, false)
	require.NoError(t, err)
	assert.Equal(t, oscStrings("", ","), data)

	msg, err := DecodeMessage(data, false)
	require.NoError(t, err)
	assert.Empty(t, msg.Address)
}

func TestEncodeMessageTypedSlices(t *testing.T) {
	msg := NewMessage("/a", []int{1, 2}, []string{"x"}, [2]float64{0.5, 1}, []byte{1}, []int(nil))
	data, err := EncodeMessage(msg, true)
	require.NoError(t, err)

	decoded, err := DecodeMessage(data, true)
	require.NoError(t, err)
	tags, err := decoded.TypeTags()
	require.NoError(t, err)
	assert.Equal(t, ",[ff][s][ff]b[]", tags)
	assert.Equal(t, Argument{Type: TypeArray, Value: []Argument{
		{Type: TypeFloat32, Value: float32(1)},
		{Type: TypeFloat32, Value: float32(2)},
	}}, decoded.Arguments[0])
}

func TestDecodeMessageErrorPosition(t *testing.T) {
	data := append(oscStrings("/a", ",s[ii]", "x"), 0, 0, 0, 1)
	_, err := DecodeMessage(data, false)
	assert.ErrorIs(t, err, ErrBufferTooSmall)
	assert.ErrorContains(t, err, "argument 2 ")
	assert.ErrorContains(t, err, "type tag offset 3")

	_, err = DecodeMessage(oscStrings("/a", ",s]", "x"), true)
	assert.ErrorIs(t, err, ErrUnbalancedBracket)
	assert.ErrorContains(t, err, "type tag offset 1")
}

func TestMessageHelpers(t *testing.T) {
	msg := NewMessage("/a", Argument{Type: TypeInt32, Value: 1}, "x")
	assert.Equal(t, "/a ,is 1 x", msg.String())
	assert.Equal(t, 2, msg.CountArguments())

	other := NewMessage("/a", Argument{Type: TypeInt32, Value: 1}, "x")
	assert.True(t, msg.Equals(other))
	other.Append(true)
	assert.False(t, msg.Equals(other))

	msg.ClearData()
	assert.Zero(t, msg.CountArguments())
	msg.Clear()
	assert.Empty(t, msg.Address)

	var decoded Message
	data, err := NewMessage("/b", "y").MarshalBinary()
	require.NoError(t, err)
	require.NoError(t, decoded.UnmarshalBinary(data))
	assert.Equal(t, "/b", decoded.Address)
	assert.Equal(t, []interface{}{Argument{Type: TypeString, Value: "y"}}, decoded.Arguments)
}
