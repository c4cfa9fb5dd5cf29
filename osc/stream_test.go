package osc

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewStreamWriter(&buf)
	w.Strict = true

	// 0xc0 and 0xdb are the SLIP END and ESC bytes and must survive framing.
	blob := []byte{0xc0, 0xdb, 0x00, 0xc0}
	require.NoError(t, w.WritePacket(NewMessage("/first", blob)))
	require.NoError(t, w.WritePacket(&Bundle{Timetag: ImmediateTimetag, Elements: []Packet{NewMessage("/second")}}))
	require.NoError(t, w.WriteRaw(oscStrings("/third", ",")))

	r := NewStreamReader(&buf)
	r.Strict = true

	pkt, err := r.ReadPacket()
	require.NoError(t, err)
	msg := pkt.(*Message)
	assert.Equal(t, "/first", msg.Address)
	assert.Equal(t, []interface{}{Argument{Type: TypeBlob, Value: blob}}, msg.Arguments)

	pkt, err = r.ReadPacket()
	require.NoError(t, err)
	require.IsType(t, &Bundle{}, pkt)
	assert.Len(t, pkt.(*Bundle).Elements, 1)

	raw, err := r.ReadRaw()
	require.NoError(t, err)
	assert.Equal(t, oscStrings("/third", ","), raw)

	_, err = r.ReadPacket()
	assert.ErrorIs(t, err, io.EOF)
}

func TestStreamWriterEncodeError(t *testing.T) {
	var buf bytes.Buffer
	w := NewStreamWriter(&buf)
	assert.ErrorIs(t, w.WritePacket(NewMessage("/a", struct{}{})), ErrTypeMismatch)
	assert.Zero(t, buf.Len())
}
