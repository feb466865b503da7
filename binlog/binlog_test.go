package binlog

import (
	"bytes"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	require.NoError(t, err)

	addr := &net.UDPAddr{IP: net.IPv4(10, 0, 0, 7), Port: 44333}
	ts := time.UnixMilli(1700000000123)
	require.NoError(t, w.WritePacketAt(ts, FlagUplink, addr, []byte{1, 2, 3, 4}))
	require.NoError(t, w.WritePacketAt(ts.Add(50*time.Millisecond), FlagMeta, nil, []byte{9}))

	r, err := NewReader(&buf)
	require.NoError(t, err)

	rec, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, uint16(FlagUplink), rec.Flag)
	assert.Equal(t, []byte{1, 2, 3, 4}, rec.Payload)
	assert.Equal(t, 44333, rec.Addr.Port)
	assert.True(t, rec.Addr.IP.Equal(net.IPv4(10, 0, 0, 7)))
	assert.Equal(t, int64(1700000000123), rec.TimeMs)

	rec, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, uint16(FlagMeta), rec.Flag)
	assert.Equal(t, []byte{9}, rec.Payload)
	assert.Equal(t, 0, rec.Addr.Port)

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestReaderRejectsBadMagic(t *testing.T) {
	_, err := NewReader(bytes.NewReader(make([]byte, 24)))
	assert.Error(t, err)
}

func TestReaderTruncatedPayload(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	require.NoError(t, err)
	require.NoError(t, w.WritePacket(FlagUplink, nil, []byte{1, 2, 3}))

	raw := buf.Bytes()
	r, err := NewReader(bytes.NewReader(raw[:len(raw)-2]))
	require.NoError(t, err)
	_, err = r.Next()
	assert.Error(t, err)
}
