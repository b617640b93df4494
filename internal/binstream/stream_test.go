package binstream_test

import (
	"bytes"
	"testing"

	"github.com/dupimg/dupimg/internal/binstream"
	"github.com/dupimg/dupimg/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadRoundTrip(t *testing.T) {
	var buf bytes.Buffer

	w, err := binstream.NewWriter(&buf, "adii")
	require.NoError(t, err)
	w.WriteUint8(7)
	w.WriteBool(true)
	w.WriteUint32(1234)
	w.WriteInt16(-5)
	w.WriteInt32(-99999)
	w.WriteUint64(9999999999)
	w.WriteFloat64(3.5)
	w.WriteString("héllo")
	w.WritePath(`C:\images\a.jpg`, true)
	require.NoError(t, w.Flush())

	r, err := binstream.NewReader(&buf, "adii")
	require.NoError(t, err)
	assert.Equal(t, uint8(7), r.ReadUint8())
	assert.Equal(t, true, r.ReadBool())
	assert.Equal(t, uint32(1234), r.ReadUint32())
	assert.Equal(t, int16(-5), r.ReadInt16())
	assert.Equal(t, int32(-99999), r.ReadInt32())
	assert.Equal(t, uint64(9999999999), r.ReadUint64())
	assert.Equal(t, 3.5, r.ReadFloat64())
	assert.Equal(t, "héllo", r.ReadString())
	path, sub := r.ReadPath()
	assert.Equal(t, `C:\images\a.jpg`, path)
	assert.True(t, sub)
	require.NoError(t, r.Err())
}

func TestReaderRejectsWrongMagic(t *testing.T) {
	var buf bytes.Buffer
	w, err := binstream.NewWriter(&buf, "adid")
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	_, err = binstream.NewReader(&buf, "adii")
	require.Error(t, err)
	assert.Equal(t, api.ErrInvalidFileFormat, api.CodeOf(err))
}
