package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-cgconn/internal/core/settings"
	"github.com/dep2p/go-cgconn/pkg/types"
)

// TestHeader_Layout 测试帧头字节布局
func TestHeader_Layout(t *testing.T) {
	h := TcpFrameHeader{
		Header:     Header{Type: TypeMessage, StreamID: 7, PayloadLength: 0x0102},
		PayloadTag: 3,
	}
	buf, err := h.Serialize()
	require.NoError(t, err)
	require.Len(t, buf, HeaderSize)

	assert.Equal(t, []byte{0xa0, 3, 0, 0, 0, 0, 0, 0}, buf[0:8])
	assert.Equal(t, []byte{7, 0, 0, 0}, buf[8:12])
	assert.Equal(t, []byte{0x02, 0x01, 0, 0}, buf[12:16])

	got, err := Parse(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

// TestHeader_MaxTag 测试 56 位标签边界
func TestHeader_MaxTag(t *testing.T) {
	h := TcpFrameHeader{Header: Header{Type: TypeSettings}, PayloadTag: MaxPayloadTag}
	buf, err := h.Serialize()
	require.NoError(t, err)
	got, err := Parse(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, MaxPayloadTag, got.PayloadTag)

	h.PayloadTag = MaxPayloadTag + 1
	_, err = h.Serialize()
	assert.ErrorIs(t, err, ErrTagOverflow)
}

// TestParse_Errors 测试解析失败
func TestParse_Errors(t *testing.T) {
	t.Run("Short", func(t *testing.T) {
		_, err := Parse(make([]byte, HeaderSize-1), 0)
		assert.ErrorIs(t, err, types.ErrFrameParse)
		assert.ErrorIs(t, err, ErrShortHeader)
	})

	t.Run("UnknownType", func(t *testing.T) {
		buf := make([]byte, HeaderSize)
		buf[0] = 0x42
		_, err := Parse(buf, 0)
		assert.ErrorIs(t, err, types.ErrFrameParse)
		assert.ErrorIs(t, err, ErrUnknownFrameType)
	})

	t.Run("SettingsWithStream", func(t *testing.T) {
		h := TcpFrameHeader{Header: Header{Type: TypeSettings, StreamID: 1}}
		buf, err := h.Serialize()
		require.NoError(t, err)
		_, err = Parse(buf, 0)
		assert.ErrorIs(t, err, ErrStreamIDOnSettings)
	})

	t.Run("TooLarge", func(t *testing.T) {
		h := TcpFrameHeader{Header: Header{Type: TypeMessage, PayloadLength: 1025}}
		buf, err := h.Serialize()
		require.NoError(t, err)
		_, err = Parse(buf, 1024)
		assert.ErrorIs(t, err, types.ErrFrameParse)
		assert.ErrorIs(t, err, ErrPayloadTooLarge)

		_, err = Parse(buf, 0)
		assert.NoError(t, err)
	})
}

// TestType_String 测试帧类型名称
func TestType_String(t *testing.T) {
	assert.Equal(t, "Settings", TypeSettings.String())
	assert.Equal(t, "Cancel", TypeCancel.String())
	assert.Equal(t, "Unknown(0x42)", Type(0x42).String())
	assert.False(t, Type(0x01).IsValid())
}

// TestSettingsFrame 测试 Settings 帧编解码
func TestSettingsFrame(t *testing.T) {
	f := SettingsFrame{Settings: settings.Settings{
		DataChannel:   true,
		ConnectionIDs: []string{"a"},
		Alignment:     64,
	}}
	out, err := f.Serialize(5)
	require.NoError(t, err)

	h, err := Parse(out[:HeaderSize], 0)
	require.NoError(t, err)
	assert.Equal(t, TypeSettings, h.Type)
	assert.Equal(t, uint64(5), h.PayloadTag)
	assert.Equal(t, len(out)-HeaderSize, int(h.PayloadLength))

	var got SettingsFrame
	require.NoError(t, got.Deserialize(h, out[HeaderSize:]))
	assert.Equal(t, f.Settings, got.Settings)

	h.Type = TypeMessage
	assert.ErrorIs(t, got.Deserialize(h, out[HeaderSize:]), types.ErrProtocol)

	h.Type = TypeSettings
	assert.ErrorIs(t, got.Deserialize(h, out[HeaderSize+1:]), types.ErrFrameParse)
}
