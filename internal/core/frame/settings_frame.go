package frame

import (
	"github.com/dep2p/go-cgconn/internal/core/settings"
	"github.com/dep2p/go-cgconn/pkg/types"
)

// SettingsFrame Settings 帧
type SettingsFrame struct {
	Settings settings.Settings
}

// Serialize 编码为 [帧头][负载]
func (f *SettingsFrame) Serialize(tag uint64) ([]byte, error) {
	payload := settings.Marshal(&f.Settings)
	h := TcpFrameHeader{
		Header: Header{
			Type:          TypeSettings,
			PayloadLength: uint32(len(payload)),
		},
		PayloadTag: tag,
	}
	out := make([]byte, HeaderSize+len(payload))
	if err := h.SerializeTo(out); err != nil {
		return nil, err
	}
	copy(out[HeaderSize:], payload)
	return out, nil
}

// Deserialize 根据帧头解码负载
func (f *SettingsFrame) Deserialize(h TcpFrameHeader, payload []byte) error {
	if h.Type != TypeSettings {
		return types.NewError(types.ErrProtocol, "expected settings frame, got "+h.Type.String())
	}
	if uint32(len(payload)) != h.PayloadLength {
		return types.NewError(types.ErrFrameParse, "settings payload length mismatch")
	}
	s, err := settings.Unmarshal(payload)
	if err != nil {
		return err
	}
	f.Settings = s
	return nil
}
