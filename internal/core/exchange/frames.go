package exchange

import (
	"context"
	"errors"
	"io"

	"github.com/dep2p/go-cgconn/internal/core/endpoint"
	"github.com/dep2p/go-cgconn/internal/core/frame"
	"github.com/dep2p/go-cgconn/internal/core/settings"
	"github.com/dep2p/go-cgconn/pkg/types"
)

// WriteSettingsFrame 完整写出一个 Settings 帧
func WriteSettingsFrame(ctx context.Context, ep *endpoint.Endpoint, tag uint64, s settings.Settings) error {
	f := frame.SettingsFrame{Settings: s}
	buf, err := f.Serialize(tag)
	if err != nil {
		return types.WrapError(types.ErrWrite, "serialize settings frame", err)
	}
	return ep.Write(ctx, buf)
}

// ReadHeader 精确读取并解析一个帧头
//
// 连接在帧头中途结束视为帧头截断（types.ErrFrameParse）。
func ReadHeader(ctx context.Context, ep *endpoint.Endpoint, maxPayload uint32) (frame.TcpFrameHeader, error) {
	buf, err := ep.ReadExact(ctx, frame.HeaderSize)
	if err != nil {
		if errors.Is(err, types.ErrRead) && (errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)) {
			return frame.TcpFrameHeader{}, types.WrapError(types.ErrFrameParse, "truncated frame header", err)
		}
		return frame.TcpFrameHeader{}, err
	}
	return frame.Parse(buf, maxPayload)
}

// ReadSettingsPayload 精确读取负载并解码 Settings
func ReadSettingsPayload(ctx context.Context, ep *endpoint.Endpoint, h frame.TcpFrameHeader) (settings.Settings, error) {
	payload, err := ep.ReadExact(ctx, int(h.PayloadLength))
	if err != nil {
		return settings.Settings{}, err
	}
	var f frame.SettingsFrame
	if err := f.Deserialize(h, payload); err != nil {
		return settings.Settings{}, err
	}
	return f.Settings, nil
}
