package exchange

import (
	"context"

	"github.com/dep2p/go-cgconn/internal/core/endpoint"
	"github.com/dep2p/go-cgconn/internal/core/frame"
	"github.com/dep2p/go-cgconn/internal/core/settings"
	"github.com/dep2p/go-cgconn/pkg/types"
)

// ResponderFunc 根据客户端 Settings 和负载标签生成回复
type ResponderFunc func(client settings.Settings, tag uint64) (settings.Settings, error)

// Respond 服务端交换：读取客户端 Settings 帧，以相同标签写回回复
//
// 返回客户端 Settings 和标签。
func Respond(ctx context.Context, ep *endpoint.Endpoint, maxPayload uint32, fn ResponderFunc) (settings.Settings, uint64, error) {
	h, err := ReadHeader(ctx, ep, maxPayload)
	if err != nil {
		return settings.Settings{}, 0, err
	}
	if h.Type != frame.TypeSettings {
		return settings.Settings{}, h.PayloadTag, types.NewError(types.ErrProtocol, "expected settings frame, got "+h.Type.String())
	}
	client, err := ReadSettingsPayload(ctx, ep, h)
	if err != nil {
		return settings.Settings{}, h.PayloadTag, err
	}
	reply, err := fn(client, h.PayloadTag)
	if err != nil {
		return client, h.PayloadTag, err
	}
	if err := WriteSettingsFrame(ctx, ep, h.PayloadTag, reply); err != nil {
		return client, h.PayloadTag, err
	}
	return client, h.PayloadTag, nil
}
