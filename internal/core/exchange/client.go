package exchange

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/dep2p/go-cgconn/internal/core/endpoint"
	"github.com/dep2p/go-cgconn/internal/core/frame"
	"github.com/dep2p/go-cgconn/internal/core/settings"
	"github.com/dep2p/go-cgconn/pkg/lib/log"
	"github.com/dep2p/go-cgconn/pkg/types"
)

var logger = log.Logger("core/exchange")

// State 交换状态
type State int32

const (
	StateSendSettings State = iota
	StateAwaitHeader
	StateAwaitPayload
	StateDone
	StateFailed
)

// String 返回状态名称
func (s State) String() string {
	switch s {
	case StateSendSettings:
		return "SendSettings"
	case StateAwaitHeader:
		return "AwaitHeader"
	case StateAwaitPayload:
		return "AwaitPayload"
	case StateDone:
		return "Done"
	case StateFailed:
		return "Failed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Client 客户端 Settings 交换
//
// 每个 Client 只能 Run 一次。
type Client struct {
	ep         *endpoint.Endpoint
	tag        uint64
	maxPayload uint32

	state atomic.Int32
	ran   atomic.Bool
}

// NewClient 创建客户端交换
//
// tag 为本连接的负载标签，控制连接为 frame.ControlTag。
func NewClient(ep *endpoint.Endpoint, tag uint64, maxPayload uint32) *Client {
	return &Client{ep: ep, tag: tag, maxPayload: maxPayload}
}

// State 返回当前状态
func (c *Client) State() State {
	return State(c.state.Load())
}

// Run 执行交换并返回对端 Settings
func (c *Client) Run(ctx context.Context, local settings.Settings) (settings.Settings, error) {
	if !c.ran.CompareAndSwap(false, true) {
		return settings.Settings{}, types.NewError(types.ErrProtocol, "settings exchange already run")
	}
	peer, err := c.run(ctx, local)
	if err != nil {
		logger.Debug("Settings 交换失败", "tag", c.tag, "state", c.State(), "err", err)
		c.state.Store(int32(StateFailed))
		return settings.Settings{}, err
	}
	c.state.Store(int32(StateDone))
	return peer, nil
}

func (c *Client) run(ctx context.Context, local settings.Settings) (settings.Settings, error) {
	c.state.Store(int32(StateSendSettings))
	if err := WriteSettingsFrame(ctx, c.ep, c.tag, local); err != nil {
		return settings.Settings{}, err
	}

	c.state.Store(int32(StateAwaitHeader))
	h, err := ReadHeader(ctx, c.ep, c.maxPayload)
	if err != nil {
		return settings.Settings{}, err
	}
	if h.PayloadTag != c.tag {
		return settings.Settings{}, types.NewError(types.ErrProtocol, "unexpected connection id in frame")
	}
	if h.Type != frame.TypeSettings {
		return settings.Settings{}, types.NewError(types.ErrProtocol, "expected settings frame, got "+h.Type.String())
	}

	c.state.Store(int32(StateAwaitPayload))
	return ReadSettingsPayload(ctx, c.ep, h)
}
