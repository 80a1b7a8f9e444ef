package connector

import (
	"sync/atomic"

	"github.com/dep2p/go-cgconn/internal/core/frametransport"
	"github.com/dep2p/go-cgconn/internal/core/settings"
	"github.com/dep2p/go-cgconn/pkg/types"
)

// Result 连接建立结果
type Result struct {
	// Transport 客户端传输，持有控制连接和待建立的数据连接
	Transport *frametransport.ClientTransport

	// Args 握手链更新后的通道配置
	Args types.Args

	// Peer 服务端 Settings
	Peer settings.Settings

	// AttemptID 连接尝试 ID
	AttemptID string
}

// Close 关闭结果持有的传输
func (r *Result) Close() error {
	if r == nil || r.Transport == nil {
		return nil
	}
	return r.Transport.Close()
}

// Notify 结果回调
//
// 成功时 err 为 nil；失败时 res 为 nil。
type Notify func(res *Result, err error)

// ResultNotifier 单次结果通知
//
// 只有第一次 Deliver 生效，之后到达的成功结果会被关闭。
type ResultNotifier struct {
	fn        Notify
	delivered atomic.Bool
}

// NewResultNotifier 创建结果通知
func NewResultNotifier(fn Notify) *ResultNotifier {
	return &ResultNotifier{fn: fn}
}

// Deliver 投递结果，返回是否生效
func (n *ResultNotifier) Deliver(res *Result, err error) bool {
	if !n.delivered.CompareAndSwap(false, true) {
		if err == nil {
			_ = res.Close()
		}
		return false
	}
	if n.fn != nil {
		n.fn(res, err)
	} else if err == nil {
		_ = res.Close()
	}
	return true
}

// Delivered 是否已经投递
func (n *ResultNotifier) Delivered() bool {
	return n.delivered.Load()
}
