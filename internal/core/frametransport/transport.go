package frametransport

import (
	"context"
	"errors"
	"slices"
	"sync"

	"go.uber.org/multierr"

	"github.com/dep2p/go-cgconn/internal/core/endpoint"
	"github.com/dep2p/go-cgconn/internal/core/pending"
	"github.com/dep2p/go-cgconn/pkg/lib/log"
	"github.com/dep2p/go-cgconn/pkg/types"
)

var logger = log.Logger("core/frametransport")

// ErrClosed 帧传输已关闭
var ErrClosed = errors.New("frametransport: closed")

// ErrNoDataConnector 没有可用的数据连接建立者
var ErrNoDataConnector = errors.New("frametransport: no data connector")

// DataConnector 按需建立数据连接
//
// 由帧传输持有，Close 时取消尚未完成的拨号。
type DataConnector interface {
	Connect(id string) *pending.PendingConnection
	Close()
}

// FrameTransport 帧传输
type FrameTransport struct {
	control   *endpoint.Endpoint
	connector DataConnector
	opts      Options

	mu       sync.Mutex
	pendings []*pending.PendingConnection
	closed   bool

	closeOnce sync.Once
	closeErr  error
}

// NewFrameTransport 创建帧传输，接管控制端点、待建立连接和数据连接建立者的所有权
//
// connector 可以为 nil，此时不能按需建立新的数据连接。
func NewFrameTransport(
	control *endpoint.Endpoint,
	pendings []*pending.PendingConnection,
	connector DataConnector,
	opts Options,
) *FrameTransport {
	return &FrameTransport{
		control:   control,
		connector: connector,
		pendings:  pendings,
		opts:      opts,
	}
}

// Control 返回控制连接端点
func (t *FrameTransport) Control() *endpoint.Endpoint {
	return t.control
}

// Options 返回传输选项
func (t *FrameTransport) Options() Options {
	return t.opts
}

// Pending 返回待建立的数据连接
func (t *FrameTransport) Pending() []*pending.PendingConnection {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.pendings)
}

// Connect 按需建立新的数据连接
//
// 返回的句柄加入待建立列表，随传输一起关闭。
func (t *FrameTransport) Connect(id string) (*pending.PendingConnection, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, ErrClosed
	}
	if t.connector == nil {
		return nil, ErrNoDataConnector
	}
	p := t.connector.Connect(id)
	t.pendings = append(t.pendings, p)
	logger.Debug("按需建立数据连接", "id", id, "tag", p.Tag())
	return p, nil
}

// DataConnections 等待所有数据连接建立结果
//
// 返回已就绪的端点和各连接的错误，单条失败不影响其它连接。
// ctx 结束时尚未解析的连接计入 errs。
func (t *FrameTransport) DataConnections(ctx context.Context) (map[string]*endpoint.Endpoint, map[string]error) {
	pendings := t.Pending()
	ready := make(map[string]*endpoint.Endpoint, len(pendings))
	errs := make(map[string]error)
	for _, p := range pendings {
		ep, err := p.Await(ctx)
		if err != nil {
			errs[p.ID()] = err
			continue
		}
		ready[p.ID()] = ep
	}
	return ready, errs
}

// Close 关闭控制连接和所有数据连接
//
// 先停止数据连接建立者，未完成的拨号以取消结束。
func (t *FrameTransport) Close() error {
	t.closeOnce.Do(func() {
		t.mu.Lock()
		t.closed = true
		pendings := t.pendings
		t.mu.Unlock()

		if t.connector != nil {
			t.connector.Close()
		}

		var err error
		for _, p := range pendings {
			err = multierr.Append(err, p.Close())
		}
		if t.control != nil {
			err = multierr.Append(err, t.control.Close())
		}
		if err != nil {
			logger.Debug("关闭帧传输出错", "err", err)
		}
		t.closeErr = err
	})
	return t.closeErr
}

// ClientTransport 客户端传输
type ClientTransport struct {
	args    types.Args
	frame   *FrameTransport
	chunker MessageChunker
}

// NewClientTransport 创建客户端传输
func NewClientTransport(args types.Args, frame *FrameTransport, chunker MessageChunker) *ClientTransport {
	return &ClientTransport{args: args, frame: frame, chunker: chunker}
}

// Args 返回协商后的通道配置
func (c *ClientTransport) Args() types.Args {
	return c.args
}

// FrameTransport 返回底层帧传输
func (c *ClientTransport) FrameTransport() *FrameTransport {
	return c.frame
}

// Chunker 返回消息分块参数
func (c *ClientTransport) Chunker() MessageChunker {
	return c.chunker
}

// Close 关闭传输
func (c *ClientTransport) Close() error {
	return c.frame.Close()
}
