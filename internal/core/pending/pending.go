// Package pending 实现待建立的数据连接句柄
//
// PendingConnection 以不透明的连接 ID 标识一条尚未建立完成的数据连接，
// 最终解析为一个端点或一个错误。各 PendingConnection 相互独立：
// 某一条失败或被取消不影响其它数据连接和控制连接。
package pending

import (
	"context"
	"sync"

	"github.com/dep2p/go-cgconn/internal/core/endpoint"
	"github.com/dep2p/go-cgconn/internal/core/latch"
	"github.com/dep2p/go-cgconn/pkg/lib/log"
	"github.com/dep2p/go-cgconn/pkg/types"
)

var logger = log.Logger("core/pending")

// outcome 解析结果
type outcome struct {
	ep  *endpoint.Endpoint
	err error
}

// PendingConnection 待建立的数据连接
type PendingConnection struct {
	id   string
	tag  uint64
	cell *latch.Latch[outcome]

	mu     sync.Mutex
	cancel context.CancelFunc
}

// New 创建待建立连接
//
// cancel 用于中止正在进行的建立过程，可为 nil（之后通过 SetCancel 设置）。
func New(id string, tag uint64, cancel context.CancelFunc) *PendingConnection {
	return &PendingConnection{
		id:     id,
		tag:    tag,
		cell:   latch.New[outcome](),
		cancel: cancel,
	}
}

// Failed 创建已失败的待建立连接
func Failed(id string, tag uint64, err error) *PendingConnection {
	p := New(id, tag, nil)
	p.Resolve(nil, err)
	return p
}

// ID 返回连接 ID
func (p *PendingConnection) ID() string {
	return p.id
}

// Tag 返回帧负载标签
func (p *PendingConnection) Tag() uint64 {
	return p.tag
}

// SetCancel 设置取消函数
func (p *PendingConnection) SetCancel(cancel context.CancelFunc) {
	p.mu.Lock()
	p.cancel = cancel
	p.mu.Unlock()
}

// Resolve 写入建立结果
//
// 只有第一次调用生效；之后到达的端点会被关闭，避免泄漏。
func (p *PendingConnection) Resolve(ep *endpoint.Endpoint, err error) bool {
	if ep == nil && err == nil {
		err = types.NewError(types.ErrEmptyEndpoint, "data connection resolved with empty endpoint")
	}
	if p.cell.Set(outcome{ep: ep, err: err}) {
		return true
	}
	if ep != nil {
		logger.Debug("数据连接结果已确定，关闭迟到的端点", "id", p.id)
		_ = ep.Close()
	}
	return false
}

// Done 返回解析完成时关闭的 channel
func (p *PendingConnection) Done() <-chan struct{} {
	return p.cell.Done()
}

// Await 等待建立结果
//
// ctx 结束只放弃本次等待，不取消建立过程。
func (p *PendingConnection) Await(ctx context.Context) (*endpoint.Endpoint, error) {
	o, err := p.cell.Wait(ctx)
	if err != nil {
		return nil, types.FromContext(err)
	}
	return o.ep, o.err
}

// Cancel 取消建立过程
//
// 尚未解析时立即以取消错误解析。
func (p *PendingConnection) Cancel() {
	p.mu.Lock()
	cancel := p.cancel
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	p.Resolve(nil, types.NewError(types.ErrCancelled, "data connection cancelled"))
}

// Close 取消并关闭已建立的端点
func (p *PendingConnection) Close() error {
	p.Cancel()
	o, err := p.cell.Wait(context.Background())
	if err != nil || o.ep == nil {
		return nil
	}
	return o.ep.Close()
}
