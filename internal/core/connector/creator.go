package connector

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/dep2p/go-cgconn/internal/core/endpoint"
	"github.com/dep2p/go-cgconn/internal/core/frametransport"
	"github.com/dep2p/go-cgconn/internal/core/negotiation"
	"github.com/dep2p/go-cgconn/internal/core/pending"
	"github.com/dep2p/go-cgconn/internal/core/settings"
	"github.com/dep2p/go-cgconn/pkg/types"
)

// ConnectionCreator 数据连接创建器
//
// 每次控制连接握手成功后创建一个，为服务端请求的连接 ID 建立数据连接。
// 拨号并发受信号量限制，速率受令牌桶限制。
type ConnectionCreator struct {
	p    *pipeline
	addr string
	args types.Args

	sem     *semaphore.Weighted
	limiter *rate.Limiter

	root   context.Context
	cancel context.CancelCauseFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	nextTag uint64
	closed  bool
}

// 确保实现了接口
var (
	_ negotiation.DataConnector    = (*ConnectionCreator)(nil)
	_ frametransport.DataConnector = (*ConnectionCreator)(nil)
)

func newConnectionCreator(p *pipeline, addr string, args types.Args) *ConnectionCreator {
	root, cancel := context.WithCancelCause(context.Background())
	c := &ConnectionCreator{
		p:      p,
		addr:   addr,
		args:   args,
		sem:    semaphore.NewWeighted(int64(p.cfg.MaxConcurrentDials)),
		root:   root,
		cancel: cancel,
	}
	if p.cfg.DialRate > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(p.cfg.DialRate), p.cfg.DialBurst)
	}
	return c
}

// Connect 为 id 发起数据连接
//
// 立即返回待建立句柄，负载标签按请求顺序从 1 开始分配。
func (c *ConnectionCreator) Connect(id string) *pending.PendingConnection {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return pending.Failed(id, 0, types.WrapError(types.ErrCancelled, "data connection cancelled", ErrCreatorClosed))
	}
	c.nextTag++
	tag := c.nextTag
	c.wg.Add(1)
	c.mu.Unlock()

	ctx, cancel := context.WithCancelCause(c.root)
	pc := pending.New(id, tag, func() {
		cancel(types.NewError(types.ErrCancelled, "data connection cancelled"))
	})

	run := func() {
		defer c.wg.Done()
		defer cancel(nil)

		ep, err := c.dial(ctx, id, tag)
		c.p.opts.Reporter.DataConnectionResult(err)
		if err != nil {
			logger.Debug("数据连接失败", "id", id, "tag", tag, "err", err)
		} else {
			logger.Debug("数据连接已建立", "id", id, "tag", tag)
		}
		pc.Resolve(ep, err)
	}
	if exec := c.p.opts.Executor; exec != nil {
		exec.Run(run)
	} else {
		go run()
	}
	return pc
}

func (c *ConnectionCreator) dial(ctx context.Context, id string, tag uint64) (*endpoint.Endpoint, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, types.FromContext(causeOf(ctx))
	}
	defer c.sem.Release(1)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil, types.FromContext(causeOf(ctx))
			}
			return nil, types.WrapError(types.ErrCancelled, "data connection rate limited", err)
		}
	}

	dctx, deadline, cancel := c.p.withDeadline(ctx)
	defer cancel()

	local := settings.Settings{DataChannel: true, ConnectionIDs: []string{id}}
	ep, _, _, err := c.p.connectAndExchange(dctx, c.addr, c.args, deadline, types.Data(id), tag, local)
	return ep, err
}

// Close 取消所有进行中的数据连接拨号并等待其结束
//
// 由持有它的 FrameTransport 在关闭时调用。已经建立的数据连接不受影响。
func (c *ConnectionCreator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.cancel(types.WrapError(types.ErrCancelled, "data connection cancelled", ErrCreatorClosed))
	c.wg.Wait()
}
