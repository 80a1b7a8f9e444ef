package connector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dep2p/go-cgconn/internal/core/activity"
	"github.com/dep2p/go-cgconn/internal/core/frame"
	"github.com/dep2p/go-cgconn/internal/core/frametransport"
	"github.com/dep2p/go-cgconn/internal/core/negotiation"
	"github.com/dep2p/go-cgconn/internal/core/settings"
	"github.com/dep2p/go-cgconn/pkg/lib/log"
	"github.com/dep2p/go-cgconn/pkg/types"
)

// ============================================================================
//                              State - 连接器状态
// ============================================================================

// State 连接器状态
type State int

const (
	// StateIdle 空闲，可以发起连接
	StateIdle State = iota
	// StateConnecting 有进行中的连接尝试
	StateConnecting
	// StateShutDown 已关闭
	StateShutDown
)

// String 返回状态名称
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateConnecting:
		return "Connecting"
	case StateShutDown:
		return "ShutDown"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ============================================================================
//                              Connector
// ============================================================================

// ConnectArgs 连接参数
type ConnectArgs struct {
	// Address 已解析的目标地址
	Address string

	// Args 通道配置
	Args types.Args
}

// attempt 进行中的连接尝试
type attempt struct {
	id     string
	cancel context.CancelCauseFunc
	act    *activity.Activity
}

// Connector 控制连接建立器
//
// 同一时刻最多一个进行中的连接尝试。所有状态转换在同一把锁下进行。
type Connector struct {
	p      *pipeline
	negCfg negotiation.Config

	mu      sync.Mutex
	state   State
	current *attempt
}

// NewConnector 创建连接器
func NewConnector(cfg Config, negCfg negotiation.Config, opts Options) (*Connector, error) {
	if opts.Registry == nil {
		return nil, ErrNoRegistry
	}
	return newConnector(cfg, negCfg, opts), nil
}

// newConnector 创建连接器，调用方保证 opts.Registry 非空
func newConnector(cfg Config, negCfg negotiation.Config, opts Options) *Connector {
	return &Connector{
		p:      &pipeline{cfg: cfg.withDefaults(), opts: opts.withDefaults()},
		negCfg: negCfg,
	}
}

// State 返回当前状态
func (c *Connector) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect 发起控制连接
//
// notify 对每次调用恰好执行一次，可能运行在执行器 goroutine 上。
func (c *Connector) Connect(args ConnectArgs, notify Notify) {
	n := NewResultNotifier(notify)

	c.mu.Lock()
	switch c.state {
	case StateShutDown:
		c.mu.Unlock()
		n.Deliver(nil, types.NewError(types.ErrCancelled, "connector shut down"))
		return
	case StateConnecting:
		c.mu.Unlock()
		n.Deliver(nil, ErrConnectInProgress)
		return
	}

	parent, cancel := context.WithCancelCause(context.Background())
	at := &attempt{id: uuid.New().String(), cancel: cancel}
	c.state = StateConnecting
	c.current = at
	c.mu.Unlock()

	ctx, deadline, stop := c.p.withDeadline(parent)
	start := c.p.opts.Clock.Now()
	c.p.opts.Reporter.ConnectAttempt()
	logger.Debug("开始建立控制连接", "attempt", log.TruncateID(at.id, 8), "addr", args.Address, "deadline", deadline)

	act := activity.Spawn(ctx, c.p.opts.Executor,
		func(ctx context.Context) (*Result, error) {
			return c.connect(ctx, at.id, deadline, args)
		},
		func(res *Result, err error) {
			stop()
			cancel(nil)
			res, err = c.finish(at, res, err)
			c.p.opts.Reporter.ConnectResult(err, c.p.opts.Clock.Since(start))
			if err != nil {
				logger.Debug("控制连接失败", "attempt", log.TruncateID(at.id, 8), "addr", args.Address, "err", err)
			} else {
				logger.Info("控制连接已建立", "attempt", log.TruncateID(at.id, 8), "addr", args.Address,
					"dataConnections", len(res.Transport.FrameTransport().Pending()))
			}
			n.Deliver(res, err)
		},
		func(res *Result) {
			_ = res.Close()
		},
	)

	c.mu.Lock()
	at.act = act
	shutdown := c.state == StateShutDown
	c.mu.Unlock()
	if shutdown {
		act.Cancel(types.NewError(types.ErrCancelled, "connect cancelled by shutdown"))
	}
}

// finish 结束连接尝试并回到 Idle
//
// 已经 Shutdown 时成功结果被关闭，报告取消。
func (c *Connector) finish(at *attempt, res *Result, err error) (*Result, error) {
	c.mu.Lock()
	shutdown := c.state == StateShutDown
	if c.current == at {
		c.current = nil
		if c.state == StateConnecting {
			c.state = StateIdle
		}
	}
	c.mu.Unlock()

	if shutdown && err == nil {
		_ = res.Close()
		return nil, types.NewError(types.ErrCancelled, "connect cancelled by shutdown")
	}
	return res, err
}

// connect 执行控制连接流水线
func (c *Connector) connect(ctx context.Context, attemptID string, deadline time.Time, args ConnectArgs) (*Result, error) {
	neg := negotiation.NewClientConfig(c.negCfg)
	var local settings.Settings
	neg.PrepareClientOutgoingSettings(&local)

	ep, negotiated, peer, err := c.p.connectAndExchange(ctx, args.Address, args.Args, deadline,
		types.Control(), frame.ControlTag, local)
	if err != nil {
		return nil, err
	}

	creator := newConnectionCreator(c.p, args.Address, args.Args)
	if err := neg.ReceiveServerIncomingSettings(peer, creator); err != nil {
		creator.Close()
		_ = ep.Close()
		return nil, err
	}

	opts, err := neg.MakeFrameTransportOptions()
	if err != nil {
		creator.Close()
		_ = ep.Close()
		return nil, types.WrapError(types.ErrIncompatibleSettings, "frame transport options", err)
	}
	chunker, err := neg.MakeMessageChunker()
	if err != nil {
		creator.Close()
		_ = ep.Close()
		return nil, types.WrapError(types.ErrIncompatibleSettings, "message chunker", err)
	}

	ft := frametransport.NewFrameTransport(ep, neg.TakePendingDataEndpoints(), creator, opts)
	return &Result{
		Transport: frametransport.NewClientTransport(negotiated, ft, chunker),
		Args:      negotiated,
		Peer:      peer,
		AttemptID: attemptID,
	}, nil
}

// Shutdown 关闭连接器
//
// 幂等；取消进行中的连接尝试，该尝试以取消错误通知。
func (c *Connector) Shutdown() {
	c.mu.Lock()
	if c.state == StateShutDown {
		c.mu.Unlock()
		return
	}
	c.state = StateShutDown
	at := c.current
	var act *activity.Activity
	if at != nil {
		act = at.act
	}
	c.mu.Unlock()

	if at == nil {
		return
	}
	logger.Debug("关闭连接器，取消进行中的连接", "attempt", log.TruncateID(at.id, 8))
	cause := types.NewError(types.ErrCancelled, "connect cancelled by shutdown")
	if act != nil {
		act.Cancel(cause)
	}
	at.cancel(cause)
}

// Dial 同步建立控制连接
//
// ctx 结束时关闭连接器并等待取消结果。
func (c *Connector) Dial(ctx context.Context, args ConnectArgs) (*Result, error) {
	type outcome struct {
		res *Result
		err error
	}
	ch := make(chan outcome, 1)
	c.Connect(args, func(res *Result, err error) {
		ch <- outcome{res: res, err: err}
	})

	select {
	case o := <-ch:
		return o.res, o.err
	case <-ctx.Done():
		c.Shutdown()
		o := <-ch
		if o.err == nil {
			// 取消与完成竞争时完成一方胜出
			return o.res, nil
		}
		return nil, types.FromContext(context.Cause(ctx))
	}
}
