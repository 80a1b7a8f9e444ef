package connector

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-cgconn/internal/core/endpoint"
	"github.com/dep2p/go-cgconn/internal/core/exchange"
	"github.com/dep2p/go-cgconn/internal/core/latch"
	"github.com/dep2p/go-cgconn/internal/core/metrics"
	"github.com/dep2p/go-cgconn/internal/core/resourcemgr"
	"github.com/dep2p/go-cgconn/internal/core/settings"
	"github.com/dep2p/go-cgconn/internal/core/upgrader"
	pkgif "github.com/dep2p/go-cgconn/pkg/interfaces"
	"github.com/dep2p/go-cgconn/pkg/lib/log"
	"github.com/dep2p/go-cgconn/pkg/types"
)

var logger = log.Logger("core/connector")

// Options 连接器依赖
type Options struct {
	// Registry 握手链注册表（必需）
	Registry *upgrader.Registry

	// Executor 执行器，nil 时每个任务一个 goroutine
	Executor pkgif.Executor

	// Quota 内存配额，nil 时不做内存记账
	Quota *resourcemgr.MemoryQuota

	// Reporter 指标，nil 时不记录
	Reporter metrics.Reporter

	// Clock 时钟，nil 时使用系统时钟
	Clock clock.Clock
}

func (o Options) withDefaults() Options {
	if o.Reporter == nil {
		o.Reporter = metrics.Noop{}
	}
	if o.Clock == nil {
		o.Clock = clock.New()
	}
	return o
}

// pipeline 原始连接 → 握手链 → Settings 交换
type pipeline struct {
	cfg  Config
	opts Options
}

// handshakeOutcome 握手完成回调的结果
type handshakeOutcome struct {
	args *pkgif.HandshakerArgs
	err  error
}

// withDeadline 创建带整体截止时间的 context
//
// 截止时间由注入的时钟驱动，返回的 context 不暴露 Deadline，
// 避免网络原语按系统时间解释模拟时钟的截止时间。
// 外层再套一层标准 cancelCtx，保证 context.Cause 总能取到原因。
func (p *pipeline) withDeadline(parent context.Context) (context.Context, time.Time, context.CancelFunc) {
	deadline := p.opts.Clock.Now().Add(p.cfg.Timeout)
	dctx, stop := p.opts.Clock.WithDeadline(parent, deadline)
	ctx, cancel := context.WithCancelCause(dctx)
	return deadlineHidden{ctx}, deadline, func() {
		cancel(nil)
		stop()
	}
}

// causeOf 返回 ctx 结束的原因
//
// 自定义 context 未记录原因时退回 ctx.Err()。
func causeOf(ctx context.Context) error {
	if err := context.Cause(ctx); err != nil {
		return err
	}
	return ctx.Err()
}

// connectEndpoint 建立原始连接并执行握手链
//
// 握手完成回调和取消路径共享 manager 与 cell：回调只 Set，
// 取消路径只 Shutdown。等待方放弃后迟到的连接由 discard 关闭。
func (p *pipeline) connectEndpoint(
	ctx context.Context,
	addr string,
	args types.Args,
	deadline time.Time,
	kind types.ConnectionKind,
) (*endpoint.Endpoint, types.Args, error) {
	if err := causeOf(ctx); err != nil {
		return nil, args, types.FromContext(err)
	}

	mgr := p.opts.Registry.NewManager(p.opts.Executor)
	cell := latch.New[handshakeOutcome]()

	mgr.DoHandshake(ctx, pkgif.HandshakerArgs{
		Args:     args.Set(types.ArgResolvedAddress, addr),
		Deadline: deadline,
	}, func(res *pkgif.HandshakerArgs, err error) {
		cell.Set(handshakeOutcome{args: res, err: err})
	})

	stop := context.AfterFunc(ctx, func() {
		mgr.Shutdown(types.FromContext(causeOf(ctx)))
	})
	defer stop()

	out, err := cell.Wait(ctx)
	if err != nil {
		cell.Abandon(func(o handshakeOutcome) {
			if o.args != nil && o.args.Endpoint != nil {
				logger.Debug("握手结果迟到，关闭连接", "kind", kind)
				_ = o.args.Endpoint.Close()
			}
		})
		if err = causeOf(ctx); err == nil {
			err = types.NewError(types.ErrCancelled, "handshake wait abandoned")
		}
		return nil, args, types.FromContext(err)
	}
	if out.err != nil {
		return nil, args, out.err
	}
	if out.args == nil || out.args.Endpoint == nil {
		return nil, args, types.NewError(types.ErrEmptyEndpoint, "handshake complete with empty endpoint")
	}

	ep := endpoint.New(out.args.Endpoint, out.args.ReadBuffer)
	if q := p.opts.Quota; q != nil {
		scope := q.OpenConnection(kind.String() + "@" + addr)
		ep.UseMemoryQuota(scope)
		ep.OnClose(scope.Done)
	}
	return ep, out.args.Args, nil
}

// connectAndExchange 建立连接并完成 Settings 交换
//
// 失败时已建立的端点会被关闭。
func (p *pipeline) connectAndExchange(
	ctx context.Context,
	addr string,
	args types.Args,
	deadline time.Time,
	kind types.ConnectionKind,
	tag uint64,
	local settings.Settings,
) (*endpoint.Endpoint, types.Args, settings.Settings, error) {
	ep, args, err := p.connectEndpoint(ctx, addr, args, deadline, kind)
	if err != nil {
		return nil, args, settings.Settings{}, err
	}

	peer, err := exchange.NewClient(ep, tag, p.cfg.MaxPayloadSize).Run(ctx, local)
	if err != nil {
		_ = ep.Close()
		return nil, args, settings.Settings{}, err
	}
	logger.Debug("Settings 交换完成", "kind", kind, "tag", tag, "peer", peer.String())
	return ep, args, peer, nil
}

// deadlineHidden 隐藏 Deadline 的 context
type deadlineHidden struct {
	context.Context
}

func (deadlineHidden) Deadline() (time.Time, bool) {
	return time.Time{}, false
}
