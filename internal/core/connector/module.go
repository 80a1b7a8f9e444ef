package connector

import (
	"context"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-cgconn/config"
	"github.com/dep2p/go-cgconn/internal/core/metrics"
	"github.com/dep2p/go-cgconn/internal/core/negotiation"
	"github.com/dep2p/go-cgconn/internal/core/resourcemgr"
	"github.com/dep2p/go-cgconn/internal/core/upgrader"
	pkgif "github.com/dep2p/go-cgconn/pkg/interfaces"
)

// Factory 连接器工厂
//
// 连接器按每次拨号创建，工厂持有共享的依赖和配置。
type Factory struct {
	cfg    Config
	negCfg negotiation.Config
	opts   Options
}

// NewFactory 创建连接器工厂
func NewFactory(cfg Config, negCfg negotiation.Config, opts Options) (*Factory, error) {
	if opts.Registry == nil {
		return nil, ErrNoRegistry
	}
	return &Factory{cfg: cfg, negCfg: negCfg, opts: opts}, nil
}

// NewConnector 创建新的连接器
//
// NewFactory 已经检查过依赖，这里不会失败。
func (f *Factory) NewConnector() *Connector {
	return newConnector(f.cfg, f.negCfg, f.opts)
}

// Dial 用新的连接器同步建立控制连接
func (f *Factory) Dial(ctx context.Context, args ConnectArgs) (*Result, error) {
	return f.NewConnector().Dial(ctx, args)
}

// Params 连接器依赖参数
type Params struct {
	fx.In

	Registry   *upgrader.Registry
	Quota      *resourcemgr.MemoryQuota `optional:"true"`
	Reporter   metrics.Reporter         `optional:"true"`
	Clock      clock.Clock              `optional:"true"`
	Executor   pkgif.Executor           `optional:"true"`
	UnifiedCfg *config.Config           `optional:"true"`
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("connector",
		fx.Provide(ProvideFactory),
	)
}

// ProvideFactory 提供连接器工厂（依赖注入）
func ProvideFactory(p Params) (*Factory, error) {
	return NewFactory(ConfigFromUnified(p.UnifiedCfg), negotiation.ConfigFromUnified(p.UnifiedCfg), Options{
		Registry: p.Registry,
		Executor: p.Executor,
		Quota:    p.Quota,
		Reporter: p.Reporter,
		Clock:    p.Clock,
	})
}
