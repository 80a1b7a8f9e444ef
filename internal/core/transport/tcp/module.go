package tcp

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-cgconn/config"
	pkgif "github.com/dep2p/go-cgconn/pkg/interfaces"
)

// Params 依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
}

// Result 导出结果
type Result struct {
	fx.Out

	Transport *Transport
	Connector pkgif.RawConnector
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("transport/tcp",
		fx.Provide(ProvideTransport),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideTransport 提供 TCP 传输
func ProvideTransport(p Params) Result {
	t := NewTransport(ConfigFromUnified(p.UnifiedCfg))
	return Result{Transport: t, Connector: t}
}

func registerLifecycle(lc fx.Lifecycle, t *Transport) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return t.Close()
		},
	})
}
