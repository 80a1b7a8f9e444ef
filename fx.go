package cgconn

import (
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-cgconn/internal/core/connector"
	"github.com/dep2p/go-cgconn/internal/core/metrics"
	"github.com/dep2p/go-cgconn/internal/core/resourcemgr"
	"github.com/dep2p/go-cgconn/internal/core/transport/tcp"
	"github.com/dep2p/go-cgconn/internal/core/upgrader"
	pkgif "github.com/dep2p/go-cgconn/pkg/interfaces"
)

// buildFxApp 构建 Fx 应用
//
// 加载顺序（按依赖）：
//
//	transport/tcp → upgrader → resourcemgr → metrics → connector
func buildFxApp(o *options, c *Client) (*fx.App, error) {
	if err := o.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	modules := []fx.Option{
		fx.Supply(o.cfg),

		tcp.Module(),
		upgrader.Module(),
		resourcemgr.Module,
		metrics.Module,
		connector.Module(),
	}

	// 可选注入
	if o.tls != nil {
		modules = append(modules, fx.Supply(o.tls))
	}
	if o.registerer != nil {
		reg := o.registerer
		modules = append(modules, fx.Provide(func() prometheus.Registerer { return reg }))
	}
	if o.clock != nil {
		clk := o.clock
		modules = append(modules, fx.Provide(func() clock.Clock { return clk }))
	}
	if o.executor != nil {
		exec := o.executor
		modules = append(modules, fx.Provide(func() pkgif.Executor { return exec }))
	}

	if len(o.userFxOptions) > 0 {
		modules = append(modules, o.userFxOptions...)
	}

	modules = append(modules,
		fx.Populate(&c.factory, &c.reporter, &c.quota),

		// 禁用 Fx 日志输出（避免干扰用户日志）
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
	)

	app := fx.New(modules...)
	if err := app.Err(); err != nil {
		return nil, fmt.Errorf("build fx app: %w", err)
	}
	return app, nil
}
