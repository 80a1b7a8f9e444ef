package upgrader

import (
	"crypto/tls"

	"go.uber.org/fx"

	"github.com/dep2p/go-cgconn/config"
	pkgif "github.com/dep2p/go-cgconn/pkg/interfaces"
)

// Params 依赖参数
type Params struct {
	fx.In

	Connector  pkgif.RawConnector
	UnifiedCfg *config.Config `optional:"true"`

	// TLS 覆盖统一配置中的 TLS 设置
	TLS *tls.Config `optional:"true"`
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("upgrader",
		fx.Provide(
			ProvideRegistry,
		),
	)
}

// ProvideRegistry 提供握手链注册表（依赖注入）
func ProvideRegistry(p Params) *Registry {
	cfg := ConfigFromUnified(p.UnifiedCfg)
	if p.TLS != nil {
		cfg.TLS = p.TLS
	}
	r := NewDefaultRegistry(cfg, p.Connector)
	logger.Debug("握手链已配置", "handshakers", r.Names())
	return r
}
