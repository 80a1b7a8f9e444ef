package resourcemgr

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-cgconn/config"
)

// Config 内存配额配置
type Config struct {
	// MemoryLimit 限额（字节），0 表示按系统内存计算
	MemoryLimit int64
}

// ConfigFromUnified 从统一配置创建配额配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return Config{}
	}
	return Config{MemoryLimit: cfg.Resource.MemoryLimit}
}

// Params 依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
}

// Module 是 resourcemgr 的 Fx 模块
var Module = fx.Module("resourcemgr",
	fx.Provide(ProvideMemoryQuota),
	fx.Invoke(registerLifecycle),
)

// ProvideMemoryQuota 提供根内存配额
func ProvideMemoryQuota(p Params) *MemoryQuota {
	cfg := ConfigFromUnified(p.UnifiedCfg)
	limit := cfg.MemoryLimit
	if limit == 0 {
		limit = AutoMemoryLimit()
	}
	logger.Debug("内存配额已创建", "limit", limit)
	return NewMemoryQuota(limit)
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(lc fx.Lifecycle, q *MemoryQuota) {
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			if n := q.OpenConnections(); n > 0 {
				logger.Warn("停止时仍有连接持有内存配额", "connections", n, "used", q.Used())
			}
			return nil
		},
	})
}
