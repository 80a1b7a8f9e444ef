package cgconn

import (
	"crypto/tls"
	"errors"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-cgconn/config"
	pkgif "github.com/dep2p/go-cgconn/pkg/interfaces"
)

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	cfg        *config.Config
	tls        *tls.Config
	registerer prometheus.Registerer
	clock      clock.Clock
	executor   pkgif.Executor

	// 用户自定义 Fx 选项
	userFxOptions []fx.Option
}

// newOptions 创建默认选项
func newOptions() *options {
	return &options{cfg: config.NewConfig()}
}

// WithConfig 使用完整配置
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return errors.New("config is nil")
		}
		o.cfg = cfg
		return nil
	}
}

// WithConfigFile 从 JSON 文件加载配置
func WithConfigFile(path string) Option {
	return func(o *options) error {
		cfg, err := config.LoadFile(path)
		if err != nil {
			return err
		}
		o.cfg = cfg
		return nil
	}
}

// WithConnectTimeout 设置整体截止时间
func WithConnectTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return errors.New("connect timeout must be positive")
		}
		o.cfg.Connect.Timeout = config.Duration(d)
		return nil
	}
}

// WithProtocols 设置 multistream 协议列表
func WithProtocols(protocols ...string) Option {
	return func(o *options) error {
		o.cfg.Handshake.EnableMultistream = len(protocols) > 0
		o.cfg.Handshake.Protocols = protocols
		return nil
	}
}

// WithTLS 启用 TLS 握手并使用给定配置
func WithTLS(cfg *tls.Config) Option {
	return func(o *options) error {
		o.tls = cfg
		o.cfg.Handshake.TLS.Enable = cfg != nil
		return nil
	}
}

// WithMetricsRegisterer 把指标注册到 reg
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) error {
		o.registerer = reg
		return nil
	}
}

// WithClock 注入时钟
func WithClock(clk clock.Clock) Option {
	return func(o *options) error {
		o.clock = clk
		return nil
	}
}

// WithExecutor 注入执行器
func WithExecutor(exec pkgif.Executor) Option {
	return func(o *options) error {
		o.executor = exec
		return nil
	}
}

// WithFxOptions 追加自定义 Fx 选项
func WithFxOptions(opts ...fx.Option) Option {
	return func(o *options) error {
		o.userFxOptions = append(o.userFxOptions, opts...)
		return nil
	}
}
