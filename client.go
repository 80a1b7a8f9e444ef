package cgconn

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/fx"

	"github.com/dep2p/go-cgconn/config"
	"github.com/dep2p/go-cgconn/internal/core/connector"
	"github.com/dep2p/go-cgconn/internal/core/metrics"
	"github.com/dep2p/go-cgconn/internal/core/resourcemgr"
	"github.com/dep2p/go-cgconn/pkg/lib/log"
	"github.com/dep2p/go-cgconn/pkg/types"
)

var logger = log.Logger("cgconn")

const (
	// startTimeout Fx App 启动超时
	startTimeout = 30 * time.Second

	// stopTimeout Fx App 停止超时
	stopTimeout = 10 * time.Second
)

// Client 连接建立客户端
//
// 持有共享的 TCP 传输、握手链、内存配额和指标。
// 每次 Dial 创建独立的 Connector。
type Client struct {
	cfg *config.Config
	app *fx.App

	factory  *connector.Factory
	reporter metrics.Reporter
	quota    *resourcemgr.MemoryQuota

	mu      sync.Mutex
	started bool
	closed  bool
}

// New 创建客户端（未启动）
func New(opts ...Option) (*Client, error) {
	o := newOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	c := &Client{cfg: o.cfg}
	app, err := buildFxApp(o, c)
	if err != nil {
		return nil, err
	}
	c.app = app
	return c, nil
}

// Start 创建并启动客户端
func Start(ctx context.Context, opts ...Option) (*Client, error) {
	c, err := New(opts...)
	if err != nil {
		return nil, err
	}
	if err := c.Start(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Start 启动客户端
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClientClosed
	}
	if c.started {
		return ErrAlreadyStarted
	}

	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()
	if err := c.app.Start(startCtx); err != nil {
		logger.Error("客户端启动失败", "error", err)
		return fmt.Errorf("start failed: %w", err)
	}
	c.started = true
	logger.Debug("客户端已启动", "timeout", c.cfg.Connect.Timeout.Duration())
	return nil
}

func (c *Client) ready() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.closed:
		return ErrClientClosed
	case !c.started:
		return ErrNotStarted
	}
	return nil
}

// Config 返回客户端配置
func (c *Client) Config() *config.Config {
	return c.cfg
}

// NewConnector 创建新的连接器
func (c *Client) NewConnector() (*Connector, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	return c.factory.NewConnector(), nil
}

// Dial 建立到 addr 的控制连接
//
// ctx 结束时取消连接建立。成功时调用方负责关闭结果。
func (c *Client) Dial(ctx context.Context, addr string, args types.Args) (*Result, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	return c.factory.Dial(ctx, ConnectArgs{Address: addr, Args: args})
}

// Metrics 返回指标快照
func (c *Client) Metrics() MetricsSnapshot {
	return c.reporter.Snapshot()
}

// MemoryUsed 返回当前内存配额使用量
func (c *Client) MemoryUsed() int64 {
	return c.quota.Used()
}

// Close 关闭客户端
//
// 已交付的 Result 归调用方所有，不会被关闭。
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	if !c.started {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if err := c.app.Stop(ctx); err != nil {
		return fmt.Errorf("stop failed: %w", err)
	}
	logger.Debug("客户端已关闭")
	return nil
}
