package tcp

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dep2p/go-cgconn/config"
	pkgif "github.com/dep2p/go-cgconn/pkg/interfaces"
	"github.com/dep2p/go-cgconn/pkg/lib/log"
	"github.com/dep2p/go-cgconn/pkg/types"
)

var logger = log.Logger("core/transport/tcp")

// Config TCP 配置
type Config struct {
	// KeepAlive keepalive 周期，0 表示系统默认
	KeepAlive time.Duration

	// NoDelay 是否关闭 Nagle 算法
	NoDelay bool
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return ConfigFromUnified(config.NewConfig())
}

// ConfigFromUnified 从统一配置创建 TCP 配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return Config{
		KeepAlive: cfg.Connect.KeepAlive.Duration(),
		NoDelay:   cfg.Connect.NoDelay,
	}
}

// ============================================================================
//                              Transport 实现
// ============================================================================

// Transport TCP 传输
type Transport struct {
	cfg Config

	listenersMu sync.Mutex
	listeners   map[*Listener]struct{}

	closed atomic.Bool
}

// 确保实现了接口
var _ pkgif.RawConnector = (*Transport)(nil)

// NewTransport 创建 TCP 传输
func NewTransport(cfg Config) *Transport {
	return &Transport{
		cfg:       cfg,
		listeners: make(map[*Listener]struct{}),
	}
}

// Connect 建立到 addr 的 TCP 连接
//
// 截止时间和取消都通过 ctx 表达。
func (t *Transport) Connect(ctx context.Context, addr string) (net.Conn, error) {
	if t.closed.Load() {
		return nil, types.WrapError(types.ErrIO, "tcp connect", ErrTransportClosed)
	}

	a, err := ParseAddress(addr)
	if err != nil {
		return nil, types.WrapError(types.ErrAddress, "invalid address", err)
	}

	dialer := &net.Dialer{KeepAlive: t.cfg.KeepAlive}
	conn, err := dialer.DialContext(ctx, a.network, a.NetDialString())
	if err != nil {
		return nil, classifyDialError(ctx, err)
	}

	if tcpConn, ok := conn.(*net.TCPConn); ok {
		_ = tcpConn.SetNoDelay(t.cfg.NoDelay)
		if t.cfg.KeepAlive > 0 {
			_ = tcpConn.SetKeepAlive(true)
			_ = tcpConn.SetKeepAlivePeriod(t.cfg.KeepAlive)
		}
	}

	logger.Debug("TCP 连接已建立", "addr", a.String(), "local", conn.LocalAddr().String())
	return conn, nil
}

// Listen 在 addr 上监听
func (t *Transport) Listen(addr string) (*Listener, error) {
	if t.closed.Load() {
		return nil, ErrTransportClosed
	}
	a, err := ParseAddress(addr)
	if err != nil {
		return nil, err
	}
	l, err := newListener(a, t.cfg)
	if err != nil {
		return nil, err
	}
	l.onClose = t.removeListener

	t.listenersMu.Lock()
	t.listeners[l] = struct{}{}
	t.listenersMu.Unlock()
	return l, nil
}

func (t *Transport) removeListener(l *Listener) {
	t.listenersMu.Lock()
	delete(t.listeners, l)
	t.listenersMu.Unlock()
}

// ListenerCount 返回监听器数量
func (t *Transport) ListenerCount() int {
	t.listenersMu.Lock()
	defer t.listenersMu.Unlock()
	return len(t.listeners)
}

// Close 关闭传输和所有监听器
//
// 已拨出的连接归调用方所有，不在此关闭。
func (t *Transport) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}

	t.listenersMu.Lock()
	ls := make([]*Listener, 0, len(t.listeners))
	for l := range t.listeners {
		ls = append(ls, l)
	}
	t.listenersMu.Unlock()

	var lastErr error
	for _, l := range ls {
		if err := l.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// IsClosed 检查是否已关闭
func (t *Transport) IsClosed() bool {
	return t.closed.Load()
}

// classifyDialError 把拨号错误映射为分类错误
func classifyDialError(ctx context.Context, err error) error {
	if ctxErr := context.Cause(ctx); ctxErr != nil {
		return types.FromContext(ctxErr)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return types.WrapError(types.ErrConnectTimeout, "tcp connect", err)
	}
	var addrErr *net.AddrError
	if errors.As(err, &addrErr) {
		return types.WrapError(types.ErrAddress, "tcp connect", err)
	}
	return types.WrapError(types.ErrIO, "tcp connect", err)
}
