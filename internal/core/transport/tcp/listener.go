package tcp

import (
	"context"
	"fmt"
	"net"
	"sync/atomic"
)

// ============================================================================
//                              Listener 实现
// ============================================================================

// Listener TCP 监听器
type Listener struct {
	listener *net.TCPListener
	addr     *Address
	cfg      Config
	closed   atomic.Bool
	onClose  func(*Listener)
}

func newListener(addr *Address, cfg Config) (*Listener, error) {
	lc := net.ListenConfig{KeepAlive: cfg.KeepAlive}
	l, err := lc.Listen(context.Background(), addr.network, addr.NetDialString())
	if err != nil {
		return nil, fmt.Errorf("tcp listen: %w", err)
	}

	tcpListener, ok := l.(*net.TCPListener)
	if !ok {
		_ = l.Close()
		return nil, fmt.Errorf("tcp listen: not a TCP listener")
	}

	// 端口可能是 0，取实际监听地址
	actual, err := NewAddressFromNetAddr(tcpListener.Addr())
	if err != nil {
		_ = tcpListener.Close()
		return nil, err
	}

	return &Listener{listener: tcpListener, addr: actual, cfg: cfg}, nil
}

// Accept 接受连接
func (l *Listener) Accept() (net.Conn, error) {
	conn, err := l.listener.AcceptTCP()
	if err != nil {
		return nil, err
	}
	_ = conn.SetNoDelay(l.cfg.NoDelay)
	return conn, nil
}

// Addr 返回监听地址
func (l *Listener) Addr() *Address {
	return l.addr
}

// Close 关闭监听器
func (l *Listener) Close() error {
	if !l.closed.CompareAndSwap(false, true) {
		return nil
	}
	if l.onClose != nil {
		l.onClose(l)
	}
	return l.listener.Close()
}

// IsClosed 检查监听器是否已关闭
func (l *Listener) IsClosed() bool {
	return l.closed.Load()
}
