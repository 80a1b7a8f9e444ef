package upgrader

import (
	"context"
	"sync/atomic"

	pkgif "github.com/dep2p/go-cgconn/pkg/interfaces"
)

// stubHandshaker 测试用握手器
type stubHandshaker struct {
	name      string
	fn        func(ctx context.Context, args *pkgif.HandshakerArgs) error
	calls     atomic.Int32
	shutdowns atomic.Int32
}

var _ pkgif.Handshaker = (*stubHandshaker)(nil)

func newStub(name string, fn func(ctx context.Context, args *pkgif.HandshakerArgs) error) *stubHandshaker {
	return &stubHandshaker{name: name, fn: fn}
}

func (s *stubHandshaker) Name() string { return s.name }

func (s *stubHandshaker) DoHandshake(ctx context.Context, args *pkgif.HandshakerArgs) error {
	s.calls.Add(1)
	if s.fn == nil {
		return nil
	}
	return s.fn(ctx, args)
}

func (s *stubHandshaker) Shutdown(error) { s.shutdowns.Add(1) }

// handshakeResult 握手完成回调的结果
type handshakeResult struct {
	args *pkgif.HandshakerArgs
	err  error
}

// runHandshake 执行握手并收集回调
func runHandshake(ctx context.Context, m *HandshakeManager, args pkgif.HandshakerArgs) <-chan handshakeResult {
	ch := make(chan handshakeResult, 2)
	m.DoHandshake(ctx, args, func(res *pkgif.HandshakerArgs, err error) {
		ch <- handshakeResult{args: res, err: err}
	})
	return ch
}
