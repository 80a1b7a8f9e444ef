package upgrader

import (
	"context"
	"net"
	"sync"

	"github.com/dep2p/go-cgconn/internal/core/activity"
	pkgif "github.com/dep2p/go-cgconn/pkg/interfaces"
	"github.com/dep2p/go-cgconn/pkg/lib/log"
	"github.com/dep2p/go-cgconn/pkg/types"
)

var logger = log.Logger("core/upgrader")

// HandshakeManager 按顺序执行握手器
type HandshakeManager struct {
	exec        pkgif.Executor
	handshakers []pkgif.Handshaker

	mu          sync.Mutex
	started     bool
	shutdownErr error
	current     pkgif.Handshaker
	currentConn net.Conn
}

// NewHandshakeManager 创建握手管理器
//
// exec 为 nil 时每次握手启动一个 goroutine。
func NewHandshakeManager(exec pkgif.Executor, handshakers ...pkgif.Handshaker) *HandshakeManager {
	if exec == nil {
		exec = activity.GoExecutor{}
	}
	return &HandshakeManager{exec: exec, handshakers: handshakers}
}

// Add 追加握手器，必须在 DoHandshake 之前调用
func (m *HandshakeManager) Add(h ...pkgif.Handshaker) {
	m.mu.Lock()
	m.handshakers = append(m.handshakers, h...)
	m.mu.Unlock()
}

// DoHandshake 在执行器上运行握手链
//
// onDone 恰好调用一次：成功时 err 为 nil 且 result.Endpoint 非 nil；
// 失败时 result 为 nil，连接已经关闭。
func (m *HandshakeManager) DoHandshake(
	ctx context.Context,
	args pkgif.HandshakerArgs,
	onDone func(result *pkgif.HandshakerArgs, err error),
) {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		onDone(nil, types.WrapError(types.ErrHandshake, "handshake", ErrAlreadyStarted))
		return
	}
	m.started = true
	m.mu.Unlock()

	m.exec.Run(func() {
		res, err := m.run(ctx, &args)
		onDone(res, err)
	})
}

func (m *HandshakeManager) run(ctx context.Context, args *pkgif.HandshakerArgs) (*pkgif.HandshakerArgs, error) {
	for _, h := range m.handshakers {
		m.mu.Lock()
		if err := m.shutdownErr; err != nil {
			m.mu.Unlock()
			return m.fail(args, err)
		}
		m.current, m.currentConn = h, args.Endpoint
		m.mu.Unlock()

		logger.Debug("执行握手器", "handshaker", h.Name())
		err := h.DoHandshake(ctx, args)

		m.mu.Lock()
		m.current, m.currentConn = nil, nil
		shutdownErr := m.shutdownErr
		m.mu.Unlock()

		switch {
		case shutdownErr != nil:
			return m.fail(args, shutdownErr)
		case err != nil:
			return m.fail(args, classify(ctx, h.Name(), err))
		}
		if args.ExitEarly {
			break
		}
	}

	if args.Endpoint == nil {
		return m.fail(args, types.NewError(types.ErrEmptyEndpoint, "handshake complete with empty endpoint"))
	}
	return args, nil
}

// fail 关闭持有的连接并返回错误
func (m *HandshakeManager) fail(args *pkgif.HandshakerArgs, err error) (*pkgif.HandshakerArgs, error) {
	if args.Endpoint != nil {
		_ = args.Endpoint.Close()
		args.Endpoint = nil
	}
	args.ReadBuffer = nil
	logger.Debug("握手失败", "err", err)
	return nil, err
}

// Shutdown 立即中止握手
//
// 幂等；err 为 nil 时使用取消错误。
func (m *HandshakeManager) Shutdown(err error) {
	if err == nil {
		err = types.NewError(types.ErrCancelled, "handshake shutdown")
	}

	m.mu.Lock()
	if m.shutdownErr != nil {
		m.mu.Unlock()
		return
	}
	m.shutdownErr = err
	h, conn := m.current, m.currentConn
	m.mu.Unlock()

	if h != nil {
		h.Shutdown(err)
	}
	if conn != nil {
		_ = conn.SetDeadline(aLongTimeAgo)
	}
}

// IsShutdown 是否已经 Shutdown
func (m *HandshakeManager) IsShutdown() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shutdownErr != nil
}

// classify 把握手器错误归类
//
// 已分类的错误保持原样，ctx 结束时报告取消或超时，其它归为 types.ErrHandshake。
func classify(ctx context.Context, name string, err error) error {
	if types.KindOf(err) != nil {
		return err
	}
	if ctxErr := context.Cause(ctx); ctxErr != nil {
		return types.FromContext(ctxErr)
	}
	return types.WrapError(types.ErrHandshake, "handshake "+name, err)
}
