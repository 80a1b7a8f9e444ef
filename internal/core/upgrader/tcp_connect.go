package upgrader

import (
	"context"
	"sync"

	pkgif "github.com/dep2p/go-cgconn/pkg/interfaces"
	"github.com/dep2p/go-cgconn/pkg/types"
)

// NameTCPConnect tcp-connect 握手器名称
const NameTCPConnect = "tcp-connect"

// TCPConnectHandshaker 建立原始连接的握手器
//
// 连接 Args 中的 cgconn.resolved_address，成功后写入 cgconn.peer_address。
// 已经有连接时跳过。
type TCPConnectHandshaker struct {
	connector pkgif.RawConnector

	mu          sync.Mutex
	cancel      context.CancelCauseFunc
	shutdownErr error
}

// 确保实现了接口
var _ pkgif.Handshaker = (*TCPConnectHandshaker)(nil)

// NewTCPConnectHandshaker 创建 tcp-connect 握手器
func NewTCPConnectHandshaker(connector pkgif.RawConnector) *TCPConnectHandshaker {
	return &TCPConnectHandshaker{connector: connector}
}

// Name 返回握手器名称
func (h *TCPConnectHandshaker) Name() string {
	return NameTCPConnect
}

// DoHandshake 建立原始连接
func (h *TCPConnectHandshaker) DoHandshake(ctx context.Context, args *pkgif.HandshakerArgs) error {
	if args.Endpoint != nil {
		return nil
	}
	addr := args.Args.StringOf(types.ArgResolvedAddress)
	if addr == "" {
		return types.WrapError(types.ErrAddress, "tcp connect", ErrNoResolvedAddress)
	}

	dialCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	h.mu.Lock()
	if err := h.shutdownErr; err != nil {
		h.mu.Unlock()
		return err
	}
	h.cancel = cancel
	h.mu.Unlock()

	conn, err := h.connector.Connect(dialCtx, addr)
	if err != nil {
		return err
	}

	args.Endpoint = conn
	args.Args = args.Args.Set(types.ArgPeerAddress, conn.RemoteAddr().String())
	return nil
}

// Shutdown 中止进行中的连接
func (h *TCPConnectHandshaker) Shutdown(err error) {
	h.mu.Lock()
	if h.shutdownErr == nil {
		h.shutdownErr = err
	}
	cancel := h.cancel
	h.mu.Unlock()
	if cancel != nil {
		cancel(err)
	}
}
