package upgrader

import (
	"context"
	"fmt"
	"io"
	"slices"

	mss "github.com/multiformats/go-multistream"

	pkgif "github.com/dep2p/go-cgconn/pkg/interfaces"
	"github.com/dep2p/go-cgconn/pkg/types"
)

// NameMultistream multistream 握手器名称
const NameMultistream = "multistream"

// MultistreamHandshaker 通过 multistream-select 协商协议
//
// 客户端使用 SelectOneOf 按优先级提议协议，成功后写入 cgconn.protocol。
type MultistreamHandshaker struct {
	protocols []string
}

// 确保实现了接口
var _ pkgif.Handshaker = (*MultistreamHandshaker)(nil)

// NewMultistreamHandshaker 创建 multistream 握手器
func NewMultistreamHandshaker(protocols []string) *MultistreamHandshaker {
	return &MultistreamHandshaker{protocols: slices.Clone(protocols)}
}

// Name 返回握手器名称
func (h *MultistreamHandshaker) Name() string {
	return NameMultistream
}

// DoHandshake 协商协议
func (h *MultistreamHandshaker) DoHandshake(ctx context.Context, args *pkgif.HandshakerArgs) error {
	if len(h.protocols) == 0 {
		return types.WrapError(types.ErrHandshake, "multistream", ErrNoProtocols)
	}
	if args.Endpoint == nil {
		return types.NewError(types.ErrEmptyEndpoint, "multistream without endpoint")
	}

	conn := withPrefix(args.Endpoint, args.ReadBuffer)
	stop := context.AfterFunc(ctx, func() {
		_ = args.Endpoint.SetDeadline(aLongTimeAgo)
	})
	defer stop()

	proto, err := mss.SelectOneOf(h.protocols, conn)
	if err != nil {
		if ctxErr := context.Cause(ctx); ctxErr != nil {
			return types.FromContext(ctxErr)
		}
		return types.WrapError(types.ErrHandshake, "multistream select",
			fmt.Errorf("%w: %v", ErrNegotiationFailed, err))
	}

	args.ReadBuffer = remaining(conn)
	args.Args = args.Args.Set(types.ArgProtocol, proto)
	return nil
}

// Shutdown 由 HandshakeManager 中断连接上的 I/O，这里无需额外处理
func (h *MultistreamHandshaker) Shutdown(error) {}

// NegotiateServer 服务端 multistream 协商
//
// 返回客户端选中的协议。
func NegotiateServer(conn io.ReadWriteCloser, protocols []string) (string, error) {
	muxer := mss.NewMultistreamMuxer[string]()
	for _, p := range protocols {
		muxer.AddHandler(p, nil)
	}
	proto, _, err := muxer.Negotiate(conn)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNegotiationFailed, err)
	}
	return proto, nil
}
