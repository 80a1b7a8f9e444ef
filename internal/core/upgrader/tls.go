package upgrader

import (
	"context"
	"crypto/tls"
	"net"

	pkgif "github.com/dep2p/go-cgconn/pkg/interfaces"
	"github.com/dep2p/go-cgconn/pkg/types"
)

// NameTLS tls 握手器名称
const NameTLS = "tls"

// SecurityTLS cgconn.security 的 TLS 取值
const SecurityTLS = "tls"

// TLSHandshaker TLS 客户端握手器
//
// ServerName 优先取 Args 中的 cgconn.tls_server_name，其次取配置，
// 最后取已解析地址的主机部分。
type TLSHandshaker struct {
	cfg *tls.Config
}

// 确保实现了接口
var _ pkgif.Handshaker = (*TLSHandshaker)(nil)

// NewTLSHandshaker 创建 TLS 握手器
func NewTLSHandshaker(cfg *tls.Config) *TLSHandshaker {
	if cfg == nil {
		cfg = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return &TLSHandshaker{cfg: cfg}
}

// Name 返回握手器名称
func (h *TLSHandshaker) Name() string {
	return NameTLS
}

// DoHandshake 执行 TLS 握手
//
// 预读字节交给 TLS 层消费，成功后 ReadBuffer 为空。
func (h *TLSHandshaker) DoHandshake(ctx context.Context, args *pkgif.HandshakerArgs) error {
	if args.Endpoint == nil {
		return types.NewError(types.ErrEmptyEndpoint, "tls without endpoint")
	}

	cfg := h.cfg.Clone()
	if name := args.Args.StringOf(types.ArgTLSServerName); name != "" {
		cfg.ServerName = name
	}
	if cfg.ServerName == "" {
		if host, _, err := net.SplitHostPort(args.Args.StringOf(types.ArgResolvedAddress)); err == nil {
			cfg.ServerName = host
		}
	}

	tc := tls.Client(withPrefix(args.Endpoint, args.ReadBuffer), cfg)
	if err := tc.HandshakeContext(ctx); err != nil {
		if ctxErr := context.Cause(ctx); ctxErr != nil {
			return types.FromContext(ctxErr)
		}
		return types.WrapError(types.ErrHandshake, "tls handshake", err)
	}

	state := tc.ConnectionState()
	args.Endpoint = tc
	args.ReadBuffer = nil
	args.Args = args.Args.
		Set(types.ArgSecurity, SecurityTLS).
		Set(types.ArgTLSVersion, tls.VersionName(state.Version))
	return nil
}

// Shutdown 由 HandshakeManager 中断连接上的 I/O，这里无需额外处理
func (h *TLSHandshaker) Shutdown(error) {}
