package upgrader

import (
	"sync"

	pkgif "github.com/dep2p/go-cgconn/pkg/interfaces"
)

// Factory 创建握手器实例
//
// 握手器带有单次连接的状态，每次建立连接都需要新的实例。
type Factory func() pkgif.Handshaker

type entry struct {
	name    string
	factory Factory
}

// Registry 握手链注册表
type Registry struct {
	mu      sync.RWMutex
	entries []entry
}

// NewRegistry 创建空注册表
func NewRegistry() *Registry {
	return &Registry{}
}

// NewDefaultRegistry 按配置创建默认握手链
//
//	tcp-connect → multistream（可选）→ tls（可选）
func NewDefaultRegistry(cfg Config, connector pkgif.RawConnector) *Registry {
	r := NewRegistry()
	r.Add(NameTCPConnect, func() pkgif.Handshaker {
		return NewTCPConnectHandshaker(connector)
	})
	if cfg.EnableMultistream {
		protocols := cfg.Protocols
		r.Add(NameMultistream, func() pkgif.Handshaker {
			return NewMultistreamHandshaker(protocols)
		})
	}
	if cfg.TLS != nil {
		tlsCfg := cfg.TLS
		r.Add(NameTLS, func() pkgif.Handshaker {
			return NewTLSHandshaker(tlsCfg)
		})
	}
	return r
}

// Add 在链尾追加握手器
func (r *Registry) Add(name string, f Factory) {
	r.mu.Lock()
	r.entries = append(r.entries, entry{name: name, factory: f})
	r.mu.Unlock()
}

// Names 返回握手器名称（按执行顺序）
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.name
	}
	return names
}

// Build 创建一条新的握手链
func (r *Registry) Build() []pkgif.Handshaker {
	r.mu.RLock()
	defer r.mu.RUnlock()
	hs := make([]pkgif.Handshaker, len(r.entries))
	for i, e := range r.entries {
		hs[i] = e.factory()
	}
	return hs
}

// NewManager 用新的握手链创建握手管理器
func (r *Registry) NewManager(exec pkgif.Executor) *HandshakeManager {
	return NewHandshakeManager(exec, r.Build()...)
}
