package negotiation

import (
	"sync"

	"github.com/dep2p/go-cgconn/internal/core/pending"
)

// RecordingConnector 记录请求的 DataConnector，用于测试
//
// Resolve 为 nil 时返回的句柄保持未解析状态。
type RecordingConnector struct {
	Resolve func(p *pending.PendingConnection)

	mu  sync.Mutex
	ids []string
}

// Connect 实现 DataConnector
func (r *RecordingConnector) Connect(id string) *pending.PendingConnection {
	r.mu.Lock()
	r.ids = append(r.ids, id)
	tag := uint64(len(r.ids))
	r.mu.Unlock()

	p := pending.New(id, tag, nil)
	if r.Resolve != nil {
		r.Resolve(p)
	}
	return p
}

// IDs 返回请求过的连接 ID
func (r *RecordingConnector) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ids...)
}
