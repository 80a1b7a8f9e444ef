package resourcemgr

import (
	"sync"
	"sync/atomic"

	pkgif "github.com/dep2p/go-cgconn/pkg/interfaces"
	"github.com/dep2p/go-cgconn/pkg/lib/log"
)

var logger = log.Logger("core/resourcemgr")

// MemoryQuota 根内存配额
type MemoryQuota struct {
	limit int64

	mu   sync.Mutex
	used int64

	open atomic.Int32
}

// 确保实现了接口
var _ pkgif.MemoryQuota = (*MemoryQuota)(nil)

// NewMemoryQuota 创建内存配额
//
// limit <= 0 表示不限制。
func NewMemoryQuota(limit int64) *MemoryQuota {
	return &MemoryQuota{limit: limit}
}

// Limit 返回限额
func (q *MemoryQuota) Limit() int64 {
	return q.limit
}

// Reserve 以最高优先级预留
func (q *MemoryQuota) Reserve(n int) error {
	return q.ReserveWithPriority(n, PriorityAlways)
}

// ReserveWithPriority 按优先级预留
func (q *MemoryQuota) ReserveWithPriority(n int, prio uint8) error {
	if n <= 0 {
		return nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if err := checkMemoryLimit(q.used, int64(n), q.limit, prio); err != nil {
		return err
	}
	q.used += int64(n)
	return nil
}

// Release 释放
func (q *MemoryQuota) Release(n int) {
	if n <= 0 {
		return
	}
	q.mu.Lock()
	q.used -= int64(n)
	if q.used < 0 {
		logger.Warn("内存配额释放超过预留", "used", q.used)
		q.used = 0
	}
	q.mu.Unlock()
}

// Used 返回当前使用量
func (q *MemoryQuota) Used() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.used
}

// OpenConnections 返回尚未 Done 的连接配额数
func (q *MemoryQuota) OpenConnections() int {
	return int(q.open.Load())
}

// OpenConnection 为一条连接创建子配额
func (q *MemoryQuota) OpenConnection(name string) *ConnectionQuota {
	q.open.Add(1)
	return &ConnectionQuota{parent: q, name: name}
}

// ConnectionQuota 单条连接的配额
//
// 预留同时计入根配额，Done 时归还尚未释放的部分。
type ConnectionQuota struct {
	parent *MemoryQuota
	name   string

	mu     sync.Mutex
	used   int64
	closed bool
}

// 确保实现了接口
var _ pkgif.MemoryQuota = (*ConnectionQuota)(nil)

// Name 返回连接名
func (c *ConnectionQuota) Name() string {
	return c.name
}

// Reserve 预留
func (c *ConnectionQuota) Reserve(n int) error {
	if n <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrResourceScopeClosed
	}
	if err := c.parent.Reserve(n); err != nil {
		return err
	}
	c.used += int64(n)
	return nil
}

// Release 释放
func (c *ConnectionQuota) Release(n int) {
	if n <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if int64(n) > c.used {
		n = int(c.used)
	}
	c.used -= int64(n)
	c.parent.Release(n)
}

// Used 返回当前使用量
func (c *ConnectionQuota) Used() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.used
}

// Done 关闭子配额并归还未释放的内存
func (c *ConnectionQuota) Done() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.used > 0 {
		c.parent.Release(int(c.used))
		c.used = 0
	}
	c.parent.open.Add(-1)
}
