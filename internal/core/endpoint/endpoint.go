// Package endpoint 实现连接端点
//
// Endpoint 独占一条字节流连接以及握手阶段已经读入的字节。
// 所有权沿流水线线性转移（原始连接 → 握手升级 → Settings 校验），
// Release 把连接交给下一个所有者后，旧的 Endpoint 不再持有任何资源。
package endpoint

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"sync"
	"time"

	pkgif "github.com/dep2p/go-cgconn/pkg/interfaces"
	"github.com/dep2p/go-cgconn/pkg/types"
)

// ErrReleased 端点已释放或关闭
var ErrReleased = errors.New("endpoint: released")

// aLongTimeAgo 用于让阻塞的 I/O 立即返回
var aLongTimeAgo = time.Unix(1, 0)

// Endpoint 连接端点
type Endpoint struct {
	mu      sync.Mutex
	conn    net.Conn
	pending []byte
	quota   pkgif.MemoryQuota
	onClose []func()
}

// New 创建端点
//
// readBuffer 是握手阶段多读的字节，后续读取会先消费这些字节。
func New(conn net.Conn, readBuffer []byte) *Endpoint {
	var pending []byte
	if len(readBuffer) > 0 {
		pending = append([]byte(nil), readBuffer...)
	}
	return &Endpoint{conn: conn, pending: pending}
}

// UseMemoryQuota 挂接内存配额
func (e *Endpoint) UseMemoryQuota(q pkgif.MemoryQuota) {
	e.mu.Lock()
	e.quota = q
	e.mu.Unlock()
}

// OnClose 注册关闭回调，Close 时按注册顺序执行一次
//
// Release 转移所有权时不执行回调。
func (e *Endpoint) OnClose(fn func()) {
	e.mu.Lock()
	e.onClose = append(e.onClose, fn)
	e.mu.Unlock()
}

// Conn 返回底层连接（仅用于检查，不转移所有权）
func (e *Endpoint) Conn() net.Conn {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.conn
}

// Buffered 返回尚未消费的预读字节数
func (e *Endpoint) Buffered() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending)
}

// LocalAddr 返回本地地址
func (e *Endpoint) LocalAddr() net.Addr {
	if c := e.Conn(); c != nil {
		return c.LocalAddr()
	}
	return nil
}

// RemoteAddr 返回远端地址
func (e *Endpoint) RemoteAddr() net.Addr {
	if c := e.Conn(); c != nil {
		return c.RemoteAddr()
	}
	return nil
}

// Write 完整写入 data
//
// 未能写完视为失败（types.ErrWrite）。ctx 取消会中止阻塞的写入。
func (e *Endpoint) Write(ctx context.Context, data []byte) error {
	conn := e.Conn()
	if conn == nil {
		return types.WrapError(types.ErrWrite, "write to released endpoint", ErrReleased)
	}
	if err := context.Cause(ctx); err != nil {
		return types.FromContext(err)
	}
	_ = conn.SetWriteDeadline(time.Time{})
	stop := interruptOnDone(ctx, conn.SetWriteDeadline)
	defer stop()

	n, err := conn.Write(data)
	if err == nil && n < len(data) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return classify(ctx, types.ErrWrite, "write frame", err)
	}
	return nil
}

// ReadExact 精确读取 n 字节
//
// 先消费预读字节，再从连接读取。读取期间从内存配额预留 n 字节。
func (e *Endpoint) ReadExact(ctx context.Context, n int) ([]byte, error) {
	e.mu.Lock()
	conn, quota := e.conn, e.quota
	e.mu.Unlock()
	if conn == nil {
		return nil, types.WrapError(types.ErrRead, "read from released endpoint", ErrReleased)
	}

	if quota != nil {
		if err := quota.Reserve(n); err != nil {
			return nil, types.WrapError(types.ErrRead, "reserve read buffer", err)
		}
		defer quota.Release(n)
	}

	buf := make([]byte, n)

	e.mu.Lock()
	copied := copy(buf, e.pending)
	e.pending = e.pending[copied:]
	if len(e.pending) == 0 {
		e.pending = nil
	}
	e.mu.Unlock()

	if copied == n {
		return buf, nil
	}

	if err := context.Cause(ctx); err != nil {
		return nil, types.FromContext(err)
	}
	_ = conn.SetReadDeadline(time.Time{})
	stop := interruptOnDone(ctx, conn.SetReadDeadline)
	defer stop()

	if _, err := io.ReadFull(conn, buf[copied:]); err != nil {
		return nil, classify(ctx, types.ErrRead, "read frame", err)
	}
	return buf, nil
}

// Release 转移所有权
//
// 返回底层连接和未消费的预读字节，之后本端点不再可用。
func (e *Endpoint) Release() (net.Conn, []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	conn, pending := e.conn, e.pending
	e.conn, e.pending = nil, nil
	return conn, pending
}

// Close 关闭端点
func (e *Endpoint) Close() error {
	e.mu.Lock()
	hooks := e.onClose
	e.onClose = nil
	e.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}

	conn, _ := e.Release()
	if conn == nil {
		return nil
	}
	return conn.Close()
}

// interruptOnDone 在 ctx 结束时让阻塞的 I/O 立即返回
//
// 截止时间只通过 ctx 表达（可能来自模拟时钟），不直接写到连接上。
func interruptOnDone(ctx context.Context, setDeadline func(time.Time) error) func() bool {
	return context.AfterFunc(ctx, func() {
		_ = setDeadline(aLongTimeAgo)
	})
}

// classify 把 I/O 错误映射为分类错误
//
// ctx 已结束时优先报告取消或超时。
func classify(ctx context.Context, kind error, msg string, err error) error {
	if ctxErr := context.Cause(ctx); ctxErr != nil {
		return types.FromContext(ctxErr)
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return types.WrapError(types.ErrConnectTimeout, msg, err)
	}
	return types.WrapError(kind, msg, err)
}
