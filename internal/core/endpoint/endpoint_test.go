package endpoint

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-cgconn/pkg/types"
)

// fakeQuota 记录预留情况的内存配额
type fakeQuota struct {
	limit    int64
	used     int64
	peak     int64
	reserves int
}

func (q *fakeQuota) Reserve(n int) error {
	if q.used+int64(n) > q.limit {
		return errors.New("quota exceeded")
	}
	q.used += int64(n)
	q.reserves++
	if q.used > q.peak {
		q.peak = q.used
	}
	return nil
}

func (q *fakeQuota) Release(n int) { q.used -= int64(n) }
func (q *fakeQuota) Used() int64   { return q.used }

// TestEndpoint_ReadBufferFirst 测试先消费预读字节
func TestEndpoint_ReadBufferFirst(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	ep := New(client, []byte("hel"))
	defer ep.Close()
	assert.Equal(t, 3, ep.Buffered())

	go func() {
		_, _ = server.Write([]byte("lo world"))
	}()

	ctx := context.Background()
	got, err := ep.ReadExact(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))
	assert.Equal(t, 0, ep.Buffered())

	got, err = ep.ReadExact(ctx, 6)
	require.NoError(t, err)
	assert.Equal(t, " world", string(got))
}

// TestEndpoint_ReadBufferOnly 测试预读字节足够时不访问连接
func TestEndpoint_ReadBufferOnly(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	ep := New(client, []byte("abcdef"))
	defer ep.Close()

	got, err := ep.ReadExact(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, "abcd", string(got))
	assert.Equal(t, 2, ep.Buffered())
}

// TestEndpoint_WriteFull 测试完整写入
func TestEndpoint_WriteFull(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	ep := New(client, nil)
	defer ep.Close()

	received := make(chan []byte, 1)
	go func() {
		buf := make([]byte, 4)
		_, _ = server.Read(buf)
		received <- buf
	}()

	require.NoError(t, ep.Write(context.Background(), []byte("ping")))
	assert.Equal(t, "ping", string(<-received))
}

// TestEndpoint_CancelInterruptsRead 测试取消中止阻塞读取
func TestEndpoint_CancelInterruptsRead(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	ep := New(client, nil)
	defer ep.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := ep.ReadExact(ctx, 16)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrCancelled), "err = %v", err)
}

// TestEndpoint_DeadlineInterruptsWrite 测试截止时间中止阻塞写入
func TestEndpoint_DeadlineInterruptsWrite(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	ep := New(client, nil)
	defer ep.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// net.Pipe 无缓冲，没有读者时写入会阻塞
	err := ep.Write(ctx, []byte("blocked"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrConnectTimeout), "err = %v", err)
}

// TestEndpoint_PeerClosed 测试对端关闭
func TestEndpoint_PeerClosed(t *testing.T) {
	client, server := net.Pipe()
	ep := New(client, nil)
	defer ep.Close()

	go func() {
		_, _ = server.Write([]byte("ab"))
		server.Close()
	}()

	_, err := ep.ReadExact(context.Background(), 4)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrRead))
}

// TestEndpoint_MemoryQuota 测试内存配额
func TestEndpoint_MemoryQuota(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	ep := New(client, []byte("0123456789"))
	defer ep.Close()

	q := &fakeQuota{limit: 8}
	ep.UseMemoryQuota(q)

	got, err := ep.ReadExact(context.Background(), 8)
	require.NoError(t, err)
	assert.Equal(t, "01234567", string(got))
	assert.Equal(t, int64(8), q.peak)
	assert.Equal(t, int64(0), q.Used(), "读取完成后释放")

	_, err = ep.ReadExact(context.Background(), 9)
	assert.True(t, errors.Is(err, types.ErrRead))
}

// TestEndpoint_Release 测试所有权转移
func TestEndpoint_Release(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	ep := New(client, []byte("xy"))
	conn, pending := ep.Release()
	assert.Equal(t, client, conn)
	assert.Equal(t, []byte("xy"), pending)

	// 释放后不可再用
	assert.Nil(t, ep.Conn())
	_, err := ep.ReadExact(context.Background(), 1)
	assert.ErrorIs(t, err, ErrReleased)
	assert.ErrorIs(t, ep.Write(context.Background(), []byte("z")), ErrReleased)
	assert.NoError(t, ep.Close())

	next := New(conn, pending)
	got, err := next.ReadExact(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "xy", string(got))
	require.NoError(t, next.Close())
}

// TestEndpoint_OnClose 测试关闭回调只执行一次
func TestEndpoint_OnClose(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	ep := New(client, nil)
	var order []int
	ep.OnClose(func() { order = append(order, 1) })
	ep.OnClose(func() { order = append(order, 2) })

	require.NoError(t, ep.Close())
	require.NoError(t, ep.Close())
	assert.Equal(t, []int{1, 2}, order)
}
