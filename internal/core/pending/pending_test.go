package pending

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-cgconn/internal/core/endpoint"
	"github.com/dep2p/go-cgconn/pkg/types"
)

func pipeEndpoint(t *testing.T) (*endpoint.Endpoint, net.Conn) {
	t.Helper()
	c1, c2 := net.Pipe()
	t.Cleanup(func() {
		c1.Close()
		c2.Close()
	})
	return endpoint.New(c1, nil), c2
}

// TestPendingConnection_Resolve 测试解析
func TestPendingConnection_Resolve(t *testing.T) {
	p := New("a", 1, nil)
	assert.Equal(t, "a", p.ID())
	assert.Equal(t, uint64(1), p.Tag())

	ep, _ := pipeEndpoint(t)
	go p.Resolve(ep, nil)

	got, err := p.Await(context.Background())
	require.NoError(t, err)
	assert.Same(t, ep, got)

	select {
	case <-p.Done():
	default:
		t.Fatal("Done 未关闭")
	}
}

// TestPendingConnection_LateEndpointClosed 测试迟到的端点被关闭
func TestPendingConnection_LateEndpointClosed(t *testing.T) {
	p := New("a", 1, nil)
	p.Cancel()

	ep, _ := pipeEndpoint(t)
	assert.False(t, p.Resolve(ep, nil))
	assert.Nil(t, ep.Conn())

	_, err := p.Await(context.Background())
	assert.ErrorIs(t, err, types.ErrCancelled)
}

// TestPendingConnection_Cancel 测试取消调用建立过程的取消函数
func TestPendingConnection_Cancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := New("b", 2, nil)
	p.SetCancel(cancel)

	p.Cancel()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	_, err := p.Await(context.Background())
	assert.ErrorIs(t, err, types.ErrCancelled)
}

// TestPendingConnection_AwaitTimeout 测试等待超时不影响解析
func TestPendingConnection_AwaitTimeout(t *testing.T) {
	p := New("c", 3, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := p.Await(ctx)
	assert.ErrorIs(t, err, types.ErrConnectTimeout)

	boom := errors.New("boom")
	require.True(t, p.Resolve(nil, boom))
	_, err = p.Await(context.Background())
	assert.ErrorIs(t, err, boom)
}

// TestPendingConnection_Failed 测试已失败的句柄和空端点
func TestPendingConnection_Failed(t *testing.T) {
	p := Failed("d", 4, types.NewError(types.ErrAddress, "bad"))
	_, err := p.Await(context.Background())
	assert.ErrorIs(t, err, types.ErrAddress)

	q := New("e", 5, nil)
	q.Resolve(nil, nil)
	_, err = q.Await(context.Background())
	assert.ErrorIs(t, err, types.ErrEmptyEndpoint)
}

// TestPendingConnection_Close 测试关闭已建立的端点
func TestPendingConnection_Close(t *testing.T) {
	p := New("f", 6, nil)
	ep, _ := pipeEndpoint(t)
	p.Resolve(ep, nil)

	require.NoError(t, p.Close())
	assert.Nil(t, ep.Conn())
}
