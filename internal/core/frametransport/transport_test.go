package frametransport

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-cgconn/internal/core/endpoint"
	"github.com/dep2p/go-cgconn/internal/core/pending"
	"github.com/dep2p/go-cgconn/pkg/types"
)

func pipeEndpoint(t *testing.T) *endpoint.Endpoint {
	t.Helper()
	c1, c2 := net.Pipe()
	t.Cleanup(func() {
		c1.Close()
		c2.Close()
	})
	return endpoint.New(c1, nil)
}

// TestFrameTransport_PartialAvailability 测试部分数据连接失败
func TestFrameTransport_PartialAvailability(t *testing.T) {
	a := pending.Failed("a", 1, types.NewError(types.ErrIO, "refused"))
	b := pending.New("b", 2, nil)
	epB := pipeEndpoint(t)
	b.Resolve(epB, nil)

	control := pipeEndpoint(t)
	ft := NewFrameTransport(control, []*pending.PendingConnection{a, b}, nil, Options{EncodeAlignment: 64})
	assert.Same(t, control, ft.Control())
	assert.Equal(t, uint32(64), ft.Options().EncodeAlignment)
	assert.Len(t, ft.Pending(), 2)

	ready, errs := ft.DataConnections(context.Background())
	assert.Same(t, epB, ready["b"])
	assert.ErrorIs(t, errs["a"], types.ErrIO)
	assert.NotContains(t, ready, "a")

	// 控制连接仍然可用
	assert.NotNil(t, ft.Control().Conn())

	require.NoError(t, ft.Close())
	assert.Nil(t, control.Conn())
	assert.Nil(t, epB.Conn())
	assert.NoError(t, ft.Close())
}

// TestFrameTransport_DataConnectionsDeadline 测试等待截止
func TestFrameTransport_DataConnectionsDeadline(t *testing.T) {
	p := pending.New("slow", 1, nil)
	ft := NewFrameTransport(pipeEndpoint(t), []*pending.PendingConnection{p}, nil, Options{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	ready, errs := ft.DataConnections(ctx)
	assert.Empty(t, ready)
	assert.ErrorIs(t, errs["slow"], types.ErrConnectTimeout)

	// 关闭会取消尚未建立的连接
	require.NoError(t, ft.Close())
	_, err := p.Await(context.Background())
	assert.ErrorIs(t, err, types.ErrCancelled)
}

// fakeConnector 记录请求并返回未解析句柄的 DataConnector
type fakeConnector struct {
	ids    []string
	closed int
}

func (f *fakeConnector) Connect(id string) *pending.PendingConnection {
	f.ids = append(f.ids, id)
	return pending.New(id, uint64(len(f.ids)), nil)
}

func (f *fakeConnector) Close() {
	f.closed++
}

// TestFrameTransport_ConnectOnDemand 测试按需建立数据连接
func TestFrameTransport_ConnectOnDemand(t *testing.T) {
	dc := &fakeConnector{}
	ft := NewFrameTransport(pipeEndpoint(t), nil, dc, Options{})

	p, err := ft.Connect("late")
	require.NoError(t, err)
	assert.Equal(t, "late", p.ID())
	assert.Equal(t, []string{"late"}, dc.ids)
	require.Len(t, ft.Pending(), 1)
	assert.Same(t, p, ft.Pending()[0])

	require.NoError(t, ft.Close())
	assert.Equal(t, 1, dc.closed)
	_, err = p.Await(context.Background())
	assert.ErrorIs(t, err, types.ErrCancelled)

	_, err = ft.Connect("after-close")
	assert.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, []string{"late"}, dc.ids)

	require.NoError(t, ft.Close())
	assert.Equal(t, 1, dc.closed)
}

// TestFrameTransport_NoConnector 测试没有数据连接建立者
func TestFrameTransport_NoConnector(t *testing.T) {
	ft := NewFrameTransport(pipeEndpoint(t), nil, nil, Options{})
	_, err := ft.Connect("x")
	assert.ErrorIs(t, err, ErrNoDataConnector)
	require.NoError(t, ft.Close())
}

// TestClientTransport 测试客户端传输
func TestClientTransport(t *testing.T) {
	args := types.NewArgs().Set(types.ArgProtocol, "/cgconn/1.0.0")
	control := pipeEndpoint(t)
	ct := NewClientTransport(args, NewFrameTransport(control, nil, nil, Options{}), MessageChunker{MaxChunkSize: 100, Alignment: 8})

	assert.Equal(t, "/cgconn/1.0.0", ct.Args().StringOf(types.ArgProtocol))
	assert.True(t, ct.Chunker().Enabled())
	assert.NotNil(t, ct.FrameTransport())
	require.NoError(t, ct.Close())
	assert.Nil(t, control.Conn())
}

// TestMessageChunker_Split 测试分块
func TestMessageChunker_Split(t *testing.T) {
	assert.Nil(t, MessageChunker{}.Split(0))
	assert.Equal(t, []int{500}, MessageChunker{}.Split(500))
	assert.Equal(t, []int{50}, MessageChunker{MaxChunkSize: 100}.Split(50))
	assert.Equal(t, []int{100, 100, 50}, MessageChunker{MaxChunkSize: 100}.Split(250))

	// 100 向下对齐到 96
	assert.Equal(t, []int{96, 96, 58}, MessageChunker{MaxChunkSize: 100, Alignment: 32}.Split(250))

	// 对齐大于块上限时不调整
	assert.Equal(t, []int{10, 5}, MessageChunker{MaxChunkSize: 10, Alignment: 64}.Split(15))
}
