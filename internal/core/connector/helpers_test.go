package connector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-cgconn/config"
	"github.com/dep2p/go-cgconn/internal/core/negotiation"
	"github.com/dep2p/go-cgconn/internal/core/transport/tcp"
	"github.com/dep2p/go-cgconn/internal/core/upgrader"
	"github.com/dep2p/go-cgconn/internal/testutil/cgserver"
	"github.com/dep2p/go-cgconn/pkg/types"
)

// testEnv 连接器测试环境
type testEnv struct {
	cfg    *config.Config
	server *cgserver.Server
	opts   Options
}

// newTestEnv 启动服务端并准备连接器依赖
func newTestEnv(t *testing.T, scfg cgserver.Config) *testEnv {
	t.Helper()
	cfg := config.NewConfig()
	if scfg.Protocols == nil {
		scfg.Protocols = cfg.Handshake.Protocols
	}
	srv, err := cgserver.Start("127.0.0.1:0", scfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })

	tr := tcp.NewTransport(tcp.ConfigFromUnified(cfg))
	t.Cleanup(func() { _ = tr.Close() })

	return &testEnv{
		cfg:    cfg,
		server: srv,
		opts: Options{
			Registry: upgrader.NewDefaultRegistry(upgrader.ConfigFromUnified(cfg), tr),
		},
	}
}

func (e *testEnv) connector(t *testing.T) *Connector {
	t.Helper()
	c, err := NewConnector(ConfigFromUnified(e.cfg), negotiation.ConfigFromUnified(e.cfg), e.opts)
	require.NoError(t, err)
	return c
}

func (e *testEnv) args() ConnectArgs {
	return ConnectArgs{Address: e.server.Addr(), Args: types.NewArgs().Set("test.key", "v")}
}

// notification 一次结果通知
type notification struct {
	res *Result
	err error
}

// collect 返回记录所有通知的回调
func collect() (Notify, chan notification) {
	ch := make(chan notification, 4)
	return func(res *Result, err error) {
		ch <- notification{res: res, err: err}
	}, ch
}

// await 等待一次通知
func await(t *testing.T, ch <-chan notification) notification {
	t.Helper()
	select {
	case n := <-ch:
		return n
	case <-time.After(10 * time.Second):
		t.Fatal("等待连接结果超时")
		return notification{}
	}
}

// requireNoMore 确认没有多余的通知
func requireNoMore(t *testing.T, ch <-chan notification) {
	t.Helper()
	select {
	case n := <-ch:
		t.Fatalf("收到多余的通知: %v", n.err)
	case <-time.After(100 * time.Millisecond):
	}
}

// awaitEvent 等待服务端的一次交换事件
func awaitEvent(t *testing.T, s *cgserver.Server) cgserver.Event {
	t.Helper()
	select {
	case ev := <-s.Events():
		return ev
	case <-time.After(10 * time.Second):
		t.Fatal("等待服务端事件超时")
		return cgserver.Event{}
	}
}
