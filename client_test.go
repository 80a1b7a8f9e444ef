package cgconn

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-cgconn/config"
	"github.com/dep2p/go-cgconn/internal/core/metrics"
	"github.com/dep2p/go-cgconn/internal/testutil/cgserver"
	"github.com/dep2p/go-cgconn/internal/testutil/certs"
	"github.com/dep2p/go-cgconn/pkg/types"
)

// TestClient_Dial 测试完整连接建立
func TestClient_Dial(t *testing.T) {
	srv, err := cgserver.Start("127.0.0.1:0", cgserver.Config{
		Protocols: []string{config.DefaultProtocol},
		DataIDs:   []string{"a", "b"},
	})
	require.NoError(t, err)
	defer srv.Close()

	reg := prometheus.NewRegistry()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c, err := Start(ctx, WithMetricsRegisterer(reg))
	require.NoError(t, err)
	defer c.Close()

	res, err := c.Dial(ctx, srv.Addr(), types.NewArgs())
	require.NoError(t, err)
	defer res.Close()
	assert.Equal(t, config.DefaultProtocol, res.Args.StringOf(types.ArgProtocol))

	ready, errs := res.Transport.FrameTransport().DataConnections(ctx)
	assert.Len(t, ready, 2)
	assert.Empty(t, errs)

	snap := c.Metrics()
	assert.Equal(t, int64(1), snap.Attempts)
	assert.Equal(t, int64(2), snap.DataConnections[metrics.OutcomeSuccess])

	n, err := testutil.GatherAndCount(reg, "cgconn_connect_results_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

// TestClient_TLS 测试 TLS 选项
func TestClient_TLS(t *testing.T) {
	pair, err := certs.SelfSigned()
	require.NoError(t, err)
	srv, err := cgserver.Start("127.0.0.1:0", cgserver.Config{
		Protocols: []string{"/custom/1.0.0"},
		TLS:       pair.ServerConfig(),
	})
	require.NoError(t, err)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c, err := Start(ctx,
		WithProtocols("/custom/1.0.0"),
		WithTLS(pair.ClientConfig("")),
	)
	require.NoError(t, err)
	defer c.Close()

	res, err := c.Dial(ctx, srv.Addr(), types.NewArgs())
	require.NoError(t, err)
	defer res.Close()
	assert.Equal(t, "tls", res.Args.StringOf(types.ArgSecurity))
	assert.Equal(t, "/custom/1.0.0", res.Args.StringOf(types.ArgProtocol))
}

// TestClient_Timeout 测试注入时钟下的截止时间
func TestClient_Timeout(t *testing.T) {
	srv, err := cgserver.Start("127.0.0.1:0", cgserver.Config{
		Protocols: []string{config.DefaultProtocol},
		Behavior:  cgserver.Silent,
	})
	require.NoError(t, err)
	defer srv.Close()

	clk := clock.NewMock()
	c, err := Start(context.Background(), WithClock(clk), WithConnectTimeout(time.Minute))
	require.NoError(t, err)
	defer c.Close()

	conn, err := c.NewConnector()
	require.NoError(t, err)

	done := make(chan error, 1)
	conn.Connect(ConnectArgs{Address: srv.Addr()}, func(_ *Result, err error) { done <- err })

	select {
	case <-srv.Events():
	case <-time.After(10 * time.Second):
		t.Fatal("服务端没有收到 Settings")
	}
	clk.Add(time.Minute + time.Second)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, types.ErrConnectTimeout)
	case <-time.After(10 * time.Second):
		t.Fatal("截止时间到期后没有结束")
	}
}

// TestClient_Lifecycle 测试生命周期
func TestClient_Lifecycle(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	_, err = c.Dial(context.Background(), "127.0.0.1:1", types.NewArgs())
	assert.ErrorIs(t, err, ErrNotStarted)

	require.NoError(t, c.Start(context.Background()))
	assert.ErrorIs(t, c.Start(context.Background()), ErrAlreadyStarted)
	assert.Equal(t, int64(0), c.MemoryUsed())

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	_, err = c.NewConnector()
	assert.ErrorIs(t, err, ErrClientClosed)
	assert.ErrorIs(t, c.Start(context.Background()), ErrClientClosed)
}

// TestNew_InvalidOptions 测试无效选项
func TestNew_InvalidOptions(t *testing.T) {
	_, err := New(WithConfig(nil))
	assert.Error(t, err)

	_, err = New(WithConnectTimeout(0))
	assert.Error(t, err)

	cfg := config.NewConfig()
	cfg.Negotiation.Alignment = 3
	_, err = New(WithConfig(cfg))
	assert.Error(t, err)
}

// TestVersionInfo 测试版本信息
func TestVersionInfo(t *testing.T) {
	assert.Contains(t, VersionInfo(), Version)
}
