package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-cgconn/config"
	"github.com/dep2p/go-cgconn/pkg/types"
)

// TestOutcome 测试结果分类
func TestOutcome(t *testing.T) {
	assert.Equal(t, OutcomeSuccess, Outcome(nil))
	assert.Equal(t, OutcomeProtocol, Outcome(types.NewError(types.ErrProtocol, "unexpected connection id in frame")))
	assert.Equal(t, OutcomeTimeout, Outcome(types.WrapError(types.ErrConnectTimeout, "x", errors.New("y"))))
	assert.Equal(t, OutcomeUnknown, Outcome(errors.New("plain")))
}

// TestCollector 测试指标记录
func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector("test", reg)
	require.NoError(t, err)

	c.ConnectAttempt()
	c.ConnectAttempt()
	c.ConnectResult(nil, 10*time.Millisecond)
	c.ConnectResult(types.NewError(types.ErrCancelled, "connect cancelled"), time.Millisecond)
	c.DataConnectionResult(nil)
	c.DataConnectionResult(types.NewError(types.ErrIO, "refused"))
	c.DataConnectionResult(types.NewError(types.ErrIO, "refused"))

	assert.Equal(t, float64(2), testutil.ToFloat64(c.attempts))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.results.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.results.WithLabelValues(OutcomeCancelled)))
	assert.Equal(t, float64(2), testutil.ToFloat64(c.data.WithLabelValues(OutcomeIO)))
	assert.Equal(t, 1, testutil.CollectAndCount(c.duration))

	s := c.Snapshot()
	assert.Equal(t, int64(2), s.Attempts)
	assert.Equal(t, int64(1), s.Results[OutcomeSuccess])
	assert.Equal(t, int64(2), s.DataConnections[OutcomeIO])
	assert.Equal(t, int64(1), s.DataConnections[OutcomeSuccess])

	// 重复注册复用已有指标
	c2, err := NewCollector("test", reg)
	require.NoError(t, err)
	c2.ConnectAttempt()
	assert.Equal(t, float64(3), testutil.ToFloat64(c.attempts))
}

// TestCollector_NoRegistry 测试不注册
func TestCollector_NoRegistry(t *testing.T) {
	c, err := NewCollector("test", nil)
	require.NoError(t, err)
	c.ConnectAttempt()
	assert.Equal(t, int64(1), c.Snapshot().Attempts)
}

// TestModule_Provides 测试模块提供的类型
func TestModule_Provides(t *testing.T) {
	reg := prometheus.NewRegistry()
	var r Reporter
	app := fxtest.New(t,
		fx.Provide(func() prometheus.Registerer { return reg }),
		Module,
		fx.Populate(&r),
	)
	defer app.RequireStart().RequireStop()

	_, ok := r.(*Collector)
	require.True(t, ok)
	r.ConnectAttempt()

	n, err := testutil.GatherAndCount(reg, "cgconn_connect_attempts_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

// TestModule_Disabled 测试关闭指标
func TestModule_Disabled(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Metrics.Enable = false

	var r Reporter
	app := fxtest.New(t,
		fx.Supply(cfg),
		Module,
		fx.Populate(&r),
	)
	defer app.RequireStart().RequireStop()

	assert.Equal(t, Noop{}, r)
	r.ConnectAttempt()
	assert.Equal(t, Snapshot{}, r.Snapshot())
}
