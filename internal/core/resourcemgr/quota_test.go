package resourcemgr

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMemoryQuota_ReserveRelease 测试预留与释放
func TestMemoryQuota_ReserveRelease(t *testing.T) {
	q := NewMemoryQuota(100)

	require.NoError(t, q.Reserve(60))
	assert.ErrorIs(t, q.Reserve(41), ErrResourceLimitExceeded)
	require.NoError(t, q.Reserve(40))
	assert.Equal(t, int64(100), q.Used())

	q.Release(100)
	assert.Equal(t, int64(0), q.Used())

	// 多释放不会变成负数
	q.Release(10)
	assert.Equal(t, int64(0), q.Used())
}

// TestMemoryQuota_Unlimited 测试不限制
func TestMemoryQuota_Unlimited(t *testing.T) {
	q := NewMemoryQuota(0)
	require.NoError(t, q.Reserve(1<<40))
	assert.NoError(t, q.Reserve(0))
	assert.NoError(t, q.Reserve(-1))
}

// TestMemoryQuota_Priority 测试优先级阈值
func TestMemoryQuota_Priority(t *testing.T) {
	q := NewMemoryQuota(256)

	// PriorityLow: 256 * 102 / 256 = 102
	require.NoError(t, q.ReserveWithPriority(102, PriorityLow))
	assert.ErrorIs(t, q.ReserveWithPriority(1, PriorityLow), ErrResourceLimitExceeded)

	// 高优先级仍然可以预留
	require.NoError(t, q.ReserveWithPriority(100, PriorityHigh))
	require.NoError(t, q.Reserve(54))
	assert.ErrorIs(t, q.Reserve(1), ErrResourceLimitExceeded)
}

// TestConnectionQuota 测试连接子配额
func TestConnectionQuota(t *testing.T) {
	q := NewMemoryQuota(100)

	a := q.OpenConnection("control")
	b := q.OpenConnection("data-a")
	assert.Equal(t, 2, q.OpenConnections())
	assert.Equal(t, "control", a.Name())

	require.NoError(t, a.Reserve(50))
	require.NoError(t, b.Reserve(50))
	assert.ErrorIs(t, a.Reserve(1), ErrResourceLimitExceeded)

	a.Release(20)
	assert.Equal(t, int64(30), a.Used())
	assert.Equal(t, int64(80), q.Used())

	// Done 归还未释放部分
	a.Done()
	a.Done()
	assert.Equal(t, int64(50), q.Used())
	assert.Equal(t, 1, q.OpenConnections())
	assert.ErrorIs(t, a.Reserve(1), ErrResourceScopeClosed)

	// 释放超过预留的部分被截断
	b.Release(80)
	assert.Equal(t, int64(0), q.Used())
	b.Done()
	assert.Equal(t, 0, q.OpenConnections())
}

// TestConnectionQuota_Concurrent 测试并发预留
func TestConnectionQuota_Concurrent(t *testing.T) {
	q := NewMemoryQuota(1000)
	c := q.OpenConnection("c")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.Reserve(10) == nil {
				c.Release(10)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(0), c.Used())
	assert.Equal(t, int64(0), q.Used())
}

// TestAutoMemoryLimit 测试自动限额
func TestAutoMemoryLimit(t *testing.T) {
	assert.GreaterOrEqual(t, AutoMemoryLimit(), minAutoLimit)
}
