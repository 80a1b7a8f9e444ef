package resourcemgr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-cgconn/config"
)

// TestModule_Provides 测试模块提供的类型
func TestModule_Provides(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Resource.MemoryLimit = 4096

	var q *MemoryQuota
	app := fxtest.New(t,
		fx.Supply(cfg),
		Module,
		fx.Populate(&q),
	)
	defer app.RequireStart().RequireStop()

	assert.NotNil(t, q)
	assert.Equal(t, int64(4096), q.Limit())
}

// TestModule_AutoLimit 测试未配置统一配置时使用自动限额
func TestModule_AutoLimit(t *testing.T) {
	var q *MemoryQuota
	app := fxtest.New(t,
		Module,
		fx.Populate(&q),
	)
	defer app.RequireStart().RequireStop()

	assert.GreaterOrEqual(t, q.Limit(), minAutoLimit)
}
