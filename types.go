package cgconn

import (
	"github.com/dep2p/go-cgconn/internal/core/connector"
	"github.com/dep2p/go-cgconn/internal/core/metrics"
)

// ════════════════════════════════════════════════════════════════════════════
//                              版本信息
// ════════════════════════════════════════════════════════════════════════════

// Version 当前版本
const Version = "v0.1.0"

// BuildInfo 构建信息（通过 ldflags 注入）
var (
	// GitCommit Git 提交哈希
	GitCommit string

	// BuildDate 构建日期
	BuildDate string
)

// VersionInfo 返回完整版本信息字符串
func VersionInfo() string {
	info := "cgconn " + Version
	if GitCommit != "" {
		info += " (" + GitCommit[:min(8, len(GitCommit))] + ")"
	}
	if BuildDate != "" {
		info += " built " + BuildDate
	}
	return info
}

// ════════════════════════════════════════════════════════════════════════════
//                              类型别名
// ════════════════════════════════════════════════════════════════════════════

// Result 连接建立结果
type Result = connector.Result

// Connector 控制连接建立器
type Connector = connector.Connector

// ConnectArgs 连接参数
type ConnectArgs = connector.ConnectArgs

// Notify 结果回调
type Notify = connector.Notify

// MetricsSnapshot 指标快照
type MetricsSnapshot = metrics.Snapshot
