package metrics

import (
	"time"

	"github.com/dep2p/go-cgconn/pkg/types"
)

// Reporter 记录连接建立指标
type Reporter interface {
	// ConnectAttempt 记录一次控制连接尝试
	ConnectAttempt()

	// ConnectResult 记录控制连接结果
	ConnectResult(err error, elapsed time.Duration)

	// DataConnectionResult 记录数据连接结果
	DataConnectionResult(err error)

	// Snapshot 返回计数快照
	Snapshot() Snapshot
}

// Snapshot 计数快照
type Snapshot struct {
	Attempts        int64            `json:"attempts"`
	Results         map[string]int64 `json:"results"`
	DataConnections map[string]int64 `json:"dataConnections"`
}

// 结果分类
const (
	OutcomeSuccess              = "success"
	OutcomeCancelled            = "cancelled"
	OutcomeTimeout              = "timeout"
	OutcomeAddress              = "address"
	OutcomeHandshake            = "handshake"
	OutcomeEmptyEndpoint        = "empty_endpoint"
	OutcomeFrameParse           = "frame_parse"
	OutcomeProtocol             = "protocol"
	OutcomeIncompatibleSettings = "incompatible_settings"
	OutcomeWrite                = "write"
	OutcomeRead                 = "read"
	OutcomeIO                   = "io"
	OutcomeUnknown              = "unknown"
)

var outcomes = map[error]string{
	types.ErrCancelled:            OutcomeCancelled,
	types.ErrConnectTimeout:       OutcomeTimeout,
	types.ErrAddress:              OutcomeAddress,
	types.ErrHandshake:            OutcomeHandshake,
	types.ErrEmptyEndpoint:        OutcomeEmptyEndpoint,
	types.ErrFrameParse:           OutcomeFrameParse,
	types.ErrProtocol:             OutcomeProtocol,
	types.ErrIncompatibleSettings: OutcomeIncompatibleSettings,
	types.ErrWrite:                OutcomeWrite,
	types.ErrRead:                 OutcomeRead,
	types.ErrIO:                   OutcomeIO,
}

// Outcome 返回错误对应的结果分类
func Outcome(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	if o, ok := outcomes[types.KindOf(err)]; ok {
		return o
	}
	return OutcomeUnknown
}

// Noop 不记录任何指标
type Noop struct{}

var _ Reporter = Noop{}

func (Noop) ConnectAttempt()                    {}
func (Noop) ConnectResult(error, time.Duration) {}
func (Noop) DataConnectionResult(error)         {}
func (Noop) Snapshot() Snapshot                 { return Snapshot{} }
