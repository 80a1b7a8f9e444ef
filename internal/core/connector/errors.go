package connector

import "errors"

var (
	// ErrConnectInProgress 已有进行中的连接尝试
	ErrConnectInProgress = errors.New("connector: connect already in progress")

	// ErrNoRegistry 未配置握手链
	ErrNoRegistry = errors.New("connector: handshake registry is required")

	// ErrCreatorClosed 数据连接创建器已关闭
	ErrCreatorClosed = errors.New("connector: connection creator closed")
)
