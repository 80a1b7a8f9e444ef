package upgrader

import "errors"

var (
	// ErrNoResolvedAddress 缺少已解析地址
	ErrNoResolvedAddress = errors.New("upgrader: missing resolved address")

	// ErrNoProtocols 没有可协商的协议
	ErrNoProtocols = errors.New("upgrader: no protocols configured")

	// ErrNegotiationFailed 协商失败
	ErrNegotiationFailed = errors.New("upgrader: protocol negotiation failed")

	// ErrHandshakeFailed 握手失败
	ErrHandshakeFailed = errors.New("upgrader: handshake failed")

	// ErrAlreadyStarted 握手已经开始
	ErrAlreadyStarted = errors.New("upgrader: handshake already started")
)
