package tcp

import "errors"

var (
	// ErrTransportClosed 传输已关闭
	ErrTransportClosed = errors.New("tcp: transport closed")

	// ErrInvalidAddress 地址格式无效
	ErrInvalidAddress = errors.New("tcp: invalid address")

	// ErrUnresolvedAddress 地址未解析为 IP
	ErrUnresolvedAddress = errors.New("tcp: address is not resolved")
)
