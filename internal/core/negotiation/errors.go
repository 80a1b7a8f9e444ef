package negotiation

import "errors"

var (
	// ErrAlreadyReceived 服务端 Settings 已处理过
	ErrAlreadyReceived = errors.New("negotiation: server settings already received")

	// ErrNotReceived 尚未收到服务端 Settings
	ErrNotReceived = errors.New("negotiation: server settings not received")
)
