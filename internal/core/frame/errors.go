package frame

import "errors"

var (
	// ErrUnknownFrameType 未知帧类型
	ErrUnknownFrameType = errors.New("frame: unknown frame type")

	// ErrShortHeader 帧头长度不足
	ErrShortHeader = errors.New("frame: short header")

	// ErrPayloadTooLarge 负载超过上限
	ErrPayloadTooLarge = errors.New("frame: payload too large")

	// ErrStreamIDOnSettings Settings 帧携带了流 ID
	ErrStreamIDOnSettings = errors.New("frame: settings frame with nonzero stream id")

	// ErrTagOverflow 负载标签超出 56 位
	ErrTagOverflow = errors.New("frame: payload tag overflow")
)
