package types

import (
	"context"
	"errors"
)

// ============================================================================
//                              错误分类
// ============================================================================

// 连接建立各阶段的错误类别
//
// 使用 errors.Is(err, types.ErrProtocol) 判断错误类别。
var (
	// ErrAddress 地址无效
	ErrAddress = errors.New("address error")

	// ErrConnectTimeout 连接超时（包括整体截止时间到期）
	ErrConnectTimeout = errors.New("connect timeout")

	// ErrIO 底层 I/O 错误
	ErrIO = errors.New("io error")

	// ErrHandshake 握手协议失败
	ErrHandshake = errors.New("handshake error")

	// ErrEmptyEndpoint 握手完成但没有可用连接
	ErrEmptyEndpoint = errors.New("empty endpoint")

	// ErrFrameParse 帧头或负载解析失败
	ErrFrameParse = errors.New("frame parse error")

	// ErrProtocol 协议违规
	ErrProtocol = errors.New("protocol error")

	// ErrIncompatibleSettings 对端 Settings 与本地配置不兼容
	ErrIncompatibleSettings = errors.New("incompatible settings")

	// ErrWrite 写入失败
	ErrWrite = errors.New("write error")

	// ErrRead 读取失败
	ErrRead = errors.New("read error")

	// ErrCancelled 被取消（Shutdown 或调用方取消）
	ErrCancelled = errors.New("cancelled")
)

// Error 带类别的错误
//
// Error() 只返回描述信息（例如 "unexpected connection id in frame"），
// Is 匹配类别哨兵错误，Unwrap 暴露底层原因。
type Error struct {
	Kind  error
	Msg   string
	Cause error
}

// NewError 创建带类别的错误
func NewError(kind error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// WrapError 创建带类别和原因的错误
func WrapError(kind error, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Cause: cause}
}

func (e *Error) Error() string {
	switch {
	case e.Msg == "" && e.Cause == nil:
		return e.Kind.Error()
	case e.Msg == "":
		return e.Kind.Error() + ": " + e.Cause.Error()
	case e.Cause == nil:
		return e.Msg
	default:
		return e.Msg + ": " + e.Cause.Error()
	}
}

// Is 匹配错误类别
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

// Unwrap 返回底层原因
func (e *Error) Unwrap() error {
	return e.Cause
}

// KindOf 返回错误所属的类别，未分类返回 nil
func KindOf(err error) error {
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

var kinds = []error{
	ErrCancelled,
	ErrConnectTimeout,
	ErrAddress,
	ErrEmptyEndpoint,
	ErrHandshake,
	ErrFrameParse,
	ErrProtocol,
	ErrIncompatibleSettings,
	ErrWrite,
	ErrRead,
	ErrIO,
}

// FromContext 将 context 错误映射为分类错误
//
// context.Canceled → ErrCancelled，context.DeadlineExceeded → ErrConnectTimeout。
// 其它错误原样返回。
func FromContext(err error) error {
	switch {
	case err == nil:
		return nil
	case KindOf(err) != nil:
		return err
	case errors.Is(err, context.Canceled):
		return WrapError(ErrCancelled, "connect cancelled", err)
	case errors.Is(err, context.DeadlineExceeded):
		return WrapError(ErrConnectTimeout, "connect deadline exceeded", err)
	default:
		return err
	}
}
