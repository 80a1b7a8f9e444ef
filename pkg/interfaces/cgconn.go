// Package interfaces 定义 cgconn 公共接口
//
// 本文件定义连接建立流程依赖的外部协作者接口：
// 执行器、原始连接器、握手器和内存配额。
package interfaces

import (
	"context"
	"net"
	"time"

	"github.com/dep2p/go-cgconn/pkg/types"
)

// Executor 执行器接口
//
// 负责调度异步工作单元。握手完成回调可能运行在任意执行器 goroutine 上。
type Executor interface {
	// Run 调度执行 fn，不阻塞调用方
	Run(fn func())
}

// RawConnector 原始连接器接口
//
// 在截止时间内建立到已解析地址的字节流连接。
// 取消 ctx 必须中止进行中的连接且不泄漏底层资源。
//
// 错误类别：types.ErrAddress、types.ErrConnectTimeout、types.ErrIO、types.ErrCancelled。
type RawConnector interface {
	Connect(ctx context.Context, addr string) (net.Conn, error)
}

// HandshakerArgs 握手参数
//
// 在握手链中按顺序传递，每个握手器可以替换 Endpoint、
// 追加 ReadBuffer（握手过程中多读的字节）以及更新 Args。
type HandshakerArgs struct {
	// Endpoint 当前连接，tcp-connect 握手器之前为 nil
	Endpoint net.Conn

	// ReadBuffer 已读入但尚未消费的字节，必须原样交给下一个所有者
	ReadBuffer []byte

	// Args 通道配置
	Args types.Args

	// Deadline 整体截止时间
	Deadline time.Time

	// ExitEarly 为 true 时跳过后续握手器
	ExitEarly bool
}

// Handshaker 握手器接口
//
// 握手链中的一个协议升级步骤。
type Handshaker interface {
	// Name 返回握手器名称
	Name() string

	// DoHandshake 执行握手，成功后更新 args
	//
	// 失败时握手器不负责关闭 args.Endpoint，由 HandshakeManager 统一关闭。
	DoHandshake(ctx context.Context, args *HandshakerArgs) error

	// Shutdown 立即中止进行中的握手
	Shutdown(err error)
}

// MemoryQuota 内存配额接口
//
// 握手完成后挂接到连接上，读取负载前预留内存，读取完成后释放。
type MemoryQuota interface {
	// Reserve 预留 n 字节，超过限制返回错误
	Reserve(n int) error

	// Release 释放 n 字节
	Release(n int)

	// Used 返回当前使用量
	Used() int64
}
