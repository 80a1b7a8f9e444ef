// Package upgrader 实现握手链
//
// # 概述
//
// 握手链把一组按顺序配置的握手器应用到连接上，得到升级后的连接、
// 握手过程中多读的字节（ReadBuffer）以及更新后的通道配置（Args）。
//
// 默认链：
//
//	tcp-connect → multistream → tls（可选）
//
//   - tcp-connect：使用 RawConnector 连接 cgconn.resolved_address
//   - multistream：multistream-select 协商协议（github.com/multiformats/go-multistream）
//   - tls：crypto/tls 客户端握手
//
// 通过 Registry.Add 可以在链尾追加自定义握手器。
//
// # 取消
//
// HandshakeManager.Shutdown 立即中止握手：通知当前握手器，
// 并让当前连接上阻塞的 I/O 立即返回。无论成功、失败还是取消，
// 完成回调都恰好执行一次；失败时 HandshakeManager 关闭它持有的连接。
//
// # 字节不丢失
//
// 握手器多读的字节追加到 ReadBuffer，后续握手器和最终端点先消费这些字节。
package upgrader
