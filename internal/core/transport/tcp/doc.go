// Package tcp 提供基于 TCP 的原始连接器
//
// Transport 实现 interfaces.RawConnector：在 ctx 的约束下建立到
// 已解析地址的 TCP 连接。取消 ctx 会中止进行中的拨号，不会泄漏套接字。
//
// 支持的地址格式：
//   - 127.0.0.1:7000、[::1]:7000
//   - /ip4/127.0.0.1/tcp/7000、/ip6/::1/tcp/7000
//
// 地址必须已经解析为 IP，域名会被拒绝（types.ErrAddress）。
//
// Listen 提供服务端监听，供测试服务器和 CLI 的 serve 模式使用。
package tcp
