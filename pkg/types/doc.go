// Package types 定义 cgconn 的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他 cgconn 内部包。
// 所有类型都是纯值类型，用于在各模块间传递数据。
//
// # 文件组织
//
//   - errors.go - 连接建立过程的错误分类（AddressError、HandshakeError 等）
//   - kind.go   - ConnectionKind：控制连接 / 数据连接（带 ID）
//   - args.go   - Args：不可变的通道配置（握手过程可以返回更新后的副本）
package types
