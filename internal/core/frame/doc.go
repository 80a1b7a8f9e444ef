// Package frame 实现帧头编解码
//
// # 帧格式
//
// 控制连接和数据连接使用相同的帧格式：固定 16 字节帧头 + 变长负载。
//
//	+--------------------------------+--------------+----------------+
//	| type(8) | payload tag(56)      | stream id    | payload length |
//	| uint64 little-endian           | uint32 LE    | uint32 LE      |
//	+--------------------------------+--------------+----------------+
//	 0                              8              12               16
//
// 负载标签（连接标签）为 0 表示控制连接，其它值标识数据连接。
// 帧头之后紧跟 PayloadLength 字节负载。
package frame
