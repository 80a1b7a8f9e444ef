// Package exchange 实现 Settings 交换
//
// # 客户端状态机
//
//	SendSettings → AwaitHeader → AwaitPayload → Done
//	      └──────────────┴─────────────┴──────→ Failed
//
//  1. SendSettings：以 [帧头][负载] 写出本端 Settings，负载标签为连接标签（控制连接为 0），必须完整写出
//  2. AwaitHeader：精确读取一个帧头，截断或格式错误返回 types.ErrFrameParse
//  3. 校验：帧头标签必须等于本端标签，否则返回 types.ErrProtocol（"unexpected connection id in frame"）
//  4. AwaitPayload：精确读取负载并解码 Settings
//  5. Done：返回对端 Settings
//
// 交换是半双工的：本端写完之后才开始读取。
//
// 服务端 Respond 用于测试服务器和 CLI 的 serve 模式。
package exchange
