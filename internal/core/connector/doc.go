// Package connector 实现客户端连接建立流水线
//
// 一次控制连接建立由三个阶段组成，作为一个可取消的 Activity 调度：
//
//	原始连接（RawConnector）→ 握手链（HandshakeManager）→ Settings 交换
//
// 成功后校验服务端 Settings，为服务端请求的每个数据连接 ID 发起数据连接，
// 构建 FrameTransport 和 ClientTransport，并通过 ResultNotifier 恰好通知一次。
//
// # 状态机
//
//	Idle ──Connect──▶ Connecting ──完成──▶ Idle
//	  │                   │
//	  └────Shutdown───────┴──Shutdown──▶ ShutDown
//
// ShutDown 之后的 Connect 不启动任何工作，立即以取消错误通知。
//
// # 数据连接
//
// ConnectionCreator 用同一条流水线建立数据连接，Settings 标记为数据通道，
// 帧负载标签从 1 开始按请求顺序分配。单条数据连接失败只体现在
// 对应的 PendingConnection 上，不影响控制连接和其它数据连接。
//
// # 截止时间
//
// 整体截止时间（默认 120 秒）只通过 context 表达，时钟可注入：
//
//	c := connector.NewConnector(cfg, negCfg, connector.Options{
//	    Registry: registry,
//	    Clock:    clock.NewMock(),
//	})
package connector
