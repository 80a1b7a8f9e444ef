// Package cgconn 提供分帧 RPC 传输的客户端连接建立
//
// 一次连接建立依次执行：原始 TCP 连接、可插拔握手链（multistream、TLS）、
// Settings 交换。控制连接建立后，按服务端要求建立带标签的数据连接，
// 单条数据连接失败不影响控制连接和其它数据连接。
//
// # 快速开始
//
//	client, err := cgconn.Start(ctx,
//	    cgconn.WithConfigFile("cgconn.json"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	res, err := client.Dial(ctx, "127.0.0.1:7000", types.NewArgs())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer res.Close()
//
//	ready, errs := res.Transport.FrameTransport().DataConnections(ctx)
//
// # 错误
//
// 所有错误都带有类别，使用 errors.Is 判断：
//
//	errors.Is(err, types.ErrProtocol)
//	errors.Is(err, types.ErrConnectTimeout)
//
// # 组件
//
//	┌──────────────────────────────────────────────────────────┐
//	│  Client (cgconn.New / cgconn.Start)                       │
//	├──────────────────────────────────────────────────────────┤
//	│  connector   Connector / ConnectionCreator / Notifier     │
//	├──────────────────────────────────────────────────────────┤
//	│  upgrader    tcp-connect → multistream → tls              │
//	│  exchange    Settings 交换                                │
//	│  negotiation 服务端 Settings 校验与协商                   │
//	├──────────────────────────────────────────────────────────┤
//	│  transport/tcp  endpoint  frame  settings                 │
//	│  resourcemgr    metrics                                   │
//	└──────────────────────────────────────────────────────────┘
package cgconn
