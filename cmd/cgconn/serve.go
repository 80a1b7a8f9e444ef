package main

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/dep2p/go-cgconn/config"
	"github.com/dep2p/go-cgconn/internal/testutil/cgserver"
	"github.com/dep2p/go-cgconn/internal/testutil/certs"
	"github.com/dep2p/go-cgconn/pkg/lib/log"
)

var logger = log.Logger("cmd/cgconn")

func runServe(ctx context.Context, args []string) error {
	fs := newFlagSet("serve")
	listen := fs.String("listen", "127.0.0.1:7000", "监听地址")
	data := fs.String("data", "", "数据连接 ID，逗号分隔")
	protocols := fs.String("protocols", config.DefaultProtocol, "multistream 协议列表")
	useTLS := fs.Bool("tls", false, "启用 TLS（自签名证书）")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var tlsCfg *tls.Config
	if *useTLS {
		pair, err := certs.SelfSigned()
		if err != nil {
			return fmt.Errorf("生成证书失败: %w", err)
		}
		tlsCfg = pair.ServerConfig()
	}

	srv, err := cgserver.Start(*listen, cgserver.Config{
		Protocols: splitList(*protocols),
		TLS:       tlsCfg,
		DataIDs:   splitList(*data),
	})
	if err != nil {
		return fmt.Errorf("启动服务端失败: %w", err)
	}
	defer func() { _ = srv.Close() }()

	fmt.Printf("服务端已启动: %s (tls=%t)\n", srv.Addr(), tlsCfg != nil)
	fmt.Println("按 Ctrl+C 退出")

	for {
		select {
		case <-ctx.Done():
			fmt.Println("\n正在关闭服务端...")
			return nil
		case ev := <-srv.Events():
			if ev.Err != nil {
				logger.Warn("Settings 交换失败", "tag", ev.Tag, "error", ev.Err)
				continue
			}
			fmt.Printf("[tag=%d] %s\n", ev.Tag, ev.Client.String())
		}
	}
}
