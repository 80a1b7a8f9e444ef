package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"sort"

	"github.com/dep2p/go-cgconn"
	"github.com/dep2p/go-cgconn/internal/core/metrics"
	"github.com/dep2p/go-cgconn/pkg/types"
)

func runDial(ctx context.Context, args []string) error {
	fs := newFlagSet("dial")
	addr := fs.String("addr", "127.0.0.1:7000", "服务端地址")
	configFile := fs.String("config", "", "配置文件路径")
	timeout := fs.Duration("timeout", 0, "整体截止时间（0 使用配置值）")
	protocols := fs.String("protocols", "", "multistream 协议列表")
	insecure := fs.Bool("insecure", false, "启用 TLS 但跳过证书校验")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var opts []cgconn.Option
	if *configFile != "" {
		opts = append(opts, cgconn.WithConfigFile(*configFile))
	}
	if *timeout > 0 {
		opts = append(opts, cgconn.WithConnectTimeout(*timeout))
	}
	if list := splitList(*protocols); len(list) > 0 {
		opts = append(opts, cgconn.WithProtocols(list...))
	}
	if *insecure {
		// #nosec G402 -- 仅用于连接自签名测试服务端
		opts = append(opts, cgconn.WithTLS(&tls.Config{InsecureSkipVerify: true, MinVersion: tls.VersionTLS12}))
	}

	client, err := cgconn.Start(ctx, opts...)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	res, err := client.Dial(ctx, *addr, types.NewArgs())
	if err != nil {
		return fmt.Errorf("连接失败 (%s): %w", metrics.Outcome(err), err)
	}
	defer func() { _ = res.Close() }()

	fmt.Printf("📦 %s\n", cgconn.VersionInfo())
	fmt.Printf("attempt: %s\n", res.AttemptID)
	fmt.Println("args:")
	for _, k := range res.Args.Keys() {
		v, _ := res.Args.Get(k)
		fmt.Printf("  %s = %v\n", k, v)
	}
	fmt.Printf("peer: %s\n", res.Peer.String())

	ready, errs := res.Transport.FrameTransport().DataConnections(ctx)
	if len(ready)+len(errs) > 0 {
		fmt.Println("data connections:")
	}
	for _, id := range sortedKeys(ready) {
		fmt.Printf("  ✅ %s\n", id)
	}
	for _, id := range sortedKeys(errs) {
		fmt.Printf("  ❌ %s: %v\n", id, errs[id])
	}

	snap := client.Metrics()
	fmt.Printf("metrics: attempts=%d results=%v data=%v\n", snap.Attempts, snap.Results, snap.DataConnections)
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
