// Package main 提供 cgconn 命令行入口
//
// 子命令：
//
//	cgconn serve -listen 127.0.0.1:7000 -data a,b [-tls]
//	cgconn dial  -addr 127.0.0.1:7000 [-config cgconn.json] [-timeout 10s]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dep2p/go-cgconn"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		printHelp()
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch args[0] {
	case "serve":
		return runServe(ctx, args[1:])
	case "dial":
		return runDial(ctx, args[1:])
	case "version", "-version", "--version":
		printVersion()
		return nil
	case "help", "-h", "-help", "--help":
		printHelp()
		return nil
	default:
		return fmt.Errorf("未知子命令: %s", args[0])
	}
}

// splitList 解析逗号分隔的列表
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

func printVersion() {
	fmt.Println(cgconn.VersionInfo())
}

func printHelp() {
	fmt.Println(`cgconn - RPC 连接建立工具

用法:
  cgconn serve [选项]   启动 Settings 服务端
  cgconn dial [选项]    建立控制连接和数据连接
  cgconn version        显示版本信息

serve 选项:
  -listen     监听地址（默认 127.0.0.1:7000）
  -data       要求客户端建立的数据连接 ID，逗号分隔
  -protocols  multistream 协议列表，逗号分隔
  -tls        使用自签名证书启用 TLS

dial 选项:
  -addr       服务端地址（host:port）
  -config     JSON 配置文件路径
  -timeout    整体截止时间
  -protocols  multistream 协议列表，逗号分隔
  -insecure   启用 TLS 但跳过证书校验

环境变量:
  CGCONN_LOG_LEVEL   日志级别，如 core/connector=debug,info
  CGCONN_LOG_FORMAT  text 或 json`)
}
