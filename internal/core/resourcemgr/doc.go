// Package resourcemgr 实现连接读缓冲的内存配额
//
// # 概述
//
// 握手完成后，连接建立流程把一个 ConnectionQuota 挂接到端点上。
// 端点读取负载前从配额预留内存，读取完成后释放；
// 所有连接共享同一个根 MemoryQuota。
//
// # 优先级
//
// 预留时可以指定优先级（0-255），低优先级只能使用部分限额：
//
//	threshold = limit * (prio+1) / 256
//
// 优先级 255 可以使用全部限额。
//
// # 默认限额
//
// 配置中 MemoryLimit 为 0 时，按系统内存的 1/16 计算（github.com/pbnjay/memory）。
package resourcemgr
