// Package metrics 提供连接建立的监控指标
//
// 基于 github.com/prometheus/client_golang 记录：
//   - connect_attempts_total          控制连接尝试次数
//   - connect_results_total{outcome}  控制连接结果
//   - connect_duration_seconds        控制连接耗时
//   - data_connections_total{outcome} 数据连接结果
//
// outcome 取值见 Outcome：success、cancelled、timeout、address、handshake、
// empty_endpoint、frame_parse、protocol、incompatible_settings、write、read、io、unknown。
//
// 同时维护一份原子计数快照（Snapshot），供 CLI 输出和测试使用。
//
// # Fx 模块
//
//	app := fx.New(
//	    metrics.Module,
//	    fx.Invoke(func(r metrics.Reporter) { ... }),
//	)
package metrics
