// Package negotiation 实现客户端 Settings 协商
//
// ClientConfig 在控制连接上准备本端 Settings，校验服务端返回的 Settings，
// 为服务端要求的每个数据连接 ID 发起建立，并生成帧传输选项和分块参数。
//
// 校验规则（违反时返回 types.ErrIncompatibleSettings）：
//   - 控制连接上服务端不能声明 data_channel
//   - alignment 为 0（视为 1）或 2 的幂
//   - connection_id 非空、不重复，数量不超过 MaxDataConnections
//
// 协商结果：
//   - 特性取双方交集
//   - 双方都支持分块时，分块上限取双方非零值中的较小者
//   - 内联阈值取双方非零值中的较小者
package negotiation
