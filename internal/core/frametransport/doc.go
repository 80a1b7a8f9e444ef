// Package frametransport 实现连接建立完成后交给调用方的传输对象
//
// FrameTransport 持有协商完成的控制连接端点和一组待建立的数据连接；
// ClientTransport 叠加在其上，携带最终通道配置和消息分块参数。
//
// 建立之后的帧收发和多路复用不在本包范围内。
package frametransport
