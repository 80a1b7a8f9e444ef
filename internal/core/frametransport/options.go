package frametransport

// Options 帧传输选项
type Options struct {
	// EncodeAlignment 发送负载对齐
	EncodeAlignment uint32

	// DecodeAlignment 接收负载对齐
	DecodeAlignment uint32

	// InlinedPayloadSizeThreshold 小于该值的负载走控制连接
	InlinedPayloadSizeThreshold uint32
}

// MessageChunker 消息分块参数
type MessageChunker struct {
	// MaxChunkSize 单块上限，0 表示不分块
	MaxChunkSize uint32

	// Alignment 块大小对齐
	Alignment uint32
}

// Enabled 是否启用分块
func (c MessageChunker) Enabled() bool {
	return c.MaxChunkSize > 0
}

// Split 计算长度为 n 的消息的分块大小
//
// 除最后一块外，每块大小都是 Alignment 的整数倍且不超过 MaxChunkSize。
// 未启用分块时返回单块。
func (c MessageChunker) Split(n int) []int {
	if n <= 0 {
		return nil
	}
	if !c.Enabled() || n <= int(c.MaxChunkSize) {
		return []int{n}
	}

	chunk := int(c.MaxChunkSize)
	if a := int(c.Alignment); a > 1 && chunk >= a {
		chunk -= chunk % a
	}

	sizes := make([]int, 0, (n+chunk-1)/chunk)
	for n > 0 {
		s := min(chunk, n)
		sizes = append(sizes, s)
		n -= s
	}
	return sizes
}
