package resourcemgr

import "github.com/pbnjay/memory"

const (
	// PriorityAlways 可以使用全部限额的优先级
	PriorityAlways uint8 = 255

	// PriorityHigh 可以使用约 80% 限额
	PriorityHigh uint8 = 203

	// PriorityLow 可以使用约 40% 限额
	PriorityLow uint8 = 101

	// minAutoLimit 自动计算限额的下限
	minAutoLimit int64 = 64 << 20
)

// AutoMemoryLimit 按系统内存计算默认限额
//
// 取系统内存的 1/16，不低于 64 MiB；无法获取系统内存时返回下限。
func AutoMemoryLimit() int64 {
	total := memory.TotalMemory()
	if total == 0 {
		return minAutoLimit
	}
	limit := int64(total / 16)
	if limit < minAutoLimit {
		return minAutoLimit
	}
	return limit
}

// checkMemoryLimit 检查内存限制（带优先级）
//
// 预留成功当: current + toReserve <= limit * (prio+1) / 256
func checkMemoryLimit(current, toReserve, limit int64, prio uint8) error {
	if limit <= 0 {
		return nil
	}

	newUsage := current + toReserve
	if newUsage < 0 {
		// 溢出
		return ErrResourceLimitExceeded
	}

	var threshold int64
	if prio == PriorityAlways {
		threshold = limit
	} else {
		threshold = (limit * int64(prio+1)) / 256
	}

	if newUsage > threshold {
		return ErrResourceLimitExceeded
	}
	return nil
}
