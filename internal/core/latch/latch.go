// Package latch 实现单次赋值的结果单元
//
// Latch 在两个独立的执行路径之间传递唯一结果：
// 握手完成回调（可能运行在任意执行器 goroutine 上）负责 Set，
// 等待方通过 Wait 观察结果。
//
// 语义：
//   - 最多只会写入一个值，先写者胜出，后续 Set 静默忽略
//   - Wait 在值写入或 ctx 结束时返回，等待方不会被悬挂
//   - Abandon 声明等待方已放弃：已写入或之后写入的值交给 discard 处理，
//     用于释放竞争失败一方持有的资源（例如已打开的连接）
package latch

import (
	"context"
	"sync"
)

// Latch 单次赋值结果单元
type Latch[T any] struct {
	mu        sync.Mutex
	done      chan struct{}
	value     T
	set       bool
	abandoned bool
	discard   func(T)
}

// New 创建 Latch
func New[T any]() *Latch[T] {
	return &Latch[T]{done: make(chan struct{})}
}

// Set 写入结果
//
// 返回 true 表示本次写入生效。如果等待方已经放弃，
// 值会立即交给 discard 处理，仍然返回 true。
func (l *Latch[T]) Set(v T) bool {
	l.mu.Lock()
	if l.set {
		l.mu.Unlock()
		return false
	}
	l.set = true
	l.value = v
	close(l.done)
	discard := l.discard
	abandoned := l.abandoned
	l.mu.Unlock()

	if abandoned && discard != nil {
		discard(v)
	}
	return true
}

// Done 返回值写入时关闭的 channel
func (l *Latch[T]) Done() <-chan struct{} {
	return l.done
}

// IsSet 是否已写入
func (l *Latch[T]) IsSet() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.set
}

// Wait 等待结果
//
// ctx 结束时返回 ctx.Err()；值已写入时总是优先返回值。
func (l *Latch[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-l.done:
		return l.value, nil
	default:
	}

	select {
	case <-l.done:
		return l.value, nil
	case <-ctx.Done():
		// 与 Set 竞争时优先返回已写入的值
		select {
		case <-l.done:
			return l.value, nil
		default:
		}
		var zero T
		return zero, ctx.Err()
	}
}

// Abandon 放弃等待
//
// 已写入的值立即交给 discard；尚未写入时，之后第一次 Set 的值交给 discard。
// 返回 false 表示已经放弃过。
func (l *Latch[T]) Abandon(discard func(T)) bool {
	l.mu.Lock()
	if l.abandoned {
		l.mu.Unlock()
		return false
	}
	l.abandoned = true
	l.discard = discard
	set := l.set
	v := l.value
	l.mu.Unlock()

	if set && discard != nil {
		discard(v)
	}
	return true
}
