// Package activity 实现可取消的异步工作单元
//
// 每次连接尝试对应一个 Activity，由外部执行器调度。
// Activity 保证完成回调恰好执行一次：
//   - 工作函数返回前被取消：回调收到取消原因，成功结果交给 discard 释放
//   - 工作函数先完成：回调收到其结果，之后的 Cancel 无效果
package activity

import (
	"context"
	"sync"

	pkgif "github.com/dep2p/go-cgconn/pkg/interfaces"
	"github.com/dep2p/go-cgconn/pkg/types"
)

// GoExecutor 为每个任务启动一个 goroutine 的执行器
type GoExecutor struct{}

// 确保实现了接口
var _ pkgif.Executor = GoExecutor{}

// Run 在新 goroutine 中执行 fn
func (GoExecutor) Run(fn func()) {
	go fn()
}

// Activity 可取消的工作单元
type Activity struct {
	cancel context.CancelCauseFunc
	done   chan struct{}

	mu        sync.Mutex
	finished  bool
	cancelled bool
}

// Spawn 在执行器上启动工作单元
//
// fn 必须响应 ctx 取消并及时返回。onDone 恰好调用一次。
// discard 可为 nil，用于释放被取消覆盖的成功结果。
func Spawn[T any](
	parent context.Context,
	exec pkgif.Executor,
	fn func(ctx context.Context) (T, error),
	onDone func(T, error),
	discard func(T),
) *Activity {
	if exec == nil {
		exec = GoExecutor{}
	}
	ctx, cancel := context.WithCancelCause(parent)
	a := &Activity{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	exec.Run(func() {
		v, err := fn(ctx)

		a.mu.Lock()
		a.finished = true
		cancelled := a.cancelled
		a.mu.Unlock()

		if cancelled {
			if err == nil && discard != nil {
				discard(v)
			}
			var zero T
			v, err = zero, cancelCause(ctx)
		}
		cancel(nil)
		close(a.done)
		onDone(v, err)
	})
	return a
}

// Cancel 取消工作单元
//
// 返回 false 表示工作单元已经完成（或已被取消），本次调用无效果。
func (a *Activity) Cancel(cause error) bool {
	a.mu.Lock()
	if a.finished || a.cancelled {
		a.mu.Unlock()
		return false
	}
	a.cancelled = true
	a.mu.Unlock()

	if cause == nil {
		cause = types.NewError(types.ErrCancelled, "activity cancelled")
	}
	a.cancel(cause)
	return true
}

// Done 返回工作单元结束（回调执行前）时关闭的 channel
func (a *Activity) Done() <-chan struct{} {
	return a.done
}

// cancelCause 返回分类后的取消原因
func cancelCause(ctx context.Context) error {
	if cause := context.Cause(ctx); cause != nil {
		return types.FromContext(cause)
	}
	return types.NewError(types.ErrCancelled, "activity cancelled")
}
