// Package queue 提供进程内的有界任务池，用于站内通知扇出和用户投影等后台工作。
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// ErrClosed 池已关闭时提交任务返回。
var ErrClosed = errors.New("queue: pool closed")

// Job 是一个后台任务。
type Job func(ctx context.Context) error

// ResultHook 在每个任务结束后调用，err 为 nil 表示成功。
type ResultHook func(name string, err error)

type task struct {
	name string
	run  Job
}

// Pool 固定数量 worker 消费一个有界通道。
type Pool struct {
	logger  *slog.Logger
	workers int
	tasks   chan task
	hook    ResultHook

	wg     sync.WaitGroup
	mu     sync.RWMutex // 保护 closed 与通道关闭之间的竞态
	closed bool

	submitted atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
	panics    atomic.Int64
}

// Stats 统计快照。
type Stats struct {
	Submitted int64
	Succeeded int64
	Failed    int64
	Dropped   int64
	Panics    int64
	Pending   int
}

// New 创建任务池，workers 与 capacity 至少为 1。
func New(logger *slog.Logger, workers, capacity int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if capacity <= 0 {
		capacity = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{
		logger:  logger,
		workers: workers,
		tasks:   make(chan task, capacity),
	}
}

// OnResult 设置结果回调，需在 Start 之前调用。
func (p *Pool) OnResult(hook ResultHook) {
	p.hook = hook
}

// Workers 返回 worker 数量。
func (p *Pool) Workers() int {
	return p.workers
}

// Start 启动 worker。ctx 取消后 worker 退出，未执行的任务被丢弃。
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.loop(ctx, i)
	}
}

func (p *Pool) loop(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case t, ok := <-p.tasks:
			if !ok {
				return
			}
			p.run(ctx, id, t)
		}
	}
}

func (p *Pool) run(ctx context.Context, workerID int, t task) {
	var err error
	defer func() {
		if r := recover(); r != nil {
			p.panics.Add(1)
			err = fmt.Errorf("panic: %v", r)
			p.logger.Error("job panic recovered",
				slog.String("job", t.name),
				slog.Int("worker_id", workerID),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
		if err != nil {
			p.failed.Add(1)
		} else {
			p.succeeded.Add(1)
		}
		if p.hook != nil {
			p.hook(t.name, err)
		}
	}()

	err = t.run(ctx)
	if err != nil {
		p.logger.Warn("job failed",
			slog.String("job", t.name),
			slog.Int("worker_id", workerID),
			slog.String("error", err.Error()))
	}
}

// Submit 非阻塞提交；池已满或已关闭时返回 false。
func (p *Pool) Submit(name string, job Job) bool {
	if job == nil {
		return false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.logger.Warn("pool closed, reject job", slog.String("job", name))
		return false
	}
	select {
	case p.tasks <- task{name: name, run: job}:
		p.submitted.Add(1)
		return true
	default:
		p.dropped.Add(1)
		p.logger.Warn("pool full, drop job",
			slog.String("job", name),
			slog.Int("capacity", cap(p.tasks)))
		return false
	}
}

// SubmitWait 阻塞提交，直到入队、ctx 结束或池关闭。
func (p *Pool) SubmitWait(ctx context.Context, name string, job Job) error {
	if job == nil {
		return errors.New("queue: nil job")
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.tasks <- task{name: name, run: job}:
		p.submitted.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown 拒绝新任务，等待已入队任务执行完毕，超时返回错误。
func (p *Pool) Shutdown(timeout time.Duration) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	if timeout <= 0 {
		<-done
		return nil
	}
	select {
	case <-done:
		p.logger.Info("pool drained", slog.Int64("succeeded", p.succeeded.Load()), slog.Int64("failed", p.failed.Load()))
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("queue: shutdown timeout after %s", timeout)
	}
}

// Stats 返回统计快照。
func (p *Pool) Stats() Stats {
	return Stats{
		Submitted: p.submitted.Load(),
		Succeeded: p.succeeded.Load(),
		Failed:    p.failed.Load(),
		Dropped:   p.dropped.Load(),
		Panics:    p.panics.Load(),
		Pending:   len(p.tasks),
	}
}
