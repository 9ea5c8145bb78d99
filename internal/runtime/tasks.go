package runtime

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// TaskStatus represents the status of a task
type TaskStatus string

const (
	TaskStatusRunning  TaskStatus = "running"
	TaskStatusStopped  TaskStatus = "stopped"
	TaskStatusFailed   TaskStatus = "failed"
	TaskStatusCanceled TaskStatus = "canceled"
)

// TaskFunc is a function that runs as a background task
type TaskFunc func(ctx context.Context) error

// TaskInfo is a point-in-time view of a task.
type TaskInfo struct {
	Name      string     `json:"name"`
	StartTime time.Time  `json:"start_time"`
	Status    TaskStatus `json:"status"`
	Runs      int64      `json:"runs"`
	Error     string     `json:"error,omitempty"`
}

type task struct {
	info   TaskInfo
	cancel context.CancelFunc
	done   chan struct{}
}

// TaskManager owns the server's background loops: the config watcher, the
// render cache sweeper and the rate limiter sweeper.
type TaskManager struct {
	mu     sync.RWMutex
	tasks  map[string]*task
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewTaskManager creates a manager whose tasks stop when ctx is done.
func NewTaskManager(ctx context.Context) *TaskManager {
	ctx, cancel := context.WithCancel(ctx)
	return &TaskManager{
		tasks:  make(map[string]*task),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start runs fn in its own goroutine. Names are unique while a task runs;
// a finished task may be started again under the same name.
func (tm *TaskManager) Start(name string, fn TaskFunc) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if t, exists := tm.tasks[name]; exists && t.info.Status == TaskStatusRunning {
		return fmt.Errorf("task %s already running", name)
	}

	taskCtx, taskCancel := context.WithCancel(tm.ctx)
	t := &task{
		info:   TaskInfo{Name: name, StartTime: time.Now(), Status: TaskStatusRunning},
		cancel: taskCancel,
		done:   make(chan struct{}),
	}
	tm.tasks[name] = t

	tm.wg.Add(1)
	go tm.run(taskCtx, t, fn)
	return nil
}

func (tm *TaskManager) run(ctx context.Context, t *task, fn TaskFunc) {
	defer tm.wg.Done()
	defer close(t.done)
	logger := log.WithField("task", t.info.Name)

	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		logger.Debug("Task started")
		err = fn(ctx)
	}()

	tm.mu.Lock()
	defer tm.mu.Unlock()
	switch {
	case err != nil && ctx.Err() != nil:
		t.info.Status = TaskStatusCanceled
	case err != nil:
		t.info.Status = TaskStatusFailed
		t.info.Error = err.Error()
		logger.WithError(err).Error("Task failed")
	default:
		t.info.Status = TaskStatusStopped
		logger.Debug("Task stopped")
	}
}

// StartPeriodic runs fn immediately and then every interval. Errors from a
// single run are logged and do not stop the loop.
func (tm *TaskManager) StartPeriodic(name string, interval time.Duration, fn func(ctx context.Context) error) error {
	if interval <= 0 {
		return fmt.Errorf("task %s: interval must be positive", name)
	}
	return tm.Start(name, func(ctx context.Context) error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			tm.tick(name)
			if err := fn(ctx); err != nil {
				log.WithFields(log.Fields{"task": name, "error": err}).Warn("Periodic task execution failed")
			}
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})
}

func (tm *TaskManager) tick(name string) {
	tm.mu.Lock()
	if t, ok := tm.tasks[name]; ok {
		t.info.Runs++
	}
	tm.mu.Unlock()
}

// Stop cancels a running task and waits for it to return.
func (tm *TaskManager) Stop(name string) error {
	tm.mu.RLock()
	t, exists := tm.tasks[name]
	tm.mu.RUnlock()
	if !exists {
		return fmt.Errorf("task %s not found", name)
	}
	t.cancel()
	<-t.done
	return nil
}

// Shutdown cancels every task and waits until they return or ctx expires.
func (tm *TaskManager) Shutdown(ctx context.Context) error {
	tm.cancel()
	done := make(chan struct{})
	go func() {
		tm.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("tasks still running: %w", ctx.Err())
	}
}

// Get returns a snapshot of one task.
func (tm *TaskManager) Get(name string) (TaskInfo, bool) {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	t, ok := tm.tasks[name]
	if !ok {
		return TaskInfo{}, false
	}
	return t.info, true
}

// List returns snapshots of all tasks sorted by name.
func (tm *TaskManager) List() []TaskInfo {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	out := make([]TaskInfo, 0, len(tm.tasks))
	for _, t := range tm.tasks {
		out = append(out, t.info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
