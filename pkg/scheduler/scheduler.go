// Package scheduler хранит отложенные задачи по ключу. Новая задача с тем же ключом
// отменяет предыдущую; отмена кооперативная, через context.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type TaskFunc func(ctx context.Context)

type task struct {
	id     uint64
	cancel context.CancelFunc
}

type Scheduler struct {
	mu     sync.Mutex
	tasks  map[string]*task
	nextID uint64
	wg     sync.WaitGroup
	root   context.Context
	stop   context.CancelFunc
	logger *zap.Logger
}

func New(logger *zap.Logger) *Scheduler {
	root, stop := context.WithCancel(context.Background())
	return &Scheduler{
		tasks:  make(map[string]*task),
		root:   root,
		stop:   stop,
		logger: logger,
	}
}

// Schedule запускает fn через delay, отменяя задачу с тем же ключом.
func (s *Scheduler) Schedule(key string, delay time.Duration, fn TaskFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduleLocked(key, delay, fn)
}

// Reschedule вызывается из выполняющейся задачи: если её ctx уже отменён
// (Cancel или Stop), следующая задача не ставится.
func (s *Scheduler) Reschedule(ctx context.Context, key string, delay time.Duration, fn TaskFunc) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ctx.Err() != nil {
		return false
	}
	s.scheduleLocked(key, delay, fn)
	return true
}

func (s *Scheduler) scheduleLocked(key string, delay time.Duration, fn TaskFunc) {
	if s.root.Err() != nil {
		return
	}
	if prev, ok := s.tasks[key]; ok {
		prev.cancel()
	}

	s.nextID++
	ctx, cancel := context.WithCancel(s.root)
	t := &task{id: s.nextID, cancel: cancel}
	s.tasks[key] = t

	s.wg.Add(1)
	go s.run(ctx, key, t, delay, fn)
}

func (s *Scheduler) run(ctx context.Context, key string, t *task, delay time.Duration, fn TaskFunc) {
	defer s.wg.Done()
	defer s.release(key, t)

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}

	defer func() {
		if p := recover(); p != nil {
			s.logger.Error("Паника в отложенной задаче", zap.String("key", key), zap.Any("panic", p))
		}
	}()
	fn(ctx)
}

func (s *Scheduler) release(key string, t *task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.tasks[key]; ok && cur.id == t.id {
		delete(s.tasks, key)
	}
	t.cancel()
}

// Cancel отменяет ожидающую или выполняющуюся задачу по ключу.
func (s *Scheduler) Cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[key]
	if !ok {
		return false
	}
	t.cancel()
	delete(s.tasks, key)
	return true
}

func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Stop отменяет все задачи и ждёт их завершения.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stop()
	s.mu.Unlock()
	s.wg.Wait()
}
