package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/homedash/homedash/app/widget"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

// Scheduler drives periodic widget refresh through a bounded worker pool.
// Each tick it asks the widget manager which widgets are due and enqueues one
// update task per widget.
type Scheduler struct {
	manager     *widget.Manager
	interval    time.Duration
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface
}

func NewScheduler(manager *widget.Manager, interval time.Duration, workerCount int) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		manager:     manager,
		interval:    interval,
		workerCount: workerCount,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 100),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueDue()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueDue()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueDue() {
	for _, w := range s.manager.Due(time.Now()) {
		task := NewUpdateWidgetTask(w)
		if err := s.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue widget update", "widget", w.ID(), "error", err)
		}
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.runTask(task)
		}
	}
}

func (s *Scheduler) runTask(task TaskInterface) {
	task.Start()

	if err := task.Execute(s.ctx); err != nil {
		if task.CanRetry() && s.ctx.Err() == nil {
			task.IncrementRetryCount()
			slog.Warn("Task failed, retrying",
				"type", task.GetType(),
				"widget", task.GetWidgetID(),
				"attempt", task.GetRetryCount(),
				"error", err)
			if enqueueErr := s.EnqueueTask(task); enqueueErr != nil {
				slog.Warn("Failed to re-enqueue task", "task", task.GetID(), "error", enqueueErr)
			}
			return
		}

		slog.Error("Task failed",
			"type", task.GetType(),
			"widget", task.GetWidgetID(),
			"error", err)
	}
}
