// Package scheduler serializes index rebuild work on a single worker so
// watcher callbacks never block and rebuilds never overlap.
package scheduler

import (
	"log"
	"sync"
)

// Task is one unit of queued work.
type Task struct {
	Name    string
	Execute func() error
}

// Scheduler runs submitted tasks one at a time in submission order.
type Scheduler struct {
	taskQueue chan Task
	stopChan  chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// NewScheduler creates a scheduler with the given queue capacity.
func NewScheduler(queueSize int) *Scheduler {
	return &Scheduler{
		taskQueue: make(chan Task, queueSize),
		stopChan:  make(chan struct{}),
	}
}

// Run starts the worker loop.
func (s *Scheduler) Run() {
	go func() {
		for {
			select {
			case task := <-s.taskQueue:
				s.execute(task)
			case <-s.stopChan:
				// Stop signal received, drain the queue and exit.
				for {
					select {
					case task := <-s.taskQueue:
						log.Printf("Draining task: %s", task.Name)
						s.execute(task)
					default:
						return
					}
				}
			}
		}
	}()
}

func (s *Scheduler) execute(task Task) {
	defer s.wg.Done()
	if err := task.Execute(); err != nil {
		log.Printf("Task %s failed: %v", task.Name, err)
	}
}

// Submit queues a task without blocking the caller. Tasks submitted after
// Stop and tasks that do not fit the queue are dropped and logged.
func (s *Scheduler) Submit(task Task) {
	select {
	case <-s.stopChan:
		log.Printf("Skipped %s. Scheduler stopped.", task.Name)
		return
	default:
	}
	s.wg.Add(1)
	select {
	case s.taskQueue <- task:
	default:
		s.wg.Done()
		log.Printf("Skipped %s. Queue is full.", task.Name)
	}
}

// Stop runs what is queued and joins the worker. Stopping twice is safe.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		log.Println("Stopping scheduler.")
		close(s.stopChan)
	})
	s.wg.Wait()
	log.Println("Scheduler stopped.")
}
