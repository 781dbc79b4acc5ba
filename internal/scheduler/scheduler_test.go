package scheduler

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTasksRunInOrder(t *testing.T) {
	s := NewScheduler(10)
	s.Run()

	var mu sync.Mutex
	var order []string
	record := func(name string) Task {
		return Task{Name: name, Execute: func() error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return nil
		}}
	}

	s.Submit(record("a"))
	s.Submit(Task{Name: "boom", Execute: func() error { return errors.New("boom") }})
	s.Submit(record("b"))
	s.Stop()

	assert.Equal(t, []string{"a", "b"}, order)
}

func TestSubmitNeverBlocks(t *testing.T) {
	s := NewScheduler(1)

	var mu sync.Mutex
	ran := 0
	task := Task{Name: "count", Execute: func() error {
		mu.Lock()
		defer mu.Unlock()
		ran++
		return nil
	}}

	// The worker is not running yet, so only one task fits the queue.
	s.Submit(task)
	s.Submit(task)
	s.Submit(task)

	s.Run()
	s.Stop()

	assert.Equal(t, 1, ran)
}

func TestStopDrainsQueue(t *testing.T) {
	s := NewScheduler(10)

	var mu sync.Mutex
	ran := 0
	for i := 0; i < 5; i++ {
		s.Submit(Task{Name: "n", Execute: func() error {
			mu.Lock()
			defer mu.Unlock()
			ran++
			return nil
		}})
	}

	s.Run()
	s.Stop()

	assert.Equal(t, 5, ran)
}
