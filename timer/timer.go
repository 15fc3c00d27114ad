// timer/timer.go
package timer

import (
	"container/heap"
	"sync"
	"time"
)

const DefaultResolution = 100 * time.Millisecond

type TimerTask struct {
	Id       int64
	Execute  time.Time
	Callback func()
	index    int
}

type TimerQueue []*TimerTask

func (q TimerQueue) Len() int { return len(q) }

func (q TimerQueue) Less(i, j int) bool {
	return q[i].Execute.Before(q[j].Execute)
}

func (q TimerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *TimerQueue) Push(x interface{}) {
	n := len(*q)
	task := x.(*TimerTask)
	task.index = n
	*q = append(*q, task)
}

func (q *TimerQueue) Pop() interface{} {
	old := *q
	n := len(old)
	task := old[n-1]
	old[n-1] = nil
	task.index = -1
	*q = old[0 : n-1]
	return task
}

// TimerManager runs one-shot callbacks after a delay. Due tasks are checked
// every resolution tick, so a callback fires up to one tick late. Callbacks
// run on their own goroutine and must do their own locking.
type TimerManager struct {
	queue      TimerQueue
	mutex      sync.Mutex
	nextId     int64
	resolution time.Duration
	now        func() time.Time
	done       chan struct{}
	running    bool
	wg         sync.WaitGroup
}

func NewTimerManager(resolution time.Duration) *TimerManager {
	if resolution <= 0 {
		resolution = DefaultResolution
	}
	return &TimerManager{
		queue:      make(TimerQueue, 0),
		nextId:     1,
		resolution: resolution,
		now:        time.Now,
	}
}

// Start launches the processing loop. Starting a running manager is a no-op.
func (m *TimerManager) Start() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.running {
		return
	}
	m.running = true
	m.done = make(chan struct{})
	m.wg.Add(1)
	go m.process(m.done)
}

// Stop halts the loop and drops every pending task. The manager can be
// started again later.
func (m *TimerManager) Stop() {
	m.mutex.Lock()
	if !m.running {
		m.mutex.Unlock()
		return
	}
	m.running = false
	close(m.done)
	m.queue = m.queue[:0]
	m.mutex.Unlock()
	m.wg.Wait()
}

func (m *TimerManager) Running() bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.running
}

func (m *TimerManager) AddTimer(delay time.Duration, callback func()) int64 {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	task := &TimerTask{
		Id:       m.nextId,
		Execute:  m.now().Add(delay),
		Callback: callback,
	}
	m.nextId++

	heap.Push(&m.queue, task)
	return task.Id
}

// RemoveTimer cancels a pending task and reports whether it was still queued.
func (m *TimerManager) RemoveTimer(timerId int64) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, task := range m.queue {
		if task.Id == timerId {
			heap.Remove(&m.queue, task.index)
			return true
		}
	}
	return false
}

func (m *TimerManager) Pending() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.queue.Len()
}

// popDue removes and returns every task whose time has come.
func (m *TimerManager) popDue() []*TimerTask {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	now := m.now()
	var due []*TimerTask
	for m.queue.Len() > 0 && !m.queue[0].Execute.After(now) {
		due = append(due, heap.Pop(&m.queue).(*TimerTask))
	}
	return due
}

func (m *TimerManager) process(done <-chan struct{}) {
	defer m.wg.Done()
	ticker := time.NewTicker(m.resolution)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for _, task := range m.popDue() {
				go task.Callback()
			}
		case <-done:
			return
		}
	}
}
