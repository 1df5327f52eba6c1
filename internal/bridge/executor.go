package bridge

import (
	"log"
	"sync"

	"github.com/edwingeng/deque/v2"
)

// Executor schedules deferred tasks onto the host's main execution
// context. It is the only crossing point from receiver goroutines to the
// single-threaded scene state: a task submitted here runs exactly once,
// with no other task running concurrently. Tasks must not submit and
// wait on themselves.
type Executor interface {
	Submit(task func())
}

// Loop is the portable Executor: a dedicated goroutine draining a task
// channel. Hosts without their own cooperative scheduler run scene work
// on the loop goroutine, which then is the main execution context.
type Loop struct {
	tasks chan func()
	quit  chan struct{}
	done  chan struct{}
	once  sync.Once
}

// NewLoop creates a Loop and starts its goroutine.
func NewLoop() *Loop {
	l := &Loop{
		tasks: make(chan func(), 64),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go l.run()
	return l
}

// Submit queues a task. After Stop, tasks are silently dropped; shutdown
// never cancels in-flight work, it just stops accepting more.
func (l *Loop) Submit(task func()) {
	select {
	case l.tasks <- task:
	case <-l.quit:
	}
}

// Stop terminates the loop goroutine after the current task finishes
// and waits for it to exit.
func (l *Loop) Stop() {
	l.once.Do(func() { close(l.quit) })
	<-l.done
}

func (l *Loop) run() {
	defer close(l.done)
	for {
		select {
		case task := <-l.tasks:
			runTask(task)
		case <-l.quit:
			return
		}
	}
}

// Stepper is an Executor for hosts that own their event loop. Submitted
// tasks accumulate in a queue; the host calls RunPending from its own
// tick, which becomes the main execution context. Only the queue itself
// is locked, so receivers may submit while a task runs.
type Stepper struct {
	mu    sync.Mutex
	tasks *deque.Deque[func()]
}

// NewStepper creates an empty Stepper.
func NewStepper() *Stepper {
	return &Stepper{tasks: deque.NewDeque[func()]()}
}

// Submit queues a task for the next tick.
func (s *Stepper) Submit(task func()) {
	s.mu.Lock()
	s.tasks.PushBack(task)
	s.mu.Unlock()
}

// RunPending runs every task queued at the time of the call, in
// submission order, and returns how many ran. Tasks submitted while
// draining wait for the next tick.
func (s *Stepper) RunPending() int {
	s.mu.Lock()
	n := s.tasks.Len()
	batch := make([]func(), 0, n)
	for i := 0; i < n; i++ {
		batch = append(batch, s.tasks.PopFront())
	}
	s.mu.Unlock()

	for _, task := range batch {
		runTask(task)
	}
	return len(batch)
}

// Pending reports how many tasks are queued.
func (s *Stepper) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks.Len()
}

// runTask executes one task, recovering panics. A fault escaping into
// the main context would destabilize the host's own event loop.
func runTask(task func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("bridge: task panic: %v", r)
		}
	}()
	task()
}
