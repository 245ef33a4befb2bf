package kiosk

import (
	"context"
	"log"
	"sync"
	"time"
)

// Handler executes the behavior of a single state.
type Handler func(ctx context.Context, params Params)

// Dispatcher owns the FIFO task queue and the handler registry. Enqueue is
// safe to call from any goroutine; tasks themselves run serially, one per
// tick, on the goroutine driving RunOnce or Run.
type Dispatcher struct {
	mu       sync.Mutex
	queue    []Task
	handlers map[State]Handler
	current  State
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[State]Handler),
	}
}

// Register binds a handler to a state. Registering a state twice replaces
// the previous handler.
func (d *Dispatcher) Register(state State, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[state] = handler
}

// Enqueue appends a task for the given state. Tasks for states with no
// registered handler are logged and discarded so a misbehaving producer
// cannot wedge the queue.
func (d *Dispatcher) Enqueue(state State, params Params) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.handlers[state]; !ok {
		log.Printf("no handler registered for state %s, dropping task", state)
		return
	}
	d.queue = append(d.queue, Task{State: state, Params: params})
}

// QueueLen reports the number of pending tasks.
func (d *Dispatcher) QueueLen() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}

// State returns the state of the most recently started task.
func (d *Dispatcher) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// RunOnce pops and executes at most one task. It reports whether a task ran,
// panicking handlers included. The panic is recovered and logged; the queue
// stays intact so the kiosk keeps ticking.
func (d *Dispatcher) RunOnce(ctx context.Context) (ran bool) {
	d.mu.Lock()
	if len(d.queue) == 0 {
		d.mu.Unlock()
		return false
	}
	task := d.queue[0]
	d.queue = d.queue[1:]
	handler := d.handlers[task.State]
	d.current = task.State
	d.mu.Unlock()

	// named result so the recover path still reports the task as run
	ran = true
	defer func() {
		if r := recover(); r != nil {
			log.Printf("handler for state %s panicked: %v", task.State, r)
		}
	}()
	handler(ctx, task.Params)
	return ran
}

// Run drives the queue until the context is cancelled, executing at most one
// task per tick.
func (d *Dispatcher) Run(ctx context.Context, tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.RunOnce(ctx)
		}
	}
}
