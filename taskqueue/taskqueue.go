// Package taskqueue is the cooperative scheduler of the templating runtime.
//
// There are two queues. Microtasks carry property-observer flushes: everything queued
// during one synchronous turn runs on the next FlushMicroTaskQueue, in queue order,
// including microtasks queued while flushing. Macrotasks carry externally delivered
// batches such as mutation records; every macrotask is followed by a microtask flush,
// the way a browser event loop checkpoints.
//
// A TaskQueue is single-threaded and must only be used from the goroutine that owns
// the view tree.
package taskqueue

// Task is a unit of queued work.
type Task interface {
	Call()
}

// TaskFunc adapts a function to Task.
type TaskFunc func()

// Call runs f.
func (f TaskFunc) Call() { f() }

// TaskQueue holds the microtask and macrotask queues.
type TaskQueue struct {
	microTasks []Task
	tasks      []Task
	flushing   bool

	// OnNeedsFlush is called when work is queued on an idle queue, so a host loop
	// can schedule a flush instead of polling.
	OnNeedsFlush func()
}

// New creates an empty TaskQueue.
func New() *TaskQueue {
	return &TaskQueue{}
}

// QueueMicroTask appends t to the microtask queue.
func (q *TaskQueue) QueueMicroTask(t Task) {
	idle := q.idle()
	q.microTasks = append(q.microTasks, t)
	if idle && q.OnNeedsFlush != nil {
		q.OnNeedsFlush()
	}
}

// QueueTask appends t to the macrotask queue.
func (q *TaskQueue) QueueTask(t Task) {
	idle := q.idle()
	q.tasks = append(q.tasks, t)
	if idle && q.OnNeedsFlush != nil {
		q.OnNeedsFlush()
	}
}

// Flushing reports whether the microtask queue is being flushed.
func (q *TaskQueue) Flushing() bool {
	return q.flushing
}

// Pending returns the number of queued microtasks and macrotasks.
func (q *TaskQueue) Pending() (micro, macro int) {
	return len(q.microTasks), len(q.tasks)
}

func (q *TaskQueue) idle() bool {
	return len(q.microTasks) == 0 && len(q.tasks) == 0
}

// FlushMicroTaskQueue runs microtasks until the queue is empty.
func (q *TaskQueue) FlushMicroTaskQueue() {
	if q.flushing {
		return
	}
	q.flushing = true
	defer func() { q.flushing = false }()

	for i := 0; i < len(q.microTasks); i++ {
		task := q.microTasks[i]
		q.microTasks[i] = nil
		q.call(task)
	}
	q.microTasks = q.microTasks[:0]
}

// FlushTaskQueue runs the macrotasks queued so far, each followed by a microtask flush.
// Macrotasks queued while running wait for the next call.
func (q *TaskQueue) FlushTaskQueue() {
	q.FlushMicroTaskQueue()
	tasks := q.tasks
	q.tasks = nil
	for _, task := range tasks {
		q.call(task)
		q.FlushMicroTaskQueue()
	}
}

// Drain flushes both queues until nothing is left.
func (q *TaskQueue) Drain() {
	for !q.idle() {
		q.FlushTaskQueue()
	}
}
