//go:build dev
// +build dev

package taskqueue

// call runs a task in development mode.
// In dev mode, panics propagate to aid debugging and fast failure.
func (q *TaskQueue) call(task Task) {
	task.Call()
}
