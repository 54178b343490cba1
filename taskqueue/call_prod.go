//go:build !dev
// +build !dev

package taskqueue

import "github.com/vcrobe/nojs-templating/console"

// call runs a task in production mode.
// In production mode, panics are recovered and logged so one failing change handler
// cannot stall every other queued task.
func (q *TaskQueue) call(task Task) {
	defer func() {
		if rec := recover(); rec != nil {
			console.Error("task panic recovered:", rec)
		}
	}()
	task.Call()
}
