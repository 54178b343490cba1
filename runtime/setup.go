package runtime

import (
	"github.com/vcrobe/nojs-templating/di"
	"github.com/vcrobe/nojs-templating/taskqueue"
)

// Configure registers the services the runtime resolves from the root container: the
// task queue behind property flushes and the host watch registry behind dynamic content
// redistribution.
func Configure(container *di.Container, queue *taskqueue.TaskQueue) *HostWatches {
	watches := NewHostWatches(queue)
	di.Register(container, queue)
	di.Register(container, watches)
	return watches
}
