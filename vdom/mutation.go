package vdom

import "github.com/vcrobe/nojs-templating/taskqueue"

// MutationRecord describes one child-list change.
type MutationRecord struct {
	Target      *VNode
	Added       []*VNode
	Removed     []*VNode
	NextSibling *VNode
}

// Scheduler delivers batched records outside the mutating call.
// *taskqueue.TaskQueue satisfies it with its macrotask queue.
type Scheduler interface {
	QueueTask(task taskqueue.Task)
}

// ObserveOptions selects what a MutationObserver watches.
type ObserveOptions struct {
	ChildList bool
	Subtree   bool
}

// MutationCallback receives a batch of records.
type MutationCallback func(records []MutationRecord, observer *MutationObserver)

type registration struct {
	observer *MutationObserver
	node     *VNode
	options  ObserveOptions
}

// MutationObserver is a host-scoped child-list watch. Records are buffered and delivered
// in one batch on the scheduler's next macrotask, never inside the mutating call.
type MutationObserver struct {
	scheduler Scheduler
	callback  MutationCallback
	records   []MutationRecord
	queued    bool
	targets   []*VNode
}

// NewMutationObserver creates an observer delivering through s.
func NewMutationObserver(s Scheduler, callback MutationCallback) *MutationObserver {
	return &MutationObserver{scheduler: s, callback: callback}
}

// Observe starts watching target. Observing the same target again replaces its options.
func (o *MutationObserver) Observe(target *VNode, options ObserveOptions) {
	for _, r := range target.registrations {
		if r.observer == o {
			r.options = options
			return
		}
	}
	target.registrations = append(target.registrations, &registration{observer: o, node: target, options: options})
	o.targets = append(o.targets, target)
}

// Disconnect stops every watch of o synchronously and drops pending records.
func (o *MutationObserver) Disconnect() {
	for _, t := range o.targets {
		kept := t.registrations[:0]
		for _, r := range t.registrations {
			if r.observer != o {
				kept = append(kept, r)
			}
		}
		t.registrations = kept
	}
	o.targets = nil
	o.records = nil
}

// Observing reports whether o still watches at least one node.
func (o *MutationObserver) Observing() bool {
	return len(o.targets) > 0
}

// TakeRecords empties and returns the pending records.
func (o *MutationObserver) TakeRecords() []MutationRecord {
	records := o.records
	o.records = nil
	return records
}

func (o *MutationObserver) enqueue(record MutationRecord) {
	o.records = append(o.records, record)
	if o.queued {
		return
	}
	o.queued = true
	o.scheduler.QueueTask(taskqueue.TaskFunc(o.deliver))
}

func (o *MutationObserver) deliver() {
	o.queued = false
	records := o.TakeRecords()
	if len(records) == 0 || o.callback == nil {
		return
	}
	o.callback(records, o)
}

// notify hands record to every observer watching n directly or n's ancestors with Subtree.
func (n *VNode) notify(record MutationRecord) {
	var seen []*MutationObserver
	for cur := n; cur != nil; cur = cur.Parent {
		for _, r := range cur.registrations {
			if !r.options.ChildList || (cur != n && !r.options.Subtree) {
				continue
			}
			if containsObserver(seen, r.observer) {
				continue
			}
			seen = append(seen, r.observer)
			r.observer.enqueue(record)
		}
	}
}

func containsObserver(list []*MutationObserver, o *MutationObserver) bool {
	for _, x := range list {
		if x == o {
			return true
		}
	}
	return false
}
