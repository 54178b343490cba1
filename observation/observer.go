// Package observation holds the buffered property observers behind bindable properties
// and observable binding contexts.
package observation

import (
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/vcrobe/nojs-templating/taskqueue"
)

// Queue is where observers schedule their flush.
type Queue interface {
	QueueMicroTask(task taskqueue.Task)
}

// ChangeHandler receives a flushed change.
type ChangeHandler func(newValue, oldValue any)

// Observable exposes the observers of an object by property name. It returns nil when
// the object has no observer for name.
type Observable interface {
	PropertyObserver(name string) *PropertyObserver
}

type subscriber struct {
	fn ChangeHandler
}

// PropertyObserver is a buffered cell for one property.
//
// SetValue records the new value and, when publishing, queues one flush per turn. Call
// compares the current value with the value seen at the previous flush, so N writes in
// one turn produce one notification carrying the value from before the turn. Subscribers
// are notified in reverse registration order, after the self subscriber.
type PropertyObserver struct {
	queue Queue
	name  string

	currentValue any
	oldValue     any
	publishing   bool
	notQueued    bool

	selfSubscriber ChangeHandler
	subscribers    []*subscriber
	store          func(any)
}

// NewPropertyObserver creates an observer holding initial. A nil queue flushes
// synchronously on every write. New observers do not publish until SetPublishing(true).
func NewPropertyObserver(queue Queue, name string, initial any) *PropertyObserver {
	return &PropertyObserver{
		queue:        queue,
		name:         name,
		currentValue: initial,
		oldValue:     initial,
		notQueued:    true,
	}
}

// Name returns the observed property name.
func (o *PropertyObserver) Name() string {
	return o.name
}

// GetValue returns the current value.
func (o *PropertyObserver) GetValue() any {
	return o.currentValue
}

// SetValue stores v and schedules a flush when the value changed.
func (o *PropertyObserver) SetValue(v any) {
	if Equal(v, o.currentValue) {
		return
	}
	o.currentValue = v
	if o.store != nil {
		o.store(v)
	}
	if !o.publishing || !o.notQueued {
		return
	}
	if o.queue == nil {
		o.Call()
		return
	}
	o.notQueued = false
	o.queue.QueueMicroTask(o)
}

// Call flushes a pending change. It is the taskqueue.Task entry point.
func (o *PropertyObserver) Call() {
	oldValue := o.oldValue
	newValue := o.currentValue
	o.notQueued = true

	if Equal(newValue, oldValue) {
		return
	}
	if o.selfSubscriber != nil {
		o.selfSubscriber(newValue, oldValue)
	}
	o.callSubscribers(newValue, oldValue)
	o.oldValue = newValue
}

// callSubscribers notifies the most recent subscriber first.
func (o *PropertyObserver) callSubscribers(newValue, oldValue any) {
	subs := append([]*subscriber(nil), o.subscribers...)
	for i := len(subs) - 1; i >= 0; i-- {
		subs[i].fn(newValue, oldValue)
	}
}

// Subscribe registers fn and returns the function that removes it.
func (o *PropertyObserver) Subscribe(fn ChangeHandler) (unsubscribe func()) {
	s := &subscriber{fn: fn}
	o.subscribers = append(o.subscribers, s)
	return func() {
		for i, cur := range o.subscribers {
			if cur == s {
				o.subscribers = append(o.subscribers[:i], o.subscribers[i+1:]...)
				return
			}
		}
	}
}

// SubscriberCount returns the number of external subscribers.
func (o *PropertyObserver) SubscriberCount() int {
	return len(o.subscribers)
}

func (o *PropertyObserver) Publishing() bool {
	return o.publishing
}

func (o *PropertyObserver) SetPublishing(publishing bool) {
	o.publishing = publishing
}

// SelfSubscriber returns the owner's change handler.
func (o *PropertyObserver) SelfSubscriber() ChangeHandler {
	return o.selfSubscriber
}

func (o *PropertyObserver) SetSelfSubscriber(fn ChangeHandler) {
	o.selfSubscriber = fn
}

// SetStore installs the write half of the owner's accessor pair. It runs synchronously
// on every accepted write so the owner's field always mirrors the current value.
func (o *PropertyObserver) SetStore(store func(any)) {
	o.store = store
}

// Equal compares two property values. Comparable dynamic types use ==, everything else
// is compared structurally.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	if va.Comparable() && vb.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

// ExportedName upper-cases the first rune of name, mapping template names such as
// "firstName" onto Go field names such as "FirstName".
func ExportedName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

// SameName reports whether a template property name refers to a Go property name.
func SameName(templateName, propertyName string) bool {
	return templateName == propertyName || ExportedName(templateName) == propertyName ||
		strings.EqualFold(templateName, propertyName)
}

// FieldNamed finds the exported field of struct value v that a template name refers
// to, so "id" resolves to a field named ID. It returns the zero Value when none does.
func FieldNamed(v reflect.Value, name string) reflect.Value {
	if f := v.FieldByName(ExportedName(name)); f.IsValid() {
		return f
	}
	return v.FieldByNameFunc(func(s string) bool {
		return strings.EqualFold(s, name) && ExportedName(s) == s
	})
}
