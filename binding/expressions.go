package binding

import (
	"strings"

	"github.com/vcrobe/nojs-templating/observation"
)

// PathExpression reads a dotted property path such as "user.name".
type PathExpression struct {
	targetProperty string
	Path           string
	Mode           BindingMode
}

// NewPathExpression creates a path expression writing to targetProperty.
func NewPathExpression(targetProperty, path string, mode BindingMode) *PathExpression {
	return &PathExpression{targetProperty: targetProperty, Path: strings.TrimSpace(path), Mode: mode}
}

func (e *PathExpression) TargetProperty() string { return e.targetProperty }

func (e *PathExpression) CreateBinding(target Accessor) Binding {
	return &PathBinding{expr: e, target: target}
}

// Evaluate reads the path once without observing it.
func (e *PathExpression) Evaluate(scope *Scope) any {
	v, _ := evaluatePath(scope, splitPath(e.Path), nil)
	return v
}

// evaluatePath walks segs. When onChange is set every observed segment is subscribed
// and the returned functions undo the subscriptions.
func evaluatePath(scope *Scope, segs []string, onChange func(newValue, oldValue any)) (any, []func()) {
	if len(segs) == 0 {
		return scope.BindingContext, nil
	}
	var unsubs []func()
	owner, observers, locals := lookupRoot(scope, segs[0])
	if locals != nil {
		owner, observers = locals, locals
	}
	var value any
	for _, seg := range segs {
		v, o := getProperty(owner, observers, seg)
		if onChange != nil && o != nil {
			unsubs = append(unsubs, o.Subscribe(onChange))
		}
		value = v
		owner, observers = v, nil
		if value == nil {
			break
		}
	}
	return value, unsubs
}

// resolveOwner returns the object holding the last segment of segs.
func resolveOwner(scope *Scope, segs []string) (any, observation.Observable) {
	owner, observers, locals := lookupRoot(scope, segs[0])
	if locals != nil {
		owner, observers = locals, locals
	}
	for _, seg := range segs[:len(segs)-1] {
		v, _ := getProperty(owner, observers, seg)
		owner, observers = v, nil
	}
	return owner, observers
}

// PathBinding is the live binding of a PathExpression.
type PathBinding struct {
	expr   *PathExpression
	target Accessor
	scope  *Scope

	isBound     bool
	sourceUnsub []func()
	targetUnsub func()
}

// Mode returns the effective mode, defaulting to one-way.
func (b *PathBinding) Mode() BindingMode {
	if b.expr.Mode == ModeDefault {
		return OneWay
	}
	return b.expr.Mode
}

func (b *PathBinding) Bind(scope *Scope) {
	if b.isBound {
		if b.scope == scope {
			return
		}
		b.Unbind()
	}
	b.isBound = true
	b.scope = scope

	mode := b.Mode()
	var onChange func(newValue, oldValue any)
	if mode != OneTime {
		onChange = b.sourceChanged
	}
	value, unsubs := evaluatePath(scope, splitPath(b.expr.Path), onChange)
	b.sourceUnsub = unsubs
	b.target.SetValue(value)

	if mode == TwoWay {
		if s, ok := b.target.(Subscribable); ok {
			b.targetUnsub = s.Subscribe(func(newValue, _ any) { b.updateSource(newValue) })
		}
	}
}

func (b *PathBinding) sourceChanged(newValue, _ any) {
	if !b.isBound {
		return
	}
	segs := splitPath(b.expr.Path)
	if len(segs) == 1 {
		b.target.SetValue(newValue)
		return
	}
	b.unsubscribeSource()
	value, unsubs := evaluatePath(b.scope, segs, b.sourceChanged)
	b.sourceUnsub = unsubs
	b.target.SetValue(value)
}

func (b *PathBinding) updateSource(value any) {
	if !b.isBound {
		return
	}
	segs := splitPath(b.expr.Path)
	if len(segs) == 0 {
		return
	}
	owner, observers := resolveOwner(b.scope, segs)
	setProperty(owner, observers, segs[len(segs)-1], value)
}

func (b *PathBinding) unsubscribeSource() {
	for _, u := range b.sourceUnsub {
		u()
	}
	b.sourceUnsub = nil
}

func (b *PathBinding) Unbind() {
	if !b.isBound {
		return
	}
	b.isBound = false
	b.scope = nil
	b.unsubscribeSource()
	if b.targetUnsub != nil {
		b.targetUnsub()
		b.targetUnsub = nil
	}
}

// interpolationPart is a literal run or a path.
type interpolationPart struct {
	literal string
	path    []string
}

// InterpolationExpression renders literal text mixed with {path} references.
type InterpolationExpression struct {
	targetProperty string
	parts          []interpolationPart
}

func (e *InterpolationExpression) TargetProperty() string { return e.targetProperty }

func (e *InterpolationExpression) CreateBinding(target Accessor) Binding {
	return &InterpolationBinding{expr: e, target: target}
}

// Paths returns the referenced paths in order.
func (e *InterpolationExpression) Paths() []string {
	var out []string
	for _, p := range e.parts {
		if p.path != nil {
			out = append(out, strings.Join(p.path, "."))
		}
	}
	return out
}

// single reports whether the expression is one reference with no literal text, in which
// case the raw value is passed through.
func (e *InterpolationExpression) single() bool {
	return len(e.parts) == 1 && e.parts[0].path != nil
}

// InterpolationBinding is the live binding of an InterpolationExpression. It is one-way.
type InterpolationBinding struct {
	expr    *InterpolationExpression
	target  Accessor
	scope   *Scope
	isBound bool
	unsubs  []func()
}

func (b *InterpolationBinding) Bind(scope *Scope) {
	if b.isBound {
		if b.scope == scope {
			return
		}
		b.Unbind()
	}
	b.isBound = true
	b.scope = scope
	b.refresh()
}

func (b *InterpolationBinding) refresh() {
	for _, u := range b.unsubs {
		u()
	}
	b.unsubs = nil

	var sb strings.Builder
	var raw any
	for _, part := range b.expr.parts {
		if part.path == nil {
			sb.WriteString(part.literal)
			continue
		}
		v, unsubs := evaluatePath(b.scope, part.path, b.changed)
		b.unsubs = append(b.unsubs, unsubs...)
		raw = v
		sb.WriteString(Stringify(v))
	}
	if b.expr.single() {
		b.target.SetValue(raw)
		return
	}
	b.target.SetValue(sb.String())
}

func (b *InterpolationBinding) changed(_, _ any) {
	if b.isBound {
		b.refresh()
	}
}

func (b *InterpolationBinding) Unbind() {
	if !b.isBound {
		return
	}
	b.isBound = false
	b.scope = nil
	for _, u := range b.unsubs {
		u()
	}
	b.unsubs = nil
}

// LiteralExpression assigns a constant once per bind.
type LiteralExpression struct {
	targetProperty string
	Value          any
}

func NewLiteralExpression(targetProperty string, value any) *LiteralExpression {
	return &LiteralExpression{targetProperty: targetProperty, Value: value}
}

func (e *LiteralExpression) TargetProperty() string { return e.targetProperty }

func (e *LiteralExpression) CreateBinding(target Accessor) Binding {
	return &literalBinding{expr: e, target: target}
}

type literalBinding struct {
	expr   *LiteralExpression
	target Accessor
}

func (b *literalBinding) Bind(*Scope) { b.target.SetValue(b.expr.Value) }

func (b *literalBinding) Unbind() {}

// LetExpression declares a named value computed from a source expression. It writes to
// the override context locals, or to the binding context when ToBindingContext is set.
type LetExpression struct {
	Name             string
	Source           Expression
	ToBindingContext bool
}

func (e *LetExpression) TargetProperty() string { return e.Name }

// CreateBinding ignores target: a let binding writes into the scope it is bound to.
func (e *LetExpression) CreateBinding(Accessor) Binding {
	return &letBinding{expr: e}
}

type letBinding struct {
	expr  *LetExpression
	inner Binding
	scope *Scope
}

func (b *letBinding) Bind(scope *Scope) {
	if b.inner != nil {
		if b.scope == scope {
			return
		}
		b.Unbind()
	}
	b.scope = scope
	b.inner = b.expr.Source.CreateBinding(letAccessor{scope: scope, name: b.expr.Name, toBindingContext: b.expr.ToBindingContext})
	b.inner.Bind(scope)
}

func (b *letBinding) Unbind() {
	if b.inner == nil {
		return
	}
	b.inner.Unbind()
	b.inner = nil
	b.scope = nil
}

type letAccessor struct {
	scope            *Scope
	name             string
	toBindingContext bool
}

func (a letAccessor) GetValue() any {
	if a.toBindingContext {
		v, _ := getProperty(a.scope.BindingContext, a.scope.OverrideContext.Observers, a.name)
		return v
	}
	return a.scope.OverrideContext.Locals().Get(a.name)
}

func (a letAccessor) SetValue(v any) {
	if a.toBindingContext {
		setProperty(a.scope.BindingContext, a.scope.OverrideContext.Observers, a.name, v)
		return
	}
	a.scope.OverrideContext.Locals().Set(a.name, v)
}
