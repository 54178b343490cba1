package runtime

import (
	"github.com/vcrobe/nojs-templating/binding"
	"github.com/vcrobe/nojs-templating/vdom"
)

// Marker conventions shared by the compiler and the view factory.
const (
	// TargetIDAttribute carries the marker id of an instruction target.
	TargetIDAttribute = "nojs-target-id"
	// MarkerTag replaces interpolated text runs.
	MarkerTag = "nojs-marker"
	// ShadowSlotTag replaces <slot> elements compiled for light-DOM projection.
	ShadowSlotTag = "nojs-shadow-slot"
	// ContentTag wraps the light-DOM children of a custom element.
	ContentTag = "nojs-content"
	// DefaultSlotKey is the slot name of unnamed slots and unassigned nodes.
	DefaultSlotKey = "__nojs-default-slot__"
)

// BehaviorInstruction says which behavior to create at a target and how to initialize
// its properties.
type BehaviorInstruction struct {
	Type             *BehaviorResource
	OriginalAttrName string
	// Attributes maps property attributes to a binding.Expression or a literal string.
	Attributes map[string]any

	// ViewFactory is the nested template of a template controller, or an element view
	// overriding the resource's own.
	ViewFactory *ViewFactory
	// AnchorIsContainer is set for elements, whose view is appended inside the host.
	AnchorIsContainer bool
	// InheritBindingContext makes the behavior's view see the parent scope.
	InheritBindingContext bool
	// ViewModel is a pre-built view-model used instead of resolving one.
	ViewModel any
	// Host is the element a Mount targets.
	Host *vdom.VNode
}

// NewElementInstruction creates the instruction of a custom element host.
func NewElementInstruction(t *BehaviorResource) *BehaviorInstruction {
	return &BehaviorInstruction{Type: t, Attributes: map[string]any{}, AnchorIsContainer: true}
}

// NewAttributeInstruction creates the instruction of a custom attribute.
func NewAttributeInstruction(attrName string, t *BehaviorResource) *BehaviorInstruction {
	return &BehaviorInstruction{Type: t, OriginalAttrName: attrName, Attributes: map[string]any{}}
}

// TargetKind tags a TargetInstruction.
type TargetKind uint8

const (
	TargetNormal TargetKind = iota
	TargetContentExpression
	TargetShadowSlot
	TargetLifting
	TargetSurrogate
	TargetLetElement
)

func (k TargetKind) String() string {
	switch k {
	case TargetNormal:
		return "normal"
	case TargetContentExpression:
		return "content-expression"
	case TargetShadowSlot:
		return "shadow-slot"
	case TargetLifting:
		return "lifting"
	case TargetSurrogate:
		return "surrogate"
	case TargetLetElement:
		return "let"
	default:
		return "unknown"
	}
}

// RootInjectorID addresses the container passed to ViewFactory.Create.
const RootInjectorID = 0

// TargetInstruction is the compiled wiring of one marked node. It is immutable after
// compilation and shared by every view of the template.
type TargetInstruction struct {
	Kind             TargetKind
	InjectorID       int
	ParentInjectorID int

	ContentExpression binding.Expression

	SlotName            string
	SlotDestination     string
	SlotFallbackFactory *ViewFactory

	BehaviorInstructions []*BehaviorInstruction
	Expressions          []binding.Expression
	Providers            []*BehaviorResource
	ElementInstruction   *BehaviorInstruction
	AnchorIsContainer    bool

	LetExpressions []binding.Expression

	// Values are static surrogate attributes copied onto the host.
	Values []vdom.Attr
}

func NewContentExpressionInstruction(expression binding.Expression) *TargetInstruction {
	return &TargetInstruction{Kind: TargetContentExpression, ContentExpression: expression}
}

func NewShadowSlotInstruction(parentInjectorID int) *TargetInstruction {
	return &TargetInstruction{Kind: TargetShadowSlot, ParentInjectorID: parentInjectorID}
}

func NewLiftingInstruction(parentInjectorID int, lift *BehaviorInstruction) *TargetInstruction {
	return &TargetInstruction{
		Kind:                 TargetLifting,
		ParentInjectorID:     parentInjectorID,
		BehaviorInstructions: []*BehaviorInstruction{lift},
		Providers:            []*BehaviorResource{lift.Type},
	}
}

func NewNormalInstruction(injectorID, parentInjectorID int, providers []*BehaviorResource, behaviors []*BehaviorInstruction, expressions []binding.Expression, element *BehaviorInstruction) *TargetInstruction {
	return &TargetInstruction{
		Kind:                 TargetNormal,
		InjectorID:           injectorID,
		ParentInjectorID:     parentInjectorID,
		Providers:            providers,
		BehaviorInstructions: behaviors,
		Expressions:          expressions,
		ElementInstruction:   element,
		AnchorIsContainer:    true,
	}
}

func NewSurrogateInstruction(providers []*BehaviorResource, behaviors []*BehaviorInstruction, expressions []binding.Expression, values []vdom.Attr) *TargetInstruction {
	return &TargetInstruction{
		Kind:                 TargetSurrogate,
		Providers:            providers,
		BehaviorInstructions: behaviors,
		Expressions:          expressions,
		Values:               values,
		AnchorIsContainer:    true,
	}
}

func NewLetInstruction(expressions []binding.Expression) *TargetInstruction {
	return &TargetInstruction{Kind: TargetLetElement, LetExpressions: expressions}
}

// ViewFactory returns the nested template of a lifting instruction.
func (t *TargetInstruction) ViewFactory() *ViewFactory {
	if t.Kind != TargetLifting || len(t.BehaviorInstructions) == 0 {
		return nil
	}
	return t.BehaviorInstructions[0].ViewFactory
}
