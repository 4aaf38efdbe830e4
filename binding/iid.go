package binding

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// Step is one step of an InstanceIdentifier.
type Step interface {
	// StepType is the struct type the step addresses.
	StepType() reflect.Type
	// CaseType is the choice case the step goes through, or nil.
	CaseType() reflect.Type
	String() string
}

// NodeStep addresses a container, a case child or, without a key, all
// entries of a list.
type NodeStep struct {
	Type reflect.Type
	Case reflect.Type
}

func (s NodeStep) StepType() reflect.Type { return s.Type }
func (s NodeStep) CaseType() reflect.Type { return s.Case }

func (s NodeStep) String() string {
	if s.Case != nil {
		return ShortName(s.Case) + "/" + ShortName(s.Type)
	}
	return ShortName(s.Type)
}

// KeyStep addresses one entry of a keyed list.
type KeyStep struct {
	Type reflect.Type
	Key  any
	Case reflect.Type
}

func (s KeyStep) StepType() reflect.Type { return s.Type }
func (s KeyStep) CaseType() reflect.Type { return s.Case }

func (s KeyStep) String() string {
	var b strings.Builder
	if s.Case != nil {
		b.WriteString(ShortName(s.Case) + "/")
	}
	b.WriteString(ShortName(s.Type))
	b.WriteString("[")
	b.WriteString(formatKey(s.Key))
	b.WriteString("]")
	return b.String()
}

// AugmentationStep addresses an augmentation of the previous step.
type AugmentationStep struct {
	Type reflect.Type
}

func (s AugmentationStep) StepType() reflect.Type { return s.Type }
func (s AugmentationStep) CaseType() reflect.Type { return nil }
func (s AugmentationStep) String() string         { return "augmentation(" + ShortName(s.Type) + ")" }

// InstanceIdentifier addresses a binding object from the schema root. It is
// immutable.
type InstanceIdentifier struct {
	steps []Step
}

// FromSteps returns an identifier with the given steps. Step types are
// normalized to struct types.
func FromSteps(steps ...Step) *InstanceIdentifier {
	out := make([]Step, len(steps))
	for i, s := range steps {
		out[i] = normalizeStep(s)
	}
	return &InstanceIdentifier{steps: out}
}

func normalizeStep(s Step) Step {
	switch x := s.(type) {
	case NodeStep:
		return NodeStep{Type: Deref(x.Type), Case: Deref(x.Case)}
	case KeyStep:
		return KeyStep{Type: Deref(x.Type), Key: x.Key, Case: Deref(x.Case)}
	case AugmentationStep:
		return AugmentationStep{Type: Deref(x.Type)}
	}
	return s
}

// Steps returns the steps. The slice must not be modified.
func (id *InstanceIdentifier) Steps() []Step {
	return id.steps
}

func (id *InstanceIdentifier) Len() int {
	return len(id.steps)
}

// TargetType returns the type addressed by the last step.
func (id *InstanceIdentifier) TargetType() reflect.Type {
	if len(id.steps) == 0 {
		return nil
	}
	return id.steps[len(id.steps)-1].StepType()
}

// IsWildcarded reports whether some step addresses a keyed list without a
// key.
func (id *InstanceIdentifier) IsWildcarded() bool {
	for _, s := range id.steps {
		if ns, ok := s.(NodeStep); ok {
			if _, keyed := KeyType(ns.Type); keyed {
				return true
			}
		}
	}
	return false
}

// Parent returns the identifier without its last step, or nil for a
// single step identifier.
func (id *InstanceIdentifier) Parent() *InstanceIdentifier {
	if len(id.steps) <= 1 {
		return nil
	}
	return &InstanceIdentifier{steps: id.steps[:len(id.steps)-1]}
}

// Builder returns a builder extending a copy of id.
func (id *InstanceIdentifier) Builder() *Builder {
	return &Builder{steps: slices.Clone(id.steps)}
}

func (id *InstanceIdentifier) Equal(o *InstanceIdentifier) bool {
	if id == nil || o == nil {
		return id == nil && o == nil
	}
	return slices.EqualFunc(id.steps, o.steps, stepEqual)
}

func stepEqual(a, b Step) bool {
	switch x := a.(type) {
	case NodeStep:
		y, ok := b.(NodeStep)
		return ok && x == y
	case KeyStep:
		y, ok := b.(KeyStep)
		return ok && x.Type == y.Type && x.Case == y.Case && Equal(x.Key, y.Key)
	case AugmentationStep:
		y, ok := b.(AugmentationStep)
		return ok && x == y
	}
	return false
}

func (id *InstanceIdentifier) String() string {
	if id == nil {
		return "<nil>"
	}
	parts := make([]string, len(id.steps))
	for i, s := range id.steps {
		parts[i] = s.String()
	}
	return "/" + strings.Join(parts, "/")
}

// Builder assembles an InstanceIdentifier step by step.
type Builder struct {
	steps []Step
}

// New starts an identifier at the top level type root.
func New(root reflect.Type) *Builder {
	return &Builder{steps: []Step{NodeStep{Type: Deref(root)}}}
}

// NewKeyed starts an identifier at an entry of a top level keyed list.
func NewKeyed(root reflect.Type, key any) *Builder {
	return &Builder{steps: []Step{KeyStep{Type: Deref(root), Key: key}}}
}

func (b *Builder) Child(t reflect.Type) *Builder {
	b.steps = append(b.steps, NodeStep{Type: Deref(t)})
	return b
}

// ChildInCase adds a step to t, a child of the choice case caseType.
func (b *Builder) ChildInCase(caseType, t reflect.Type) *Builder {
	b.steps = append(b.steps, NodeStep{Type: Deref(t), Case: Deref(caseType)})
	return b
}

func (b *Builder) Keyed(t reflect.Type, key any) *Builder {
	b.steps = append(b.steps, KeyStep{Type: Deref(t), Key: key})
	return b
}

func (b *Builder) KeyedInCase(caseType, t reflect.Type, key any) *Builder {
	b.steps = append(b.steps, KeyStep{Type: Deref(t), Key: key, Case: Deref(caseType)})
	return b
}

func (b *Builder) Augmentation(t reflect.Type) *Builder {
	b.steps = append(b.steps, AugmentationStep{Type: Deref(t)})
	return b
}

func (b *Builder) Build() *InstanceIdentifier {
	return &InstanceIdentifier{steps: slices.Clone(b.steps)}
}

func formatKey(k any) string {
	v := reflect.ValueOf(k)
	if v.Kind() != reflect.Struct {
		return fmt.Sprint(k)
	}
	info, err := Struct(v.Type())
	if err != nil {
		return fmt.Sprint(k)
	}
	parts := make([]string, 0, len(info.Fields))
	for _, f := range info.Fields {
		parts = append(parts, f.Local+"="+formatScalar(v.FieldByIndex(f.Index)))
	}
	return strings.Join(parts, ",")
}
