package normalized

import (
	"slices"
	"strings"
)

// InstanceIdentifier addresses a node from the root of a tree. The zero value
// is the empty (root) identifier.
type InstanceIdentifier struct {
	args []PathArgument
}

func NewInstanceIdentifier(args ...PathArgument) InstanceIdentifier {
	return InstanceIdentifier{args: slices.Clone(args)}
}

// Args returns the path arguments. The slice must not be modified.
func (p InstanceIdentifier) Args() []PathArgument { return p.args }

func (p InstanceIdentifier) Len() int      { return len(p.args) }
func (p InstanceIdentifier) IsEmpty() bool { return len(p.args) == 0 }

// Append returns a new identifier with args added at the end.
func (p InstanceIdentifier) Append(args ...PathArgument) InstanceIdentifier {
	out := make([]PathArgument, 0, len(p.args)+len(args))
	out = append(out, p.args...)
	out = append(out, args...)
	return InstanceIdentifier{args: out}
}

// Parent returns the identifier without its last argument. The parent of the
// empty identifier is empty.
func (p InstanceIdentifier) Parent() InstanceIdentifier {
	if len(p.args) == 0 {
		return p
	}
	return InstanceIdentifier{args: p.args[:len(p.args)-1]}
}

func (p InstanceIdentifier) LastArg() (PathArgument, bool) {
	if len(p.args) == 0 {
		return nil, false
	}
	return p.args[len(p.args)-1], true
}

func (p InstanceIdentifier) Equal(o InstanceIdentifier) bool {
	return slices.EqualFunc(p.args, o.args, ArgEqual)
}

func (p InstanceIdentifier) String() string {
	var b strings.Builder
	for _, a := range p.args {
		b.WriteByte('/')
		b.WriteString(a.String())
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}
