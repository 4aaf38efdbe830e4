package codec

import (
	"reflect"

	"github.com/opendaylight/yangtools-sub038/binding"
	"github.com/opendaylight/yangtools-sub038/normalized"
	"github.com/opendaylight/yangtools-sub038/schema"
)

type resolved struct {
	yang normalized.InstanceIdentifier
	node TreeNode
}

// resolve walks a binding path, producing the generic path and the codec
// of its target. Choices crossed on the way contribute their identifier;
// keyed list steps contribute the list identifier and the entry
// predicates.
func (c *Context) resolve(path *binding.InstanceIdentifier) (resolved, error) {
	if path == nil || path.Len() == 0 {
		return resolved{}, illegalArgument("empty instance identifier")
	}
	steps := path.Steps()
	var (
		args []normalized.PathArgument
		cur  *dataNode
	)
	for i, step := range steps {
		if aug, ok := step.(binding.AugmentationStep); ok {
			if cur == nil {
				return resolved{}, c.missingChild(aug.Type, "Argument %s is not valid data tree child of schema root", binding.ShortName(aug.Type))
			}
			next, err := cur.augmentation(aug.Type)
			if err != nil {
				return resolved{}, err
			}
			cur = next
			continue
		}
		var (
			next *dataNode
			err  error
		)
		if cur == nil {
			if step.CaseType() != nil {
				return resolved{}, incorrectNesting("top level step %s cannot name a case", step)
			}
			next, err = c.rootChild(step.StepType())
		} else {
			var crossed []*schema.Node
			next, crossed, err = cur.childByType(step.StepType(), step.CaseType())
			for _, ch := range crossed {
				args = append(args, normalized.NewNodeIdentifier(ch.QName))
			}
		}
		if err != nil {
			return resolved{}, err
		}
		args = append(args, normalized.NewNodeIdentifier(next.schema.QName))
		switch st := step.(type) {
		case binding.KeyStep:
			if next.key == nil {
				return resolved{}, illegalArgument("%s is not a keyed list", binding.ShortName(st.Type))
			}
			id, err := next.key.toPredicates(next.schema.QName, st.Key)
			if err != nil {
				return resolved{}, err
			}
			args = append(args, id)
		case binding.NodeStep:
			if next.schema.Kind == schema.KindList && i != len(steps)-1 {
				return resolved{}, incorrectNesting("list %s must be addressed by key to reach %s", next.schema.QName, steps[i+1])
			}
		}
		cur = next
	}
	return resolved{yang: normalized.NewInstanceIdentifier(args...), node: cur}, nil
}

func (c *Context) rootChild(t reflect.Type) (*dataNode, error) {
	name := binding.TypeName(t)
	nodes := c.reg.BindingNodes(name)
	if len(nodes) == 0 {
		return nil, &MissingSchemaForClassError{Type: binding.Deref(t)}
	}
	for _, s := range nodes {
		if s.Parent == nil && (s.Kind == schema.KindContainer || s.Kind == schema.KindList) {
			return c.dataNode(s, t)
		}
	}
	return nil, incorrectNesting("Argument %s is not valid data tree child of schema root", nodes[0].QName)
}

// ToYangInstanceIdentifier converts a binding path to a generic path.
func (c *Context) ToYangInstanceIdentifier(path *binding.InstanceIdentifier) (normalized.InstanceIdentifier, error) {
	r, err := c.resolve(path)
	if err != nil {
		return normalized.InstanceIdentifier{}, err
	}
	return r.yang, nil
}

// FromYangInstanceIdentifier converts a generic path to a binding path. A
// path without binding representation, one ending in a keyed list without
// key, a choice or a leaf, yields nil and no error.
func (c *Context) FromYangInstanceIdentifier(p normalized.InstanceIdentifier) (*binding.InstanceIdentifier, error) {
	args := p.Args()
	if len(args) == 0 {
		return nil, illegalArgument("empty instance identifier")
	}
	var (
		steps    []binding.Step
		cur      *dataNode
		caseType reflect.Type
	)
	for i := 0; i < len(args); i++ {
		if _, ok := args[i].(normalized.AugmentationIdentifier); ok {
			return nil, illegalArgument("augmentation identifiers are not supported: %s", args[i])
		}
		q := args[i].NodeType()
		var (
			s    *schema.Node
			elem reflect.Type
		)
		if cur == nil {
			top, ok := c.reg.TopLevel(q)
			if !ok {
				return nil, c.unknownChild(q, "schema root")
			}
			if top.Kind != schema.KindContainer && top.Kind != schema.KindList {
				return nil, incorrectNesting("Argument %s is not valid data tree child of schema root", q)
			}
			t, err := c.loadType(top.Binding)
			if err != nil {
				return nil, err
			}
			s, elem = top, t
		} else {
			f, ok := cur.byQName[q]
			if !ok {
				a, found := cur.schema.AugmentationFor(q)
				if !found {
					return nil, c.unknownChild(q, cur.schema.String())
				}
				an, err := cur.augmentationNode(a)
				if err != nil {
					return nil, err
				}
				steps = append(steps, binding.AugmentationStep{Type: an.typ})
				cur = an
				f = an.byQName[q]
			}
			switch f.kind {
			case fieldLeaf, fieldLeafList, fieldAnyXML:
				return nil, nil
			case fieldChoice:
				if i+1 == len(args) {
					return nil, nil
				}
				ch, err := c.choiceNode(f.schema, f.elem)
				if err != nil {
					return nil, err
				}
				nq := args[i+1].NodeType()
				e, ok := ch.byChild[nq]
				if !ok {
					return nil, c.unknownChild(nq, f.schema.String())
				}
				if cur, err = c.dataNode(e.schema, e.typ); err != nil {
					return nil, err
				}
				caseType = e.typ
				continue
			}
			s, elem = f.schema, f.elem
		}
		next, err := c.dataNode(s, elem)
		if err != nil {
			return nil, err
		}
		switch {
		case s.Kind == schema.KindList && next.key != nil:
			if i+1 == len(args) {
				return nil, nil
			}
			id, ok := args[i+1].(normalized.NodeIdentifierWithPredicates)
			if !ok {
				return nil, illegalArgument("expected key predicates for %s, got %s", q, args[i+1])
			}
			key, err := next.key.fromPredicates(id)
			if err != nil {
				return nil, err
			}
			steps = append(steps, binding.KeyStep{Type: elem, Key: key.Interface(), Case: caseType})
			i++
		case s.Kind == schema.KindList:
			if i+1 < len(args) {
				return nil, incorrectNesting("entries of unkeyed list %s cannot be addressed", q)
			}
			steps = append(steps, binding.NodeStep{Type: elem, Case: caseType})
		default:
			steps = append(steps, binding.NodeStep{Type: elem, Case: caseType})
		}
		caseType = nil
		cur = next
	}
	return binding.FromSteps(steps...), nil
}
