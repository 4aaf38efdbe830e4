package schema

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/opendaylight/yangtools-sub038/qname"
)

type document struct {
	Modules []moduleDoc `yaml:"modules"`
}

type moduleDoc struct {
	Name      string `yaml:"name"`
	Prefix    string `yaml:"prefix"`
	Namespace string `yaml:"namespace"`
	Revision  string `yaml:"revision,omitempty"`
	// Package prefixes binding names which carry no package path.
	Package string `yaml:"package,omitempty"`

	Data          []nodeDoc     `yaml:"data,omitempty"`
	RPCs          []nodeDoc     `yaml:"rpcs,omitempty"`
	Notifications []nodeDoc     `yaml:"notifications,omitempty"`
	Augments      []nodeDoc     `yaml:"augments,omitempty"`
	Identities    []identityDoc `yaml:"identities,omitempty"`
}

type nodeDoc struct {
	Container    string `yaml:"container,omitempty"`
	List         string `yaml:"list,omitempty"`
	Leaf         string `yaml:"leaf,omitempty"`
	LeafList     string `yaml:"leaf-list,omitempty"`
	Choice       string `yaml:"choice,omitempty"`
	Case         string `yaml:"case,omitempty"`
	AnyXML       string `yaml:"anyxml,omitempty"`
	RPC          string `yaml:"rpc,omitempty"`
	Action       string `yaml:"action,omitempty"`
	Notification string `yaml:"notification,omitempty"`
	Target       string `yaml:"target,omitempty"`

	Binding  string    `yaml:"binding,omitempty"`
	Key      []string  `yaml:"key,omitempty"`
	Ordered  bool      `yaml:"ordered,omitempty"`
	Type     *typeDoc  `yaml:"type,omitempty"`
	Children []nodeDoc `yaml:"children,omitempty"`
	Cases    []nodeDoc `yaml:"cases,omitempty"`
	Input    *nodeDoc  `yaml:"input,omitempty"`
	Output   *nodeDoc  `yaml:"output,omitempty"`
	Actions  []nodeDoc `yaml:"actions,omitempty"`
}

type typeDoc struct {
	Name           string    `yaml:"name"`
	Binding        string    `yaml:"binding,omitempty"`
	FractionDigits uint8     `yaml:"fraction-digits,omitempty"`
	Bits           []string  `yaml:"bits,omitempty"`
	Enum           []string  `yaml:"enum,omitempty"`
	Base           string    `yaml:"base,omitempty"`
	Members        []typeDoc `yaml:"members,omitempty"`
}

type identityDoc struct {
	Identity string   `yaml:"identity"`
	Base     []string `yaml:"base,omitempty"`
	Binding  string   `yaml:"binding,omitempty"`
}

// LoadFiles reads YAML descriptor files and builds a Context.
func LoadFiles(loader TypeLoader, paths ...string) (*Context, error) {
	docs := make([][]byte, 0, len(paths))
	for _, p := range paths {
		d, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("could not read schema %s: %w", p, err)
		}
		docs = append(docs, d)
	}
	return Load(loader, docs...)
}

// Load parses YAML descriptor documents and builds a Context. Prefixes
// used in augmentation targets, identity bases and identityref types may
// name any module of any of the documents.
func Load(loader TypeLoader, docs ...[]byte) (*Context, error) {
	var mods []moduleDoc
	for i, d := range docs {
		var doc document
		if err := yaml.UnmarshalWithOptions(d, &doc, yaml.DisallowUnknownField()); err != nil {
			return nil, &SchemaError{Message: fmt.Sprintf("document %d", i), Err: err}
		}
		mods = append(mods, doc.Modules...)
	}
	l := &loaderState{prefixes: make(map[string]qname.Module, len(mods))}
	for _, md := range mods {
		rev, err := qname.ParseRevision(md.Revision)
		if err != nil {
			return nil, &SchemaError{Name: md.Name, Message: "bad revision", Err: err}
		}
		if md.Prefix == "" {
			return nil, &SchemaError{Name: md.Name, Message: "module without a prefix"}
		}
		if _, dup := l.prefixes[md.Prefix]; dup {
			return nil, &SchemaError{Name: md.Name, Message: "duplicate prefix " + md.Prefix}
		}
		l.prefixes[md.Prefix] = qname.NewModule(md.Namespace, rev)
	}
	modules := make([]*Module, 0, len(mods))
	for _, md := range mods {
		m, err := l.module(md)
		if err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}
	return NewContext(loader, modules...)
}

type loaderState struct {
	prefixes map[string]qname.Module
	mod      qname.Module
	pkg      string
}

func (l *loaderState) module(md moduleDoc) (*Module, error) {
	l.mod = l.prefixes[md.Prefix]
	l.pkg = md.Package
	m := &Module{Name: md.Name, Prefix: md.Prefix, QName: l.mod}
	var err error
	if m.Data, err = l.nodes(md.Data); err != nil {
		return nil, err
	}
	if m.RPCs, err = l.nodes(md.RPCs); err != nil {
		return nil, err
	}
	if m.Notifications, err = l.nodes(md.Notifications); err != nil {
		return nil, err
	}
	if m.Augments, err = l.nodes(md.Augments); err != nil {
		return nil, err
	}
	for _, idd := range md.Identities {
		id := &Identity{QName: qname.Of(l.mod, idd.Identity), Binding: l.binding(idd.Binding)}
		for _, b := range idd.Base {
			q, err := l.qname(b)
			if err != nil {
				return nil, err
			}
			id.Bases = append(id.Bases, q)
		}
		m.Identities = append(m.Identities, id)
	}
	return m, nil
}

func (l *loaderState) nodes(docs []nodeDoc) ([]*Node, error) {
	out := make([]*Node, 0, len(docs))
	for i := range docs {
		n, err := l.node(&docs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (l *loaderState) node(d *nodeDoc) (*Node, error) {
	kinds := []struct {
		name string
		kind Kind
	}{
		{d.Container, KindContainer},
		{d.List, KindList},
		{d.Leaf, KindLeaf},
		{d.LeafList, KindLeafList},
		{d.Choice, KindChoice},
		{d.Case, KindCase},
		{d.AnyXML, KindAnyXML},
		{d.RPC, KindRPC},
		{d.Action, KindAction},
		{d.Notification, KindNotification},
	}
	n := &Node{Binding: l.binding(d.Binding), Ordered: d.Ordered}
	found := 0
	for _, k := range kinds {
		if k.name != "" {
			n.Kind = k.kind
			n.QName = qname.Of(l.mod, k.name)
			found++
		}
	}
	if d.Target != "" {
		n.Kind = KindAugmentation
		p, err := l.path(d.Target)
		if err != nil {
			return nil, err
		}
		n.Target = p
		found++
	}
	if found != 1 {
		return nil, &SchemaError{Message: fmt.Sprintf("node must have exactly one kind, found %d (binding %q)", found, d.Binding)}
	}
	for _, k := range d.Key {
		n.Keys = append(n.Keys, qname.Of(l.mod, k))
	}
	if d.Type != nil {
		t, err := l.typ(d.Type)
		if err != nil {
			return nil, &SchemaError{Name: n.QName.String(), Message: "bad type", Err: err}
		}
		n.Type = t
	}
	var err error
	src := d.Children
	if n.Kind == KindChoice {
		src = d.Cases
	}
	if n.Children, err = l.nodes(src); err != nil {
		return nil, err
	}
	if n.Kind == KindRPC || n.Kind == KindAction {
		if n.Input, err = l.operationData(d.Input, "input", KindInput); err != nil {
			return nil, err
		}
		if n.Output, err = l.operationData(d.Output, "output", KindOutput); err != nil {
			return nil, err
		}
	}
	if n.Actions, err = l.nodes(d.Actions); err != nil {
		return nil, err
	}
	return n, nil
}

func (l *loaderState) operationData(d *nodeDoc, local string, k Kind) (*Node, error) {
	if d == nil {
		return nil, nil
	}
	n := &Node{QName: qname.Of(l.mod, local), Kind: k, Binding: l.binding(d.Binding)}
	var err error
	if n.Children, err = l.nodes(d.Children); err != nil {
		return nil, err
	}
	return n, nil
}

func (l *loaderState) typ(d *typeDoc) (*Type, error) {
	k, ok := ParseTypeKind(d.Name)
	if !ok {
		return nil, fmt.Errorf("unknown type %q", d.Name)
	}
	t := &Type{Kind: k, Binding: l.binding(d.Binding), FractionDigits: d.FractionDigits, Bits: d.Bits, Enum: d.Enum}
	switch k {
	case TypeDecimal64:
		if t.FractionDigits < 1 || t.FractionDigits > 18 {
			return nil, fmt.Errorf("decimal64 needs fraction-digits in 1..18, got %d", t.FractionDigits)
		}
	case TypeIdentityRef:
		q, err := l.qname(d.Base)
		if err != nil {
			return nil, err
		}
		t.Base = q
	case TypeUnion:
		if len(d.Members) == 0 {
			return nil, fmt.Errorf("union without members")
		}
		for i := range d.Members {
			m, err := l.typ(&d.Members[i])
			if err != nil {
				return nil, err
			}
			t.Members = append(t.Members, m)
		}
	}
	return t, nil
}

// qname resolves "prefix:local", or a bare local name in the current module.
func (l *loaderState) qname(s string) (qname.QName, error) {
	prefix, local, ok := strings.Cut(s, ":")
	if !ok {
		return qname.Of(l.mod, s), nil
	}
	m, found := l.prefixes[prefix]
	if !found {
		return qname.QName{}, &SchemaError{Name: s, Message: "unknown prefix " + prefix, Err: ErrNotFound}
	}
	return qname.Of(m, local), nil
}

func (l *loaderState) path(s string) (Path, error) {
	var p Path
	for _, seg := range strings.Split(strings.Trim(s, "/"), "/") {
		q, err := l.qname(seg)
		if err != nil {
			return nil, err
		}
		p = append(p, q)
	}
	return p, nil
}

func (l *loaderState) binding(name string) string {
	if name == "" || l.pkg == "" || strings.Contains(name, "/") || strings.Contains(name, ".") {
		return name
	}
	return l.pkg + "." + name
}
