package qname

import (
	"cmp"
	"errors"
	"fmt"
	"strings"
	"time"
	"unique"
)

var (
	ErrBadRevision = errors.New("bad revision")
	ErrBadQName    = errors.New("bad qname")
)

// Revision is a module revision date in YYYY-MM-DD form. The empty revision
// means the module has no revision.
type Revision string

// ParseRevision validates s as a revision date.
func ParseRevision(s string) (Revision, error) {
	if s == "" {
		return "", nil
	}
	if _, err := time.Parse(time.DateOnly, s); err != nil {
		return "", fmt.Errorf("%w %q: %w", ErrBadRevision, s, err)
	}
	return Revision(s), nil
}

// Module is a QNameModule: a namespace with an optional revision.
type Module struct {
	Namespace string
	Revision  Revision
}

// NewModule returns the module for the namespace and revision.
func NewModule(ns string, rev Revision) Module {
	return Module{Namespace: ns, Revision: rev}
}

func (m Module) String() string {
	if m.Revision == "" {
		return m.Namespace
	}
	return m.Namespace + "?revision=" + string(m.Revision)
}

// CompareModules orders modules by namespace, then revision.
func CompareModules(a, b Module) int {
	if c := strings.Compare(a.Namespace, b.Namespace); c != 0 {
		return c
	}
	return strings.Compare(string(a.Revision), string(b.Revision))
}

type key struct {
	module Module
	local  string
}

// QName is an interned qualified name. The zero QName is invalid and is
// reported by IsZero.
type QName struct {
	h unique.Handle[key]
}

// New returns the interned QName for the parts.
func New(ns string, rev Revision, local string) QName {
	return Of(Module{Namespace: ns, Revision: rev}, local)
}

// Of returns the interned QName for the module and local name.
func Of(m Module, local string) QName {
	return QName{h: unique.Make(key{module: m, local: local})}
}

// Create validates the parts before interning.
func Create(ns string, rev string, local string) (QName, error) {
	if ns == "" {
		return QName{}, fmt.Errorf("%w: empty namespace", ErrBadQName)
	}
	if local == "" || strings.ContainsAny(local, "()?:/ ") {
		return QName{}, fmt.Errorf("%w: invalid local name %q", ErrBadQName, local)
	}
	r, err := ParseRevision(rev)
	if err != nil {
		return QName{}, err
	}
	return New(ns, r, local), nil
}

func (q QName) IsZero() bool {
	return q == QName{}
}

func (q QName) Module() Module {
	if q.IsZero() {
		return Module{}
	}
	return q.h.Value().module
}

func (q QName) Namespace() string {
	return q.Module().Namespace
}

func (q QName) Revision() Revision {
	return q.Module().Revision
}

func (q QName) LocalName() string {
	if q.IsZero() {
		return ""
	}
	return q.h.Value().local
}

// WithLocal returns a QName in the same module with another local name.
func (q QName) WithLocal(local string) QName {
	return Of(q.Module(), local)
}

func (q QName) String() string {
	if q.IsZero() {
		return "<nil>"
	}
	k := q.h.Value()
	return "(" + k.module.String() + ")" + k.local
}

// Parse parses the text form produced by String.
func Parse(s string) (QName, error) {
	if !strings.HasPrefix(s, "(") {
		return QName{}, fmt.Errorf("%w: %q does not start with '('", ErrBadQName, s)
	}
	end := strings.LastIndexByte(s, ')')
	if end < 0 {
		return QName{}, fmt.Errorf("%w: %q has no ')'", ErrBadQName, s)
	}
	mod, local := s[1:end], s[end+1:]
	ns, rev, _ := strings.Cut(mod, "?revision=")
	return Create(ns, rev, local)
}

// MustParse is Parse for static names; it panics on error.
func MustParse(s string) QName {
	q, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return q
}

// Compare returns -1, 0 or +1 ordering a against b.
func Compare(a, b QName) int {
	if a == b {
		return 0
	}
	if c := CompareModules(a.Module(), b.Module()); c != 0 {
		return c
	}
	return cmp.Compare(a.LocalName(), b.LocalName())
}

// Less reports whether a sorts before b.
func Less(a, b QName) bool {
	return Compare(a, b) < 0
}
