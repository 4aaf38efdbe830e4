package debug

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/opendaylight/yangtools-sub038/normalized"
)

// Colors maps the parts of a dumped tree to color functions.
type Colors struct {
	Name  func(string, ...any) string
	Kind  func(string, ...any) string
	Value func(string, ...any) string
	Key   func(string, ...any) string
}

// NewColors returns the terminal palette. fatih/color still drops the
// escapes when color.NoColor is set.
func NewColors() *Colors {
	return &Colors{
		Name:  color.RGB(128, 168, 196).SprintfFunc(),
		Kind:  color.RGB(74, 92, 138).SprintfFunc(),
		Value: color.RGB(8, 196, 16).SprintfFunc(),
		Key:   color.RGB(196, 96, 16).SprintfFunc(),
	}
}

func plain(s string, args ...any) string {
	if len(args) == 0 {
		return s
	}
	return fmt.Sprintf(s, args...)
}

// Plain returns colors which leave the text unchanged.
func Plain() *Colors {
	return &Colors{Name: plain, Kind: plain, Value: plain, Key: plain}
}

// Dump writes n to the trace output, colored when that is a terminal.
func Dump(n normalized.Node) {
	w := output()
	c := Plain()
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		c = NewColors()
	}
	_ = Fprint(w, n, c)
}

// Sprint renders n as an indented tree without colors.
func Sprint(n normalized.Node) string {
	var b strings.Builder
	_ = Fprint(&b, n, Plain())
	return b.String()
}

// Fprint renders n as an indented tree, one node per line.
func Fprint(w io.Writer, n normalized.Node, c *Colors) error {
	return fprint(w, n, c, 0)
}

func fprint(w io.Writer, n normalized.Node, c *Colors, depth int) error {
	indent := strings.Repeat("  ", depth)
	head := indent + c.Kind("%s", n.Kind()) + " " + c.Name("%s", name(n))
	switch x := n.(type) {
	case *normalized.Leaf:
		_, err := fmt.Fprintf(w, "%s = %s\n", head, c.Value("%s", normalized.FormatValue(x.Value())))
		return err
	case *normalized.LeafSetEntry:
		_, err := fmt.Fprintf(w, "%s = %s\n", head, c.Value("%s", normalized.FormatValue(x.Value())))
		return err
	case *normalized.AnyXML:
		_, err := fmt.Fprintf(w, "%s = %s\n", head, c.Value("%q", x.Body()))
		return err
	case *normalized.MapEntry:
		var keys []string
		for _, p := range x.Identifier().Predicates() {
			keys = append(keys, c.Key("%s", p.Key.LocalName())+"="+c.Value("%s", normalized.FormatValue(p.Value)))
		}
		if _, err := fmt.Fprintf(w, "%s [%s]\n", head, strings.Join(keys, " ")); err != nil {
			return err
		}
		return fprintKids(w, x.Children(), c, depth+1)
	}
	if _, err := fmt.Fprintln(w, head); err != nil {
		return err
	}
	return fprintKids(w, kids(n), c, depth+1)
}

func fprintKids(w io.Writer, kids []normalized.Node, c *Colors, depth int) error {
	for _, k := range kids {
		if err := fprint(w, k, c, depth); err != nil {
			return err
		}
	}
	return nil
}

func name(n normalized.Node) string {
	q := n.Name().NodeType()
	if q.IsZero() {
		return n.Name().String()
	}
	return q.LocalName()
}

func kids(n normalized.Node) []normalized.Node {
	switch x := n.(type) {
	case normalized.DataContainer:
		return x.Children()
	case *normalized.Map:
		out := make([]normalized.Node, 0, x.Len())
		for _, e := range x.Entries() {
			out = append(out, e)
		}
		return out
	case *normalized.UnkeyedList:
		out := make([]normalized.Node, 0, x.Len())
		for _, e := range x.Entries() {
			out = append(out, e)
		}
		return out
	case *normalized.LeafSet:
		out := make([]normalized.Node, 0, x.Len())
		for _, e := range x.Entries() {
			out = append(out, e)
		}
		return out
	}
	return nil
}
