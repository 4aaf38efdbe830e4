package binfmt

import (
	"github.com/opendaylight/yangtools-sub038/normalized"
	"github.com/opendaylight/yangtools-sub038/qname"
)

// atomEncoder writes the values, names and path arguments of one stream
// generation. Write errors stick in the underlying dataOutput; the returned
// errors report values the generation cannot encode.
type atomEncoder interface {
	writeQName(q qname.QName)
	writePathArgument(arg normalized.PathArgument) error
	writeInstanceIdentifier(id normalized.InstanceIdentifier) error
	writeValue(v any) error
}

type atomDecoder interface {
	readQName() (qname.QName, error)
	readPathArgument() (normalized.PathArgument, error)
	readInstanceIdentifier() (normalized.InstanceIdentifier, error)
	readValue() (any, error)
}

// nodeDecoder replays one encoded node as stream events.
type nodeDecoder interface {
	readNode(w normalized.StreamWriter) error
}

func newQName(m qname.Module, local string) (qname.QName, error) {
	q, err := qname.Create(m.Namespace, string(m.Revision), local)
	if err != nil {
		return qname.QName{}, &InvalidStreamError{Msg: "Illegal QName module=" + m.String() + " localName=" + local, Err: err}
	}
	return q, nil
}

func newModule(ns, rev string) (qname.Module, error) {
	r, err := qname.ParseRevision(rev)
	if err != nil || ns == "" {
		return qname.Module{}, &InvalidStreamError{Msg: "Illegal QNameModule ns=" + ns + " rev=" + rev, Err: err}
	}
	return qname.NewModule(ns, r), nil
}

// readText reads a string value, as carried by anyxml nodes.
func readText(atoms atomDecoder) (string, error) {
	v, err := atoms.readValue()
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", invalidf("Expected a string value, got %s", normalized.FormatValue(v))
	}
	return s, nil
}
