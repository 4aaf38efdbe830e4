package encode

import (
	"reflect"

	cbor "github.com/fxamacker/cbor/v2"

	"github.com/opendaylight/yangtools-sub038/normalized"
	"github.com/opendaylight/yangtools-sub038/schema"
)

type cborCodec struct {
	enc cbor.EncMode
	dec cbor.DecMode
	r   renderer
	d   decoder
}

// CBOR returns a codec writing the document model as canonical CBOR.
func CBOR(reg schema.Registry) (Codec, error) {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, err
	}
	dm, err := cbor.DecOptions{DefaultMapType: reflect.TypeFor[map[string]any]()}.DecMode()
	if err != nil {
		return nil, err
	}
	return cborCodec{enc: em, dec: dm, r: renderer{reg: reg}, d: decoder{reg: reg}}, nil
}

func (cborCodec) ContentType() string { return ContentTypeCBOR }

func (c cborCodec) Marshal(n normalized.Node) ([]byte, error) {
	doc, err := c.r.document(n)
	if err != nil {
		return nil, err
	}
	return c.enc.Marshal(plain(doc))
}

func (c cborCodec) Unmarshal(data []byte) (normalized.Node, error) {
	var doc map[string]any
	if err := c.dec.Unmarshal(data, &doc); err != nil {
		return nil, errorf("", err, "decode cbor")
	}
	return c.d.document(doc)
}
