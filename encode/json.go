package encode

import (
	"bytes"

	json "github.com/goccy/go-json"

	"github.com/opendaylight/yangtools-sub038/normalized"
	"github.com/opendaylight/yangtools-sub038/schema"
)

type jsonCodec struct {
	r renderer
	d decoder
}

// JSON returns the RFC 7951 codec for documents described by reg.
func JSON(reg schema.Registry) Codec {
	return jsonCodec{r: renderer{reg: reg}, d: decoder{reg: reg}}
}

func (jsonCodec) ContentType() string { return ContentTypeJSON }

func (c jsonCodec) Marshal(n normalized.Node) ([]byte, error) {
	doc, err := c.r.document(n)
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

func (c jsonCodec) Unmarshal(data []byte) (normalized.Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, errorf("", err, "decode json")
	}
	return c.d.document(doc)
}
