package encode

import (
	"bytes"

	"github.com/opendaylight/yangtools-sub038/binfmt"
	"github.com/opendaylight/yangtools-sub038/normalized"
)

type binaryCodec struct {
	version binfmt.Version
	opts    []binfmt.Option
}

// Binary returns a codec writing one node per binfmt stream of version v.
// Any generation is read back.
func Binary(v binfmt.Version, opts ...binfmt.Option) (Codec, error) {
	if !v.Writable() {
		return nil, &binfmt.UnsupportedVersionError{Version: uint16(v)}
	}
	return binaryCodec{version: v, opts: opts}, nil
}

func (binaryCodec) ContentType() string { return ContentTypeBinary }

func (c binaryCodec) Marshal(n normalized.Node) ([]byte, error) {
	var buf bytes.Buffer
	w, err := binfmt.NewWriter(&buf, c.version, c.opts...)
	if err != nil {
		return nil, err
	}
	if err := w.WriteNode(n); err != nil {
		return nil, err
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c binaryCodec) Unmarshal(data []byte) (normalized.Node, error) {
	r, err := binfmt.NewReader(bytes.NewReader(data), c.opts...)
	if err != nil {
		return nil, err
	}
	return r.ReadNode()
}
