package encode

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/opendaylight/yangtools-sub038/normalized"
	"github.com/opendaylight/yangtools-sub038/schema"
)

type protoCodec struct {
	mo proto.MarshalOptions
	uo proto.UnmarshalOptions
	r  renderer
	d  decoder
}

// Proto returns a codec carrying the document model in a
// google.protobuf.Struct. Numbers travel as doubles, which is exact for
// every integer the model does not already render as a string.
func Proto(reg schema.Registry) Codec {
	return protoCodec{
		mo: proto.MarshalOptions{Deterministic: true},
		r:  renderer{reg: reg},
		d:  decoder{reg: reg},
	}
}

func (protoCodec) ContentType() string { return ContentTypeProto }

func (c protoCodec) Marshal(n normalized.Node) ([]byte, error) {
	doc, err := c.r.document(n)
	if err != nil {
		return nil, err
	}
	s, err := structpb.NewStruct(plain(doc).(map[string]any))
	if err != nil {
		return nil, errorf("", err, "build struct")
	}
	return c.mo.Marshal(s)
}

func (c protoCodec) Unmarshal(data []byte) (normalized.Node, error) {
	var s structpb.Struct
	if err := c.uo.Unmarshal(data, &s); err != nil {
		return nil, errorf("", err, "decode protobuf")
	}
	return c.d.document(s.AsMap())
}
