package encode

import (
	"go.uber.org/zap"

	"github.com/opendaylight/yangtools-sub038/binfmt"
	"github.com/opendaylight/yangtools-sub038/config"
	"github.com/opendaylight/yangtools-sub038/logging"
	"github.com/opendaylight/yangtools-sub038/normalized"
	"github.com/opendaylight/yangtools-sub038/schema"
)

const (
	ContentTypeJSON   = "application/yang-data+json"
	ContentTypeCBOR   = "application/yang-data+cbor"
	ContentTypeProto  = "application/x-protobuf"
	ContentTypeBinary = "application/x-yang-binfmt"
)

// Codec marshals normalized trees to one format.
type Codec interface {
	ContentType() string
	Marshal(n normalized.Node) ([]byte, error)
	Unmarshal(data []byte) (normalized.Node, error)
}

type options struct {
	log     *zap.Logger
	version binfmt.Version
}

type Option func(*options)

func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithStreamVersion selects the generation the binary codec writes.
func WithStreamVersion(v binfmt.Version) Option {
	return func(o *options) { o.version = v }
}

// Registry maps content types to codecs.
type Registry struct {
	byType map[string]Codec
	order  []string
	log    *zap.Logger
}

// NewRegistry returns a registry holding the JSON, CBOR, protobuf and
// binary codecs for documents described by reg.
func NewRegistry(reg schema.Registry, opts ...Option) (*Registry, error) {
	o := &options{log: zap.NewNop(), version: binfmt.DefaultVersion}
	for _, opt := range opts {
		opt(o)
	}
	r := &Registry{byType: make(map[string]Codec), log: o.log}
	r.Register(JSON(reg))
	r.Register(Proto(reg))
	cb, err := CBOR(reg)
	if err != nil {
		return nil, err
	}
	r.Register(cb)
	bin, err := Binary(o.version, binfmt.WithLogger(o.log.Named("binfmt")))
	if err != nil {
		return nil, err
	}
	r.Register(bin)
	return r, nil
}

// FromConfig builds a registry logging and writing streams as configured.
func FromConfig(cfg *config.Config, reg schema.Registry, opts ...Option) (*Registry, error) {
	l, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	v, err := cfg.Stream.WriterVersion()
	if err != nil {
		return nil, err
	}
	base := []Option{WithLogger(l.Named("encode")), WithStreamVersion(v)}
	return NewRegistry(reg, append(base, opts...)...)
}

// Register adds c, replacing any codec of the same content type.
func (r *Registry) Register(c Codec) {
	ct := c.ContentType()
	if _, ok := r.byType[ct]; !ok {
		r.order = append(r.order, ct)
	}
	r.byType[ct] = c
	r.log.Debug("codec registered", zap.String("content_type", ct))
}

// Get returns the codec for contentType, or nil.
func (r *Registry) Get(contentType string) Codec {
	return r.byType[contentType]
}

// ContentTypes lists registered content types in registration order.
func (r *Registry) ContentTypes() []string {
	return append([]string(nil), r.order...)
}
