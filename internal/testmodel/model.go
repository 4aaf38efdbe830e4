// Package testmodel is a small schema with binding types used by tests
// across the module. It covers every node kind and leaf type the codec
// supports.
package testmodel

import (
	_ "embed"
	"fmt"
	"reflect"

	"github.com/opendaylight/yangtools-sub038/binding"
	"github.com/opendaylight/yangtools-sub038/normalized"
	"github.com/opendaylight/yangtools-sub038/qname"
	"github.com/opendaylight/yangtools-sub038/schema"
)

//go:embed schema.yaml
var schemaYAML []byte

// Module namespaces and revisions.
var (
	TopModule = qname.NewModule("urn:test:top", "2024-01-01")
	AugModule = qname.NewModule("urn:test:aug", "2024-02-01")
	ZModule   = qname.NewModule("urn:test:z", "")
	AModule   = qname.NewModule("urn:test:a", "")
)

// Q returns a QName of the test-top module.
func Q(local string) qname.QName { return qname.Of(TopModule, local) }

// AugQ returns a QName of the test-aug module.
func AugQ(local string) qname.QName { return qname.Of(AugModule, local) }

// Schema returns the raw descriptor document.
func Schema() []byte { return schemaYAML }

// Types lists every binding type of the model.
func Types() []reflect.Type {
	return []reflect.Type{
		reflect.TypeFor[Top](),
		reflect.TypeFor[Inner](),
		reflect.TypeFor[Item](),
		reflect.TypeFor[Detail](),
		reflect.TypeFor[Stage](),
		reflect.TypeFor[LogEntry](),
		reflect.TypeFor[FastCase](),
		reflect.TypeFor[SlowCase](),
		reflect.TypeFor[MediumCase](),
		reflect.TypeFor[Throttle](),
		reflect.TypeFor[AugACase](),
		reflect.TypeFor[AugBCase](),
		reflect.TypeFor[Shared](),
		reflect.TypeFor[TopAug](),
		reflect.TypeFor[Extras](),
		reflect.TypeFor[ItemAug](),
		reflect.TypeFor[ResetInput](),
		reflect.TypeFor[ResetOutput](),
		reflect.TypeFor[PingInput](),
		reflect.TypeFor[PingOutput](),
		reflect.TypeFor[Alarm](),
		reflect.TypeFor[AlarmSource](),
		reflect.TypeFor[InterfaceType](),
		reflect.TypeFor[Ethernet](),
		reflect.TypeFor[Loopback](),
	}
}

// NewTypeRegistry returns a registry holding Types.
func NewTypeRegistry() *binding.TypeRegistry {
	r, err := binding.NewTypeRegistry(Types()...)
	if err != nil {
		panic(err)
	}
	return r
}

// Load builds the schema context with the given loader.
func Load(loader schema.TypeLoader) (*schema.Context, error) {
	return schema.Load(loader, schemaYAML)
}

// MustLoad builds the schema context over a registry of every model type.
func MustLoad() *schema.Context {
	c, err := Load(NewTypeRegistry())
	if err != nil {
		panic(fmt.Sprintf("testmodel: %v", err))
	}
	return c
}

func Ptr[T any](v T) *T { return &v }

type Top struct {
	binding.Augmentable

	Name        *string                     `yang:"name"`
	Count       *uint32                     `yang:"count"`
	Ratio       *normalized.Decimal64       `yang:"ratio"`
	Enabled     *bool                       `yang:"enabled"`
	Flag        *normalized.Empty           `yang:"flag"`
	Blob        []byte                      `yang:"blob"`
	Color       *Color                      `yang:"color"`
	Perms       *Perms                      `yang:"perms"`
	Kind        binding.Identity            `yang:"kind"`
	Address     *Address                    `yang:"address"`
	Ref         *binding.InstanceIdentifier `yang:"ref"`
	Description *Description                `yang:"description"`
	Tags        []string                    `yang:"tag"`
	Priorities  []uint8                     `yang:"priority"`
	Data        *string                     `yang:"data"`
	Inner       *Inner                      `yang:"inner"`
	Items       []*Item                     `yang:"item"`
	Stages      []*Stage                    `yang:"stage"`
	Log         []*LogEntry                 `yang:"log"`
	Mode        Mode                        `yang:"mode"`
	Grouped     GroupingChoice              `yang:"grouping-choice"`
}

type Description string

type Color int

const (
	ColorRed Color = iota
	ColorGreen
	ColorBlue
)

var colorNames = []string{"red", "green", "blue"}

func (c Color) String() string {
	if int(c) < len(colorNames) {
		return colorNames[c]
	}
	return fmt.Sprintf("Color(%d)", int(c))
}

func (c Color) MarshalText() ([]byte, error) {
	if int(c) >= len(colorNames) || c < 0 {
		return nil, fmt.Errorf("invalid color %d", int(c))
	}
	return []byte(colorNames[c]), nil
}

func (c *Color) UnmarshalText(b []byte) error {
	for i, n := range colorNames {
		if n == string(b) {
			*c = Color(i)
			return nil
		}
	}
	return fmt.Errorf("invalid color %q", b)
}

type Perms struct {
	Read  bool `yang:"read"`
	Write bool `yang:"write"`
	Exec  bool `yang:"exec"`
}

// Address is a union of a port number, an address mode and a host name.
type Address struct {
	Port *int32       `yang:"port"`
	Mode *AddressMode `yang:"mode"`
	Host *string      `yang:"host"`
}

type AddressMode string

const (
	AddressAuto   AddressMode = "auto"
	AddressManual AddressMode = "manual"
)

type Inner struct {
	Value       *string      `yang:"value"`
	Description *Description `yang:"description"`
}

type Item struct {
	binding.Augmentable

	Name   *string `yang:"name"`
	Value  *int32  `yang:"value"`
	Detail *Detail `yang:"detail"`
}

type ItemKey struct {
	Name string `yang:"name"`
}

func (e *Item) Key() ItemKey {
	return ItemKey{Name: *binding.NonNull(e.Name)}
}

type Detail struct {
	Note *string `yang:"note"`
}

type Stage struct {
	ID    *uint16 `yang:"id"`
	Label *string `yang:"label"`
}

type StageKey struct {
	ID uint16 `yang:"id"`
}

func (e *Stage) Key() StageKey {
	return StageKey{ID: *binding.NonNull(e.ID)}
}

type LogEntry struct {
	Line *string `yang:"line"`
}

// Mode is the mode choice.
type Mode interface{ isMode() }

type FastCase struct {
	Speed *uint32 `yang:"speed"`
}

type SlowCase struct {
	Throttle *Throttle `yang:"throttle"`
}

type Throttle struct {
	Rate *int32 `yang:"rate"`
}

// MediumCase is added to the mode choice by test-aug.
type MediumCase struct {
	Level *int8 `yang:"level"`
}

// LegacyFastCase has the fields of FastCase but no schema binding.
type LegacyFastCase struct {
	Speed *uint32 `yang:"speed"`
}

func (*FastCase) isMode()       {}
func (*SlowCase) isMode()       {}
func (*MediumCase) isMode()     {}
func (*LegacyFastCase) isMode() {}

// GroupingChoice only has cases added by augmentations. Both cases hold a
// container of type Shared.
type GroupingChoice interface{ isGroupingChoice() }

type AugACase struct {
	Shared *Shared `yang:"shared"`
}

type AugBCase struct {
	Shared *Shared `yang:"shared"`
}

type Shared struct {
	ID *string `yang:"id"`
}

func (*AugACase) isGroupingChoice() {}
func (*AugBCase) isGroupingChoice() {}

type TopAug struct {
	Extra  *string `yang:"extra"`
	Extras *Extras `yang:"extras"`
}

type Extras struct {
	Note *string `yang:"note"`
}

type ItemAug struct {
	Weight *uint16 `yang:"weight"`
}

type ResetInput struct {
	Delay *uint32 `yang:"delay"`
}

type ResetOutput struct {
	OK *bool `yang:"ok"`
}

type PingInput struct {
	Host *string `yang:"host"`
}

type PingOutput struct {
	RTT *uint32 `yang:"rtt"`
}

type Alarm struct {
	Severity *uint8       `yang:"severity"`
	Source   *AlarmSource `yang:"source"`
}

type AlarmSource struct {
	ID *string `yang:"id"`
}

type InterfaceType struct{ binding.BaseIdentity }
type Ethernet struct{ binding.BaseIdentity }
type Loopback struct{ binding.BaseIdentity }
