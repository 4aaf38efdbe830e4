package binfmt

import (
	"fmt"
	"strings"
)

// Version is the stream version token carried in the header.
type Version uint16

const (
	Lithium   Version = 1
	NeonSR2   Version = 2
	SodiumSR1 Version = 3
	Magnesium Version = 4
	Potassium Version = 5
)

// DefaultVersion is the generation written when none is configured.
const DefaultVersion = Potassium

// signature is the first byte of every stream.
const signature = 0xAB

var versionNames = map[Version]string{
	Lithium:   "lithium",
	NeonSR2:   "neon-sr2",
	SodiumSR1: "sodium-sr1",
	Magnesium: "magnesium",
	Potassium: "potassium",
}

func (v Version) String() string {
	if s, ok := versionNames[v]; ok {
		return s
	}
	return fmt.Sprintf("version(%d)", uint16(v))
}

// Known reports whether v is a generation this package can read.
func (v Version) Known() bool {
	_, ok := versionNames[v]
	return ok
}

// Writable reports whether streams of generation v can be written.
func (v Version) Writable() bool {
	return v == Magnesium || v == Potassium
}

// ParseVersion returns the generation named s. Names are case insensitive
// and underscores may stand for dashes.
func ParseVersion(s string) (Version, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	for v, n := range versionNames {
		if n == name {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown stream version %q", s)
}
