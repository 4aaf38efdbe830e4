package normalized

import (
	"bytes"
	"fmt"
	"math"
	"math/big"
	"slices"
	"strconv"
	"strings"

	"github.com/opendaylight/yangtools-sub038/qname"
)

// Empty is the value of a leaf of type empty.
type Empty struct{}

func (Empty) String() string { return "[empty]" }

// Decimal64 is a fixed point decimal: Unscaled * 10^-Scale.
type Decimal64 struct {
	Unscaled int64
	Scale    uint8
}

// ParseDecimal64 parses s keeping the given number of fraction digits.
func ParseDecimal64(s string, fractionDigits uint8) (Decimal64, error) {
	if fractionDigits < 1 || fractionDigits > 18 {
		return Decimal64{}, fmt.Errorf("fraction digits %d out of range", fractionDigits)
	}
	neg := strings.HasPrefix(s, "-")
	body := strings.TrimPrefix(s, "-")
	intPart, frac, _ := strings.Cut(body, ".")
	if intPart == "" || len(frac) > int(fractionDigits) {
		return Decimal64{}, fmt.Errorf("invalid decimal64 %q for %d fraction digits", s, fractionDigits)
	}
	frac += strings.Repeat("0", int(fractionDigits)-len(frac))
	u, err := strconv.ParseInt(intPart+frac, 10, 64)
	if err != nil {
		return Decimal64{}, fmt.Errorf("invalid decimal64 %q: %w", s, err)
	}
	if neg {
		u = -u
	}
	return Decimal64{Unscaled: u, Scale: fractionDigits}, nil
}

func (d Decimal64) String() string {
	if d.Scale == 0 {
		return strconv.FormatInt(d.Unscaled, 10)
	}
	u := d.Unscaled
	sign := ""
	if u < 0 {
		sign = "-"
	}
	var mag uint64
	if u == math.MinInt64 {
		mag = uint64(math.MaxInt64) + 1
	} else if u < 0 {
		mag = uint64(-u)
	} else {
		mag = uint64(u)
	}
	digits := strconv.FormatUint(mag, 10)
	if len(digits) <= int(d.Scale) {
		digits = strings.Repeat("0", int(d.Scale)-len(digits)+1) + digits
	}
	cut := len(digits) - int(d.Scale)
	return sign + digits[:cut] + "." + digits[cut:]
}

// Bits is the value of a leaf of type bits: the set of bit names which are
// set. NewBits keeps it sorted and free of duplicates.
type Bits []string

func NewBits(names ...string) Bits {
	b := slices.Clone(names)
	slices.Sort(b)
	return Bits(slices.Compact(b))
}

func (b Bits) Has(name string) bool {
	_, ok := slices.BinarySearch(b, name)
	return ok
}

func (b Bits) String() string {
	return strings.Join(b, " ")
}

// ValueEqual reports whether two leaf values are equal.
func ValueEqual(a, b any) bool {
	switch x := a.(type) {
	case []byte:
		y, ok := b.([]byte)
		return ok && bytes.Equal(x, y)
	case Bits:
		y, ok := b.(Bits)
		return ok && slices.Equal(x, y)
	case *big.Int:
		y, ok := b.(*big.Int)
		return ok && x.Cmp(y) == 0
	case InstanceIdentifier:
		y, ok := b.(InstanceIdentifier)
		return ok && x.Equal(y)
	case nil:
		return b == nil
	}
	switch b.(type) {
	case []byte, Bits, *big.Int, InstanceIdentifier:
		return false
	}
	return a == b
}

// FormatValue renders a leaf value for messages and identifier keys.
func FormatValue(v any) string {
	switch x := v.(type) {
	case string:
		return strconv.Quote(x)
	case []byte:
		return fmt.Sprintf("bin:%x", x)
	case Bits:
		return "bits:[" + x.String() + "]"
	case qname.QName:
		return x.String()
	case InstanceIdentifier:
		return "iid:" + x.String()
	case fmt.Stringer:
		return x.String()
	case nil:
		return "<nil>"
	}
	return fmt.Sprintf("%T:%v", v, v)
}
