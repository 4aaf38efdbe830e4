package binding

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/maphash"
	"math"
	"reflect"
)

// Equal reports whether two binding values are equal: same types, equal
// field values and equal augmentation sets. Pointers are followed and nil
// and empty slices are equal. Unexported fields do not take part.
func Equal(a, b any) bool {
	return equalValue(reflect.ValueOf(a), reflect.ValueOf(b))
}

func equalValue(a, b reflect.Value) bool {
	if !a.IsValid() || !b.IsValid() {
		return a.IsValid() == b.IsValid()
	}
	if a.Type() != b.Type() {
		return false
	}
	if a.Type() == iidType {
		return a.Interface().(*InstanceIdentifier).Equal(b.Interface().(*InstanceIdentifier))
	}
	switch a.Kind() {
	case reflect.Pointer:
		if a.IsNil() || b.IsNil() {
			return a.IsNil() && b.IsNil()
		}
		if a.Pointer() == b.Pointer() {
			return true
		}
		return equalValue(a.Elem(), b.Elem())
	case reflect.Interface:
		if a.IsNil() || b.IsNil() {
			return a.IsNil() && b.IsNil()
		}
		return equalValue(a.Elem(), b.Elem())
	case reflect.Slice:
		if a.Len() != b.Len() {
			return false
		}
		if a.Type().Elem().Kind() == reflect.Uint8 {
			return bytes.Equal(a.Bytes(), b.Bytes())
		}
		for i := 0; i < a.Len(); i++ {
			if !equalValue(a.Index(i), b.Index(i)) {
				return false
			}
		}
		return true
	case reflect.Map:
		if a.Len() != b.Len() {
			return false
		}
		it := a.MapRange()
		for it.Next() {
			bv := b.MapIndex(it.Key())
			if !bv.IsValid() || !equalValue(it.Value(), bv) {
				return false
			}
		}
		return true
	case reflect.Struct:
		if a.Type() == augmentableType {
			return equalAugmentations(a, b)
		}
		for i := 0; i < a.NumField(); i++ {
			f := a.Type().Field(i)
			if !f.IsExported() && f.Type != augmentableType {
				continue
			}
			if !equalValue(a.Field(i), b.Field(i)) {
				return false
			}
		}
		return true
	case reflect.Float32, reflect.Float64:
		return a.Float() == b.Float()
	}
	if a.Type().Comparable() {
		return a.Equal(b)
	}
	return false
}

func equalAugmentations(a, b reflect.Value) bool {
	if !a.CanInterface() || !b.CanInterface() {
		return false
	}
	x, y := a.Interface().(Augmentable), b.Interface().(Augmentable)
	if len(x.augs) != len(y.augs) {
		return false
	}
	for t, v := range x.augs {
		w, ok := y.augs[t]
		if !ok || !Equal(v, w) {
			return false
		}
	}
	return true
}

var (
	hashSeed = maphash.MakeSeed()
	iidType  = reflect.TypeFor[*InstanceIdentifier]()
)

// Hash returns a hash consistent with Equal.
func Hash(v any) uint64 {
	var h maphash.Hash
	h.SetSeed(hashSeed)
	hashValue(&h, reflect.ValueOf(v))
	return h.Sum64()
}

func hashValue(h *maphash.Hash, v reflect.Value) {
	if !v.IsValid() {
		h.WriteByte(0)
		return
	}
	if v.Type() == iidType {
		h.WriteString(v.Interface().(*InstanceIdentifier).String())
		return
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			h.WriteByte(0)
			return
		}
		hashValue(h, v.Elem())
	case reflect.Slice:
		writeUint(h, uint64(v.Len()))
		if v.Type().Elem().Kind() == reflect.Uint8 {
			h.Write(v.Bytes())
			return
		}
		for i := 0; i < v.Len(); i++ {
			hashValue(h, v.Index(i))
		}
	case reflect.Map:
		hashMap(h, v)
	case reflect.Struct:
		h.WriteString(v.Type().String())
		if v.Type() == augmentableType {
			if v.CanInterface() {
				hashAugmentations(h, v.Interface().(Augmentable))
			}
			return
		}
		for i := 0; i < v.NumField(); i++ {
			f := v.Type().Field(i)
			if !f.IsExported() && f.Type != augmentableType {
				continue
			}
			hashValue(h, v.Field(i))
		}
	case reflect.String:
		h.WriteString(v.String())
	case reflect.Bool:
		if v.Bool() {
			h.WriteByte(1)
		} else {
			h.WriteByte(2)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		writeUint(h, uint64(v.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		writeUint(h, v.Uint())
	case reflect.Float32, reflect.Float64:
		writeUint(h, math.Float64bits(v.Float()))
	default:
		h.WriteString(v.Type().String())
	}
}

// hashMap sums entry hashes so that iteration order does not matter.
func hashMap(h *maphash.Hash, m reflect.Value) {
	var sum uint64
	it := m.MapRange()
	for it.Next() {
		var eh maphash.Hash
		eh.SetSeed(hashSeed)
		hashValue(&eh, it.Key())
		hashValue(&eh, it.Value())
		sum += eh.Sum64()
	}
	writeUint(h, sum)
	writeUint(h, uint64(m.Len()))
}

// hashAugmentations sums augmentation hashes; each hash covers the
// augmentation's struct type.
func hashAugmentations(h *maphash.Hash, a Augmentable) {
	var sum uint64
	for _, v := range a.augs {
		sum += Hash(v)
	}
	writeUint(h, sum)
	writeUint(h, uint64(len(a.augs)))
}

func writeUint(h *maphash.Hash, u uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], u)
	h.Write(b[:])
}

func formatScalar(v reflect.Value) string {
	v = reflect.Indirect(v)
	if !v.IsValid() {
		return "<nil>"
	}
	if v.CanInterface() {
		return fmt.Sprint(v.Interface())
	}
	return v.String()
}
