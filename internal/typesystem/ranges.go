package typesystem

import "math/big"

type intRange struct {
	kind PrimitiveKind
	min  *big.Int
	max  *big.Int
}

func newRange(kind PrimitiveKind, min, max string) intRange {
	lo, _ := new(big.Int).SetString(min, 10)
	hi, _ := new(big.Int).SetString(max, 10)
	return intRange{kind: kind, min: lo, max: hi}
}

// Ordered narrowest-first so the head of a candidate list is the default
// inferred type for an unconstrained literal.
var signedRanges = []intRange{
	newRange(I8, "-128", "127"),
	newRange(I16, "-32768", "32767"),
	newRange(I32, "-2147483648", "2147483647"),
	newRange(I64, "-9223372036854775808", "9223372036854775807"),
}

var unsignedRanges = []intRange{
	newRange(U8, "0", "255"),
	newRange(U16, "0", "65535"),
	newRange(U32, "0", "4294967295"),
	newRange(U64, "0", "18446744073709551615"),
}

// IntegerCandidates returns every finite integer type that can hold the
// literal value, signed types first. An empty result means the literal fits
// no builtin integer type.
func IntegerCandidates(value *big.Int) []Primitive {
	var out []Primitive
	for _, r := range signedRanges {
		if value.Cmp(r.min) >= 0 && value.Cmp(r.max) <= 0 {
			out = append(out, Primitive{Kind: r.kind})
		}
	}
	for _, r := range unsignedRanges {
		if value.Cmp(r.min) >= 0 && value.Cmp(r.max) <= 0 {
			out = append(out, Primitive{Kind: r.kind})
		}
	}
	return out
}

// IntegerFits reports whether value is representable in the given type.
func IntegerFits(value *big.Int, p Primitive) bool {
	for _, r := range signedRanges {
		if r.kind == p.Kind {
			return value.Cmp(r.min) >= 0 && value.Cmp(r.max) <= 0
		}
	}
	for _, r := range unsignedRanges {
		if r.kind == p.Kind {
			return value.Cmp(r.min) >= 0 && value.Cmp(r.max) <= 0
		}
	}
	return false
}

// IntegerBounds returns the inclusive range of a finite integer type as
// decimal strings for diagnostics.
func IntegerBounds(p Primitive) (string, string) {
	for _, r := range signedRanges {
		if r.kind == p.Kind {
			return r.min.String(), r.max.String()
		}
	}
	for _, r := range unsignedRanges {
		if r.kind == p.Kind {
			return r.min.String(), r.max.String()
		}
	}
	return "", ""
}

const (
	maxF32 = 3.402823466e38
	maxF64 = 1.7976931348623157e308
)

// FloatCandidates returns the float types able to hold the literal,
// narrowest first.
func FloatCandidates(value float64) []Primitive {
	var out []Primitive
	if value >= -maxF32 && value <= maxF32 {
		out = append(out, Primitive{Kind: F32})
	}
	if value >= -maxF64 && value <= maxF64 {
		out = append(out, Primitive{Kind: F64})
	}
	return out
}

// FloatFits reports whether value is representable in the given float type.
func FloatFits(value float64, p Primitive) bool {
	switch p.Kind {
	case F32:
		return value >= -maxF32 && value <= maxF32
	case F64:
		return value >= -maxF64 && value <= maxF64
	}
	return false
}
