package nimbus

import "math"

// The atlas stores samples as IEEE 754 half-precision bit patterns to halve
// the memory footprint of time-varying fields. Conversion rounds to nearest
// even; values beyond the half range saturate to +/-Inf.

func halfFromFloat32(f float32) uint16 {
	bits := math.Float32bits(f)
	sign := uint16(bits>>16) & 0x8000
	exp := int32(bits>>23) & 0xff
	mant := bits & 0x7fffff

	switch {
	case exp == 0xff: // Inf / NaN
		if mant != 0 {
			return sign | 0x7e00
		}
		return sign | 0x7c00
	case exp > 142: // overflow -> Inf
		return sign | 0x7c00
	case exp < 103: // too small even for a subnormal
		return sign
	case exp < 113: // subnormal half
		mant |= 0x800000
		shift := uint32(126 - exp)
		half := uint16(mant >> shift)
		// Round to nearest even
		round := mant & ((1 << shift) - 1)
		mid := uint32(1) << (shift - 1)
		if round > mid || (round == mid && half&1 == 1) {
			half++
		}
		return sign | half
	}

	half := sign | uint16((exp-112)<<10) | uint16(mant>>13)
	round := mant & 0x1fff
	if round > 0x1000 || (round == 0x1000 && half&1 == 1) {
		half++
	}
	return half
}

func halfToFloat32(h uint16) float32 {
	sign := uint32(h&0x8000) << 16
	exp := uint32(h>>10) & 0x1f
	mant := uint32(h & 0x3ff)

	switch {
	case exp == 0x1f:
		if mant != 0 {
			return math.Float32frombits(sign | 0x7fc00000)
		}
		return math.Float32frombits(sign | 0x7f800000)
	case exp == 0:
		if mant == 0 {
			return math.Float32frombits(sign)
		}
		// Normalize the subnormal
		for mant&0x400 == 0 {
			mant <<= 1
			exp--
		}
		mant &= 0x3ff
		exp++
	}

	return math.Float32frombits(sign | (exp+112)<<23 | mant<<13)
}
