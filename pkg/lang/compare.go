package lang

import "fmt"

// Equal reports whether two values are the same fact. Ints and decimals
// compare numerically across kinds.
func Equal(a Value, b Value) bool {
	if an, aOK := numeric(a); aOK {
		bn, bOK := numeric(b)
		return bOK && an == bn
	}
	switch av := a.(type) {
	case *VString:
		bv, ok := b.(*VString)
		return ok && *av == *bv
	case *VBool:
		bv, ok := b.(*VBool)
		return ok && *av == *bv
	case *VDate:
		bv, ok := b.(*VDate)
		return ok && av.Time().Equal(bv.Time())
	}
	return false
}

// Compare orders two values: -1, 0, or 1. Numerics compare across int
// and decimal; strings lexically; dates chronologically. Bools and
// mixed kinds don't order.
func Compare(a Value, b Value) (int, error) {
	if an, aOK := numeric(a); aOK {
		bn, bOK := numeric(b)
		if !bOK {
			return 0, fmt.Errorf("can't compare %s with %s", a.GetType(), b.GetType())
		}
		return sign(an - bn), nil
	}
	switch av := a.(type) {
	case *VString:
		if bv, ok := b.(*VString); ok {
			switch {
			case *av < *bv:
				return -1, nil
			case *av > *bv:
				return 1, nil
			}
			return 0, nil
		}
	case *VDate:
		if bv, ok := b.(*VDate); ok {
			switch {
			case av.Time().Before(bv.Time()):
				return -1, nil
			case av.Time().After(bv.Time()):
				return 1, nil
			}
			return 0, nil
		}
	}
	return 0, fmt.Errorf("can't compare %s with %s", a.GetType(), b.GetType())
}

func numeric(v Value) (float64, bool) {
	switch tv := v.(type) {
	case *VInt:
		return float64(*tv), true
	case *VDecimal:
		return float64(*tv), true
	}
	return 0, false
}

func sign(f float64) int {
	switch {
	case f < 0:
		return -1
	case f > 0:
		return 1
	}
	return 0
}
