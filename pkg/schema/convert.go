package schema

import (
	"encoding/json"
	"math"
	"strconv"
)

const (
	minInt32  = math.MinInt32
	maxInt32  = math.MaxInt32
	maxUint32 = math.MaxUint32
)

// signedOf widens any Go integer, json.Number or integral float to int64
func signedOf(v any, t Type) (int64, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case uint:
		return unsignedToSigned(uint64(x), v, t)
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint64:
		return unsignedToSigned(x, v, t)
	case json.Number:
		n, err := strconv.ParseInt(string(x), 10, 64)
		if err != nil {
			return 0, ErrTypeMismatch.Wrap(err, v, t.String())
		}
		return n, nil
	case float64:
		// 2^63 is exactly representable and already out of range
		if x != math.Trunc(x) || x < math.MinInt64 || x >= math.MaxInt64 {
			return 0, ErrValueRange.New(v, t.String())
		}
		return int64(x), nil
	default:
		return 0, ErrTypeMismatch.New(v, t.String())
	}
}

func unsignedToSigned(u uint64, v any, t Type) (int64, error) {
	if u > math.MaxInt64 {
		return 0, ErrValueRange.New(v, t.String())
	}
	return int64(u), nil
}

// unsignedOf converts any non-negative Go integer, json.Number or integral
// float to uint64
func unsignedOf(v any, t Type) (uint64, error) {
	switch x := v.(type) {
	case uint:
		return uint64(x), nil
	case uint8:
		return uint64(x), nil
	case uint16:
		return uint64(x), nil
	case uint32:
		return uint64(x), nil
	case uint64:
		return x, nil
	case int, int8, int16, int32, int64:
		n, _ := signedOf(x, t)
		if n < 0 {
			return 0, ErrValueRange.New(v, t.String())
		}
		return uint64(n), nil
	case json.Number:
		n, err := strconv.ParseUint(string(x), 10, 64)
		if err != nil {
			return 0, ErrTypeMismatch.Wrap(err, v, t.String())
		}
		return n, nil
	case float64:
		if x != math.Trunc(x) || x < 0 || x >= math.MaxUint64 {
			return 0, ErrValueRange.New(v, t.String())
		}
		return uint64(x), nil
	default:
		return 0, ErrTypeMismatch.New(v, t.String())
	}
}
