package layout

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/matzehuels/stackflex/pkg/errors"
)

// ToFloat converts a numeric attribute value to float64. Numeric strings are
// accepted so that values read from flags or YAML work unchanged. NaN and
// infinities, given as numbers or as strings like "NaN", fail with
// INVALID_DIMENSIONS.
func ToFloat(v any) (float64, error) {
	f, err := toFloat(v)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New(errors.ErrCodeInvalidDimensions, "%v is not a finite number", v)
	}
	return f, nil
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int8:
		return float64(x), nil
	case int16:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint:
		return float64(x), nil
	case uint8:
		return float64(x), nil
	case uint16:
		return float64(x), nil
	case uint32:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case json.Number:
		return x.Float64()
	case string:
		return strconv.ParseFloat(x, 64)
	case nil:
		return 0, fmt.Errorf("nil is not a number")
	}
	return 0, fmt.Errorf("%T is not a number", v)
}

// ToString converts an enumerated attribute value to a string.
func ToString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case fmt.Stringer:
		return x.String(), nil
	}
	return "", fmt.Errorf("%T is not a string", v)
}
