package sources

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CellString renders a value scanned from a database or spreadsheet as the
// raw text the normalizer expects.
func CellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format(time.DateOnly)
		}
		return x.Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	case driver.Valuer:
		dv, err := x.Value()
		if err != nil {
			return ""
		}
		return CellString(dv)
	case fmt.Stringer:
		return x.String()
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

// CellStrings applies CellString to a whole row.
func CellStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = CellString(v)
	}
	return out
}
