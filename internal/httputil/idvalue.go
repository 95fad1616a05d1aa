package httputil

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

type IDState int

const (
	IDAbsent IDState = iota
	IDPositive
	IDInvalid
)

var maxID = decimal.NewFromInt(math.MaxUint32)

// ParseIDValue gevşek tipli JSON id'yi sınıflandırır. null, "" ve 0 yok
// sayılır; pozitif tam sayı (sayı veya metin) kabul edilir.
func ParseIDValue(v any) (uint, IDState) {
	var s string
	switch x := v.(type) {
	case nil:
		return 0, IDAbsent
	case json.Number:
		s = x.String()
	case string:
		s = x
	case float64:
		s = strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		s = strconv.Itoa(x)
	case int64:
		s = strconv.FormatInt(x, 10)
	case uint:
		s = strconv.FormatUint(uint64(x), 10)
	default:
		return 0, IDInvalid
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return 0, IDAbsent
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, IDInvalid
	}
	if d.IsZero() {
		return 0, IDAbsent
	}
	if !d.IsPositive() || !d.IsInteger() || d.GreaterThan(maxID) {
		return 0, IDInvalid
	}
	return uint(d.IntPart()), IDPositive
}
