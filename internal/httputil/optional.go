package httputil

import (
	"encoding/json"
	"strings"
)

// OptionalString gönderilmeyen alanı açık null'dan ayırır.
type OptionalString struct {
	Set   bool
	Value *string
}

func (o *OptionalString) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// Trimmed kırpılmış değer; null veya boşsa nil.
func (o OptionalString) Trimmed() *string {
	return TrimmedPtr(o.Value)
}

func TrimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
