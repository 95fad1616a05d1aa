package httputil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIDValue(t *testing.T) {
	tests := []struct {
		name  string
		in    any
		id    uint
		state IDState
	}{
		{"nil", nil, 0, IDAbsent},
		{"empty string", "", 0, IDAbsent},
		{"blank string", "   ", 0, IDAbsent},
		{"zero number", json.Number("0"), 0, IDAbsent},
		{"zero string", "0", 0, IDAbsent},
		{"json number", json.Number("7"), 7, IDPositive},
		{"numeric string", " 12 ", 12, IDPositive},
		{"float integral", 5.0, 5, IDPositive},
		{"int", 3, 3, IDPositive},
		{"negative", json.Number("-2"), 0, IDInvalid},
		{"fraction", "1.5", 0, IDInvalid},
		{"text", "abc", 0, IDInvalid},
		{"bool", true, 0, IDInvalid},
		{"too large", json.Number("99999999999"), 0, IDInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, state := ParseIDValue(tt.in)
			assert.Equal(t, tt.state, state)
			assert.Equal(t, tt.id, id)
		})
	}
}
