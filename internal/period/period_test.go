package period

import (
	"testing"
	"time"

	"butce-backend/internal/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	d, _ := time.ParseInLocation(Layout, s, time.UTC)
	return d
}

func TestParse(t *testing.T) {
	r, err := Parse("2026-10-01", "2026-10-15")
	require.NoError(t, err)
	assert.Equal(t, date("2026-10-01"), *r.From)
	assert.Equal(t, date("2026-10-15"), *r.To)

	r, err = Parse("", "")
	require.NoError(t, err)
	assert.True(t, r.IsZero())

	_, err = Parse("15.10.2026", "")
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = Parse("2026-10-15", "2026-10-01")
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestPrevious(t *testing.T) {
	tests := []struct {
		name     string
		r        Range
		from, to string
	}{
		{"calendar month", Month(date("2026-03-10")), "2026-02-01", "2026-02-28"},
		{"january wraps year", Month(date("2026-01-20")), "2025-12-01", "2025-12-31"},
		{"ten days", Days(date("2026-10-06"), date("2026-10-15")), "2026-09-26", "2026-10-05"},
		{"single day", Days(date("2026-10-15"), date("2026-10-15")), "2026-10-14", "2026-10-14"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := tt.r.Previous()
			from, to := prev.Strings()
			assert.Equal(t, tt.from, from)
			assert.Equal(t, tt.to, to)
		})
	}

	assert.True(t, Range{}.Previous().IsZero())
}

func TestClosed(t *testing.T) {
	now := time.Date(2026, 10, 15, 13, 45, 0, 0, time.UTC)

	from, to := Range{}.Closed(now).Strings()
	assert.Equal(t, "2026-10-01", from)
	assert.Equal(t, "2026-10-31", to)

	start := date("2026-10-05")
	from, to = Range{From: &start}.Closed(now).Strings()
	assert.Equal(t, "2026-10-05", from)
	assert.Equal(t, "2026-10-15", to)

	end := date("2026-09-20")
	from, to = Range{To: &end}.Closed(now).Strings()
	assert.Equal(t, "2026-09-01", from)
	assert.Equal(t, "2026-09-20", to)
}
