package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNextReferenceID(t *testing.T) {
	march2025 := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	jan2026 := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		base     string
		now      time.Time
		existing []string
		expected string
	}{
		{
			name:     "First reference for a base",
			base:     "xyz",
			now:      march2025,
			existing: nil,
			expected: "xyz-2501",
		},
		{
			name:     "Sequence continues within a year",
			base:     "xyz",
			now:      march2025,
			existing: []string{"xyz-2501", "xyz-2502"},
			expected: "xyz-2503",
		},
		{
			name:     "Sequence restarts each year",
			base:     "xyz",
			now:      jan2026,
			existing: []string{"xyz-2501", "xyz-2599"},
			expected: "xyz-2601",
		},
		{
			name:     "Gaps do not reuse numbers",
			base:     "xyz",
			now:      march2025,
			existing: []string{"xyz-2501", "xyz-2507"},
			expected: "xyz-2508",
		},
		{
			name:     "Other bases are ignored",
			base:     "xyz",
			now:      march2025,
			existing: []string{"abc-2501", "abc-2502"},
			expected: "xyz-2501",
		},
		{
			name:     "Legacy free-form ids are ignored",
			base:     "xyz",
			now:      march2025,
			existing: []string{"xyz-old-ref", "xyz-2502"},
			expected: "xyz-2503",
		},
		{
			name:     "Sequence grows past two digits",
			base:     "xyz",
			now:      march2025,
			existing: []string{"xyz-25100"},
			expected: "xyz-25101",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NextReferenceID(tt.base, tt.now, tt.existing))
		})
	}
}

func TestIsValidReferenceID(t *testing.T) {
	assert.True(t, IsValidReferenceID("xyz-2501"))
	assert.True(t, IsValidReferenceID("xyz-25101"))
	assert.False(t, IsValidReferenceID("xyz-25"))
	assert.False(t, IsValidReferenceID("xyz-abc1"))
	assert.False(t, IsValidReferenceID("xyz2501"))
	assert.False(t, IsValidReferenceID("xyz-25-01"))
	// 2-digit years far in the future are legacy data, not sequences
	assert.False(t, IsValidReferenceID("xyz-9901"))
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Time
		wantErr  bool
	}{
		{input: "2025-03-10", expected: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)},
		{input: "2025-03-10 14:30:00", expected: time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)},
		{input: "10-03-2025", expected: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)},
		{input: "10/03/2025", wantErr: true},
		{input: "not a date", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			parsed, err := ParseDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.True(t, tt.expected.Equal(parsed))
		})
	}
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "10000.00", FormatMoney(decimal.NewFromInt(10000)))
	assert.Equal(t, "4000.50", FormatMoney(decimal.NewFromFloat(4000.5)))
	assert.Equal(t, "0.00", FormatMoney(decimal.Zero))
}
