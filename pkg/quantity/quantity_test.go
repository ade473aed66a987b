package quantity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/stockmap/pkg/quantity"
)

func TestDisplay(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"0123", 0, true},
		{"1", 1, true},
		{"", 0, true},
		{"(6)(4)", 10, true},
		{"7", 7, true},
		{"  ( 6 ) (4) ", 10, true},
		{"(12)", 12, true},
		{"15", 1, true},
		{"0", 0, true},
		{"   ", 0, true},
		{"24", 24, true},
		{"S", 0, false},
		{"CASE", 0, false},
		{"(6)x", 0, false},
		{"-5", 0, false},
		{"-1", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := quantity.Display(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestInt(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"7", 7, true},
		{" 7 ", 7, true},
		{"7.0", 7, true},
		{"7.9", 7, true},
		{"-3", -3, true},
		{"1,250", 1250, true},
		{"", 0, false},
		{"Y", 0, false},
		{"NaN", 0, false},
		{"1e12", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := quantity.Int(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMappingSubstitute(t *testing.T) {
	letters := quantity.Mapping{"A": 20, "B": 5, "C": 0, "X": 0}
	assert.Equal(t, "20", letters.Substitute("A"))
	assert.Equal(t, "5", letters.Substitute(" B "))
	assert.Equal(t, "0", letters.Substitute("X"))
	assert.Equal(t, "Z", letters.Substitute("Z"))
	assert.Equal(t, "12", quantity.Mapping(nil).Substitute("12"))
}

func TestNumericCode(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"12345", "12345", true},
		{" 012345 ", "12345", true},
		{"12345.0", "12345", true},
		{"6.38060179E+11", "638060179000", true},
		{"000", "0", true},
		{"abc", "", false},
		{"123a", "", false},
		{"12.5", "", false},
		{"-1", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := quantity.NumericCode(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTextCode(t *testing.T) {
	got, ok := quantity.TextCode(" 0812345.0 ")
	assert.True(t, ok)
	assert.Equal(t, "0812345", got)

	got, ok = quantity.TextCode("MC-12.5")
	assert.True(t, ok)
	assert.Equal(t, "MC-12.5", got)

	_, ok = quantity.TextCode("  ")
	assert.False(t, ok)
}

func TestKey(t *testing.T) {
	tests := map[string]string{
		"012345678905":   "12345678905",
		" 12345678905 ":  "12345678905",
		"12345678905.0":  "12345678905",
		"6.38060179E+11": "638060179000",
		"B00ABC123":      "B00ABC123",
		" MC-12.5 ":      "MC-12.5",
		"":               "",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, quantity.Key(in))
		})
	}
}
