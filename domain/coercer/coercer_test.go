package coercer

import (
	"testing"
	"time"

	"tableplot/domain/frame"
)

func TestCoerceValue_StringParsing(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	tests := []struct {
		name     string
		input    interface{}
		wantType frame.ValueType
	}{
		{"plain number", "42", frame.ValueTypeNumeric},
		{"negative float", "-3.25", frame.ValueTypeNumeric},
		{"thousands separator", "1,250,000", frame.ValueTypeNumeric},
		{"boolean yes", "yes", frame.ValueTypeBoolean},
		{"boolean false", "FALSE", frame.ValueTypeBoolean},
		{"rfc3339", "2024-06-01T12:00:00Z", frame.ValueTypeTimestamp},
		{"date only", "2024-06-01", frame.ValueTypeTimestamp},
		{"us date", "06/01/2024", frame.ValueTypeTimestamp},
		{"free text", "hello world", frame.ValueTypeString},
		{"empty string", "", frame.ValueTypeMissing},
		{"whitespace only", "   ", frame.ValueTypeMissing},
		{"na marker", "N/A", frame.ValueTypeMissing},
		{"null marker", "null", frame.ValueTypeMissing},
		{"dash marker", "-", frame.ValueTypeMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.CoerceValue(tt.input)
			if got.Type != tt.wantType {
				t.Errorf("CoerceValue(%q) type = %s, want %s", tt.input, got.Type, tt.wantType)
			}
		})
	}
}

func TestCoerceValue_TypedInputsSkipParsing(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	if v := c.CoerceValue(3.5); !v.IsNumeric() || v.AsFloat64() != 3.5 {
		t.Errorf("float64 input: got %+v", v)
	}
	if v := c.CoerceValue(int64(7)); !v.IsNumeric() || v.AsFloat64() != 7 {
		t.Errorf("int64 input: got %+v", v)
	}
	if v := c.CoerceValue(true); !v.IsBoolean() || !v.AsBoolean() {
		t.Errorf("bool input: got %+v", v)
	}
	ts := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	if v := c.CoerceValue(ts); !v.IsTimestamp() || !v.TimestampVal.Equal(ts) {
		t.Errorf("time input: got %+v", v)
	}
	if v := c.CoerceValue(nil); !v.IsMissing {
		t.Errorf("nil input: got %+v", v)
	}
	// Drivers hand text columns back as []byte
	if v := c.CoerceValue([]byte("12.5")); !v.IsNumeric() || v.AsFloat64() != 12.5 {
		t.Errorf("[]byte input: got %+v", v)
	}
}

func TestCoerceValue_NumericWinsOverBoolean(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	// "1" and "0" are numbers, not booleans: numeric parsing is tried first
	// and boolean markers are word forms only
	for _, s := range []string{"1", "0"} {
		if v := c.CoerceValue(s); !v.IsNumeric() {
			t.Errorf("CoerceValue(%q) = %s, want numeric", s, v.Type)
		}
	}
}

func TestAnalyzeTypeDistribution(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	tests := []struct {
		name   string
		values []interface{}
		want   frame.ValueType
	}{
		{
			name:   "clean numeric column",
			values: []interface{}{"1", "2", "3.5", "4"},
			want:   frame.ValueTypeNumeric,
		},
		{
			name:   "numeric with few bad cells",
			values: []interface{}{"1", "2", "3", "4", "5", "6", "7", "8", "9", "oops"},
			want:   frame.ValueTypeNumeric,
		},
		{
			name:   "mostly text",
			values: []interface{}{"red", "green", "blue", "7"},
			want:   frame.ValueTypeString,
		},
		{
			name:   "boolean column",
			values: []interface{}{"yes", "no", "yes", "yes"},
			want:   frame.ValueTypeBoolean,
		},
		{
			name:   "timestamp column",
			values: []interface{}{"2024-01-01", "2024-01-02", "2024-01-03"},
			want:   frame.ValueTypeTimestamp,
		},
		{
			name:   "all missing",
			values: []interface{}{"", nil, "N/A"},
			want:   frame.ValueTypeMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := c.AnalyzeTypeDistribution(tt.values)
			if analysis.RecommendedType != tt.want {
				t.Errorf("RecommendedType = %s, want %s (analysis: %+v)", analysis.RecommendedType, tt.want, analysis)
			}
		})
	}
}

func TestAnalyzeTypeDistribution_Counts(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	analysis := c.AnalyzeTypeDistribution([]interface{}{"1", "x", "", "2"})
	if analysis.TotalCount != 4 {
		t.Errorf("TotalCount = %d, want 4", analysis.TotalCount)
	}
	if analysis.ValidCount != 3 {
		t.Errorf("ValidCount = %d, want 3", analysis.ValidCount)
	}
	if analysis.NumericCount != 2 {
		t.Errorf("NumericCount = %d, want 2", analysis.NumericCount)
	}
}
