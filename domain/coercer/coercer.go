package coercer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"tableplot/domain/frame"
)

// TypeCoercer handles deterministic type coercion with versioned rules
type TypeCoercer struct {
	config CoercionConfig
}

// CoercionConfig defines the coercion thresholds and rules
type CoercionConfig struct {
	NumericThreshold   float64 `json:"numeric_threshold"`   // % of values that must parse as numbers
	BooleanThreshold   float64 `json:"boolean_threshold"`   // % of values that must parse as booleans
	TimestampThreshold float64 `json:"timestamp_threshold"` // % of values that must parse as timestamps
	NormalizeStrings   bool    `json:"normalize_strings"`   // Whether to trim strings before parsing
}

// DefaultCoercionConfig returns sensible defaults
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NumericThreshold:   0.8, // 80% must parse as numbers
		BooleanThreshold:   0.9, // 90% must parse as booleans
		TimestampThreshold: 0.8, // 80% must parse as timestamps
		NormalizeStrings:   true,
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	return &TypeCoercer{config: config}
}

// CoerceValue deterministically converts an unknown value to a typed Value
func (c *TypeCoercer) CoerceValue(rawValue interface{}) frame.Value {
	if rawValue == nil {
		return frame.NewMissingValue()
	}

	// Values that already carry a type skip string parsing entirely
	switch v := rawValue.(type) {
	case frame.Value:
		return v
	case float64:
		return frame.NewNumericValue(v)
	case float32:
		return frame.NewNumericValue(float64(v))
	case int:
		return frame.NewNumericValue(float64(v))
	case int8:
		return frame.NewNumericValue(float64(v))
	case int16:
		return frame.NewNumericValue(float64(v))
	case int32:
		return frame.NewNumericValue(float64(v))
	case int64:
		return frame.NewNumericValue(float64(v))
	case uint:
		return frame.NewNumericValue(float64(v))
	case uint8:
		return frame.NewNumericValue(float64(v))
	case uint16:
		return frame.NewNumericValue(float64(v))
	case uint32:
		return frame.NewNumericValue(float64(v))
	case uint64:
		return frame.NewNumericValue(float64(v))
	case bool:
		return frame.NewBooleanValue(v)
	case time.Time:
		return frame.NewTimestampValue(v)
	case []byte:
		return c.coerceString(string(v))
	case string:
		return c.coerceString(v)
	}

	return c.coerceString(fmt.Sprintf("%v", rawValue))
}

// coerceString parses an untyped string value, trying the most restrictive
// types first.
func (c *TypeCoercer) coerceString(strVal string) frame.Value {
	if c.config.NormalizeStrings {
		strVal = strings.TrimSpace(strVal)
	}
	if strVal == "" || isMissingMarker(strVal) {
		return frame.NewMissingValue()
	}

	if numericVal, ok := tryParseNumeric(strVal); ok {
		return frame.NewNumericValue(numericVal)
	}
	if boolVal, ok := tryParseBoolean(strVal); ok {
		return frame.NewBooleanValue(boolVal)
	}
	if tsVal, ok := tryParseTimestamp(strVal); ok {
		return frame.NewTimestampValue(tsVal)
	}

	return frame.NewStringValue(strVal)
}

// TypeAnalysis summarizes how well a sample of values fits each type
type TypeAnalysis struct {
	TotalCount      int             `json:"total_count"`
	ValidCount      int             `json:"valid_count"`
	NumericCount    int             `json:"numeric_count"`
	BooleanCount    int             `json:"boolean_count"`
	TimestampCount  int             `json:"timestamp_count"`
	NumericRatio    float64         `json:"numeric_ratio"`
	BooleanRatio    float64         `json:"boolean_ratio"`
	TimestampRatio  float64         `json:"timestamp_ratio"`
	RecommendedType frame.ValueType `json:"recommended_type"`
}

// AnalyzeTypeDistribution analyzes a sample to determine the best type
// coercion strategy for a column.
func (c *TypeCoercer) AnalyzeTypeDistribution(values []interface{}) TypeAnalysis {
	analysis := TypeAnalysis{
		TotalCount: len(values),
	}

	for _, val := range values {
		coerced := c.CoerceValue(val)
		if coerced.IsMissing {
			continue
		}
		analysis.ValidCount++
		switch coerced.Type {
		case frame.ValueTypeNumeric:
			analysis.NumericCount++
		case frame.ValueTypeBoolean:
			analysis.BooleanCount++
		case frame.ValueTypeTimestamp:
			analysis.TimestampCount++
		}
	}

	if analysis.ValidCount > 0 {
		analysis.NumericRatio = float64(analysis.NumericCount) / float64(analysis.ValidCount)
		analysis.BooleanRatio = float64(analysis.BooleanCount) / float64(analysis.ValidCount)
		analysis.TimestampRatio = float64(analysis.TimestampCount) / float64(analysis.ValidCount)
	}

	analysis.RecommendedType = c.determineRecommendedType(analysis)
	return analysis
}

func (c *TypeCoercer) determineRecommendedType(analysis TypeAnalysis) frame.ValueType {
	if analysis.ValidCount == 0 {
		return frame.ValueTypeMissing
	}
	if analysis.BooleanRatio >= c.config.BooleanThreshold {
		return frame.ValueTypeBoolean
	}
	if analysis.NumericRatio >= c.config.NumericThreshold {
		return frame.ValueTypeNumeric
	}
	if analysis.TimestampRatio >= c.config.TimestampThreshold {
		return frame.ValueTypeTimestamp
	}
	return frame.ValueTypeString
}

// missingMarkers are literal strings treated as absent values
var missingMarkers = map[string]bool{
	"na":   true,
	"n/a":  true,
	"null": true,
	"nil":  true,
	"-":    true,
}

func isMissingMarker(s string) bool {
	return missingMarkers[strings.ToLower(s)]
}

func tryParseNumeric(s string) (float64, bool) {
	// Tolerate thousands separators
	cleaned := strings.ReplaceAll(s, ",", "")
	val, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return val, true
}

func tryParseBoolean(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true", "yes", "y":
		return true, true
	case "false", "no", "n":
		return false, true
	}
	return false, false
}

// timestampLayouts are tried in order; first match wins
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"2006/01/02",
}

func tryParseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
