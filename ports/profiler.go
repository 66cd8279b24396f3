package ports

import (
	"tableplot/domain/frame"
)

// Profiler summarizes a frame column by column
type Profiler interface {
	Profile(f *frame.Frame) ([]FieldProfile, error)
}

// FieldProfile describes a single column of a profiled frame
type FieldProfile struct {
	Name         string             `json:"name"`
	DataType     string             `json:"data_type"`
	RowCount     int                `json:"row_count"`
	MissingCount int                `json:"missing_count"`
	MissingRate  float64            `json:"missing_rate"`
	UniqueCount  int                `json:"unique_count"`
	Statistics   map[string]float64 `json:"statistics,omitempty"`
}
