package plot

import (
	"tableplot/domain/core"
	"tableplot/domain/frame"
)

// Aes maps aesthetics to column names of the layer's frame. Empty entries
// are unmapped.
type Aes struct {
	X     string `json:"x,omitempty"`
	Y     string `json:"y,omitempty"`
	Color string `json:"color,omitempty"`
	Fill  string `json:"fill,omitempty"`
	Group string `json:"group,omitempty"`
}

// Merge overlays layer-local aesthetics onto the plot defaults. Layer
// entries win.
func (a Aes) Merge(overlay Aes) Aes {
	merged := a
	if overlay.X != "" {
		merged.X = overlay.X
	}
	if overlay.Y != "" {
		merged.Y = overlay.Y
	}
	if overlay.Color != "" {
		merged.Color = overlay.Color
	}
	if overlay.Fill != "" {
		merged.Fill = overlay.Fill
	}
	if overlay.Group != "" {
		merged.Group = overlay.Group
	}
	return merged
}

// Validate checks every mapped aesthetic against the frame's columns
func (a Aes) Validate(f *frame.Frame) error {
	mappings := []struct {
		aes    string
		column string
	}{
		{"x", a.X},
		{"y", a.Y},
		{"color", a.Color},
		{"fill", a.Fill},
		{"group", a.Group},
	}
	for _, m := range mappings {
		if m.column == "" {
			continue
		}
		if !f.HasColumn(m.column) {
			return core.NewAestheticError(m.aes, m.column)
		}
	}
	return nil
}
