package plot

import (
	"context"
	"fmt"
	"time"

	"tableplot/domain/convert"
	"tableplot/domain/core"
	"tableplot/domain/frame"
)

// Layer binds data, aesthetics, a geometry and a stat
type Layer struct {
	ID   core.LayerID
	Data *frame.Frame // nil inherits the plot's frame
	Aes  Aes          // merged over the plot's aesthetics
	Geom Geom
	Stat StatKind
}

// Plot is a plot under construction: a default frame, default aesthetics,
// and layers added on top.
type Plot struct {
	ID     core.PlotID
	Data   *frame.Frame
	Aes    Aes
	Layers []*Layer
}

// New starts a plot from any dataframe-like value. The data argument is
// routed through the conversion boundary, so every supported backend is
// accepted here.
func New(data interface{}, aes Aes) (*Plot, error) {
	f, err := convert.Resolve(data)
	if err != nil {
		return nil, fmt.Errorf("plot data: %w", err)
	}
	return &Plot{
		ID:   core.PlotID(core.NewID()),
		Data: f,
		Aes:  aes,
	}, nil
}

// LayerOption configures a layer at AddLayer time
type LayerOption func(*Layer) error

// WithData gives the layer its own data instead of inheriting the plot's.
// Accepts the same backends as New.
func WithData(data interface{}) LayerOption {
	return func(l *Layer) error {
		f, err := convert.Resolve(data)
		if err != nil {
			return fmt.Errorf("layer data: %w", err)
		}
		l.Data = f
		return nil
	}
}

// WithAes overlays layer-local aesthetics
func WithAes(aes Aes) LayerOption {
	return func(l *Layer) error {
		l.Aes = aes
		return nil
	}
}

// WithStat overrides the geometry's default stat
func WithStat(kind StatKind) LayerOption {
	return func(l *Layer) error {
		if _, err := ParseStat(string(kind)); err != nil {
			return err
		}
		l.Stat = kind
		return nil
	}
}

// AddLayer appends a layer drawn with the given geometry. Layer data, when
// supplied via WithData, goes through the same conversion boundary as the
// plot's own data.
func (p *Plot) AddLayer(geom Geom, opts ...LayerOption) error {
	if _, err := ParseGeom(string(geom)); err != nil {
		return err
	}
	layer := &Layer{
		ID:   core.LayerID(core.NewID()),
		Geom: geom,
		Stat: geom.DefaultStat(),
	}
	for _, opt := range opts {
		if err := opt(layer); err != nil {
			return err
		}
	}
	p.Layers = append(p.Layers, layer)
	return nil
}

// PlotSpec is the built, JSON-encodable output of plot construction.
// Rendering is out of scope; the spec carries everything a renderer needs.
type PlotSpec struct {
	ID        core.PlotID `json:"id"`
	Aes       Aes         `json:"aes"`
	Layers    []LayerSpec `json:"layers"`
	BuiltAt   time.Time   `json:"built_at"`
	RowCounts int         `json:"total_rows"`
}

// LayerSpec is one built layer: its computed data plus drawing parameters
type LayerSpec struct {
	ID       core.LayerID             `json:"id"`
	Geom     Geom                     `json:"geom"`
	Stat     StatKind                 `json:"stat"`
	Aes      Aes                      `json:"aes"`
	Columns  []string                 `json:"columns"`
	RowCount int                      `json:"row_count"`
	Data     []map[string]interface{} `json:"data"`
}

// Build validates aesthetics, applies each layer's stat, and produces the
// plot spec. A plot with no layers gets an implicit point layer, so a bare
// New(data).Build() still draws something.
func (p *Plot) Build(ctx context.Context) (*PlotSpec, error) {
	if p.Data == nil {
		return nil, core.ErrEmptyInput
	}

	layers := p.Layers
	if len(layers) == 0 {
		layers = []*Layer{{
			ID:   core.LayerID(core.NewID()),
			Geom: GeomPoint,
			Stat: GeomPoint.DefaultStat(),
		}}
	}

	spec := &PlotSpec{
		ID:      p.ID,
		Aes:     p.Aes,
		BuiltAt: time.Now().UTC(),
	}

	for _, layer := range layers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data := layer.Data
		if data == nil {
			data = p.Data
		}
		aes := p.Aes.Merge(layer.Aes)

		if err := aes.Validate(data); err != nil {
			return nil, fmt.Errorf("layer %s: %w", layer.ID, err)
		}
		if aes.X == "" {
			return nil, fmt.Errorf("layer %s: %w: x", layer.ID, core.ErrMissingAesthetic)
		}
		if layer.Geom.RequiresY() && aes.Y == "" {
			return nil, fmt.Errorf("layer %s: %w: y (geom %s)", layer.ID, core.ErrMissingAesthetic, layer.Geom)
		}

		computed, err := applyStat(layer.Stat, data, aes)
		if err != nil {
			return nil, fmt.Errorf("layer %s: %w", layer.ID, err)
		}

		spec.Layers = append(spec.Layers, LayerSpec{
			ID:       layer.ID,
			Geom:     layer.Geom,
			Stat:     layer.Stat,
			Aes:      aes,
			Columns:  computed.Columns(),
			RowCount: computed.NumRows(),
			Data:     computed.Records(),
		})
		spec.RowCounts += computed.NumRows()
	}

	return spec, nil
}
