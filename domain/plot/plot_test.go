package plot

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableplot/domain/core"
	"tableplot/domain/frame"
)

func numericFrame(t *testing.T) *frame.Frame {
	t.Helper()
	xs := []frame.Value{frame.NewNumericValue(1), frame.NewNumericValue(2), frame.NewNumericValue(3)}
	ys := []frame.Value{frame.NewNumericValue(10), frame.NewNumericValue(20), frame.NewNumericValue(30)}
	f, err := frame.FromColumns([]*frame.Series{
		frame.NewSeries("x", xs),
		frame.NewSeries("y", ys),
	})
	require.NoError(t, err)
	return f
}

// producer satisfies the legacy conversion hook
type producer struct {
	f *frame.Frame
}

func (p *producer) Frame() (*frame.Frame, error) { return p.f, nil }

// Constructing a plot from two equal-length numeric columns succeeds and
// yields a point layer, regardless of which backend supplied the table.
func TestBuild_PointLayerFromAnyBackend(t *testing.T) {
	canonical := numericFrame(t)

	backends := map[string]interface{}{
		"canonical frame": canonical,
		"legacy producer": &producer{f: canonical},
		"column map": map[string][]interface{}{
			"x": {1.0, 2.0, 3.0},
			"y": {10.0, 20.0, 30.0},
		},
		"record maps": []map[string]interface{}{
			{"x": 1.0, "y": 10.0},
			{"x": 2.0, "y": 20.0},
			{"x": 3.0, "y": 30.0},
		},
		"string rows": [][]string{
			{"x", "y"},
			{"1", "10"},
			{"2", "20"},
			{"3", "30"},
		},
	}

	for name, data := range backends {
		t.Run(name, func(t *testing.T) {
			p, err := New(data, Aes{X: "x", Y: "y"})
			require.NoError(t, err)
			require.NoError(t, p.AddLayer(GeomPoint))

			spec, err := p.Build(context.Background())
			require.NoError(t, err)

			require.Len(t, spec.Layers, 1)
			layer := spec.Layers[0]
			assert.Equal(t, GeomPoint, layer.Geom)
			assert.Equal(t, StatIdentity, layer.Stat)
			assert.Equal(t, 3, layer.RowCount)

			// Identity stat leaves the values untouched
			assert.Equal(t, 1.0, layer.Data[0]["x"])
			assert.Equal(t, 30.0, layer.Data[2]["y"])
		})
	}
}

func TestNew_RejectsUnsupportedInput(t *testing.T) {
	_, err := New([]int{1, 2, 3}, Aes{})
	require.Error(t, err)
	assert.True(t, core.IsUnsupportedInputError(err))

	_, err = New(42, Aes{})
	require.Error(t, err)
	assert.True(t, core.IsUnsupportedInputError(err))
}

func TestNew_DeferredData(t *testing.T) {
	f := numericFrame(t)
	p, err := New(func() *frame.Frame { return f }, Aes{X: "x", Y: "y"})
	require.NoError(t, err)
	assert.Same(t, f, p.Data)
}

func TestBuild_ImplicitPointLayer(t *testing.T) {
	p, err := New(numericFrame(t), Aes{X: "x", Y: "y"})
	require.NoError(t, err)

	spec, err := p.Build(context.Background())
	require.NoError(t, err)
	require.Len(t, spec.Layers, 1)
	assert.Equal(t, GeomPoint, spec.Layers[0].Geom)
}

func TestBuild_LayerDataOverride(t *testing.T) {
	p, err := New(numericFrame(t), Aes{X: "x", Y: "y"})
	require.NoError(t, err)

	// The layer-local data goes through the same conversion boundary
	override := map[string][]interface{}{
		"x": {5.0},
		"y": {50.0},
	}
	require.NoError(t, p.AddLayer(GeomLine, WithData(override)))

	spec, err := p.Build(context.Background())
	require.NoError(t, err)
	require.Len(t, spec.Layers, 1)
	assert.Equal(t, 1, spec.Layers[0].RowCount)
	assert.Equal(t, 5.0, spec.Layers[0].Data[0]["x"])
}

func TestBuild_InvalidAesthetic(t *testing.T) {
	p, err := New(numericFrame(t), Aes{X: "x", Y: "nope"})
	require.NoError(t, err)

	_, err = p.Build(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrInvalidAesthetic))
	assert.Contains(t, err.Error(), "nope")
}

func TestBuild_MissingRequiredAesthetics(t *testing.T) {
	p, err := New(numericFrame(t), Aes{})
	require.NoError(t, err)
	_, err = p.Build(context.Background())
	assert.True(t, errors.Is(err, core.ErrMissingAesthetic))

	// Histogram needs x only
	hp, err := New(numericFrame(t), Aes{X: "x"})
	require.NoError(t, err)
	require.NoError(t, hp.AddLayer(GeomHistogram))
	_, err = hp.Build(context.Background())
	assert.NoError(t, err)
}

func TestBuild_HistogramBins(t *testing.T) {
	values := make([]frame.Value, 0, 32)
	for i := 0; i < 32; i++ {
		values = append(values, frame.NewNumericValue(float64(i%8)))
	}
	f, err := frame.FromColumns([]*frame.Series{frame.NewSeries("v", values)})
	require.NoError(t, err)

	p, err := New(f, Aes{X: "v"})
	require.NoError(t, err)
	require.NoError(t, p.AddLayer(GeomHistogram))

	spec, err := p.Build(context.Background())
	require.NoError(t, err)
	require.Len(t, spec.Layers, 1)

	layer := spec.Layers[0]
	assert.Equal(t, StatBin, layer.Stat)
	assert.Equal(t, []string{"x", "xmin", "xmax", "count"}, layer.Columns)

	// Sturges on 32 values: 6 bins, and every observation lands in a bin
	assert.Equal(t, 6, layer.RowCount)
	total := 0.0
	for _, record := range layer.Data {
		total += record["count"].(float64)
	}
	assert.Equal(t, 32.0, total)
}

func TestBuild_SummaryStat(t *testing.T) {
	f, err := frame.FromColumns([]*frame.Series{
		frame.NewSeries("group", []frame.Value{
			frame.NewStringValue("a"), frame.NewStringValue("a"),
			frame.NewStringValue("b"), frame.NewStringValue("b"),
		}),
		frame.NewSeries("score", []frame.Value{
			frame.NewNumericValue(1), frame.NewNumericValue(3),
			frame.NewNumericValue(10), frame.NewNumericValue(20),
		}),
	})
	require.NoError(t, err)

	p, err := New(f, Aes{X: "group", Y: "score"})
	require.NoError(t, err)
	require.NoError(t, p.AddLayer(GeomBar, WithStat(StatSummary)))

	spec, err := p.Build(context.Background())
	require.NoError(t, err)
	require.Len(t, spec.Layers, 1)

	layer := spec.Layers[0]
	require.Equal(t, 2, layer.RowCount)
	// Groups come out sorted
	assert.Equal(t, "a", layer.Data[0]["x"])
	assert.Equal(t, 2.0, layer.Data[0]["y"])
	assert.Equal(t, "b", layer.Data[1]["x"])
	assert.Equal(t, 15.0, layer.Data[1]["y"])
	assert.Equal(t, 10.0, layer.Data[1]["ymin"])
	assert.Equal(t, 20.0, layer.Data[1]["ymax"])
}

func TestBuild_DegenerateHistogramRange(t *testing.T) {
	values := []frame.Value{
		frame.NewNumericValue(5), frame.NewNumericValue(5), frame.NewNumericValue(5),
	}
	f, err := frame.FromColumns([]*frame.Series{frame.NewSeries("v", values)})
	require.NoError(t, err)

	p, err := New(f, Aes{X: "v"})
	require.NoError(t, err)
	require.NoError(t, p.AddLayer(GeomHistogram))

	spec, err := p.Build(context.Background())
	require.NoError(t, err)

	total := 0.0
	for _, record := range spec.Layers[0].Data {
		total += record["count"].(float64)
	}
	assert.Equal(t, 3.0, total)
}

func TestAddLayer_UnknownGeomAndStat(t *testing.T) {
	p, err := New(numericFrame(t), Aes{X: "x", Y: "y"})
	require.NoError(t, err)

	err = p.AddLayer(Geom("sparkle"))
	assert.True(t, errors.Is(err, core.ErrUnknownGeom))

	err = p.AddLayer(GeomPoint, WithStat(StatKind("magic")))
	assert.True(t, errors.Is(err, core.ErrUnknownStat))
}

func TestAesMerge(t *testing.T) {
	base := Aes{X: "x", Y: "y", Color: "c"}
	merged := base.Merge(Aes{Y: "y2"})
	assert.Equal(t, "x", merged.X)
	assert.Equal(t, "y2", merged.Y)
	assert.Equal(t, "c", merged.Color)
}

func TestBuild_CancelledContext(t *testing.T) {
	p, err := New(numericFrame(t), Aes{X: "x", Y: "y"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Build(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
