// Package convert normalizes arbitrary tabular inputs into the canonical
// frame at the plot boundary. Everything downstream of the two plot
// construction call sites is written against *frame.Frame only.
package convert

import (
	"fmt"

	"tableplot/domain/core"
	"tableplot/domain/frame"
)

// FrameProducer is the legacy conversion hook. Backends that already know
// how to materialize themselves as a canonical frame expose it, and
// ToFrame prefers it over the generic structural probe.
type FrameProducer interface {
	Frame() (*frame.Frame, error)
}

// TableSource exposes positional cell access over an arbitrary tabular
// backend. The generic probe accepts any implementation.
type TableSource interface {
	Headers() []string
	NumRows() int
	At(row, col int) interface{}
}

// ToFrame converts any dataframe-like value to the canonical frame.
//
// Policy, in order: pass through unchanged if already canonical; use the
// legacy FrameProducer hook if the input exposes one; attempt the generic
// multi-backend probe; otherwise fail with ErrUnsupportedInput naming the
// received type. The only side effect is the allocation of the converted
// copy.
func ToFrame(v interface{}) (*frame.Frame, error) {
	if v == nil {
		return nil, core.NewUnsupportedInputError(v)
	}

	// Identity fast path: the canonical type passes through untouched
	if f, ok := v.(*frame.Frame); ok {
		return f, nil
	}

	// Legacy conversion hook
	if producer, ok := v.(FrameProducer); ok {
		f, err := producer.Frame()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrConversionFailed, err)
		}
		return f, nil
	}

	// Generic multi-backend probe
	if f, err := probeFrame(v); err == nil {
		return f, nil
	}

	return nil, core.NewUnsupportedInputError(v)
}

// Resolve invokes deferred-data callables before conversion. Plot call
// sites route their data arguments through here.
func Resolve(v interface{}) (*frame.Frame, error) {
	switch fn := v.(type) {
	case func() *frame.Frame:
		return ToFrame(fn())
	case func() (*frame.Frame, error):
		f, err := fn()
		if err != nil {
			return nil, fmt.Errorf("%w: deferred data: %v", core.ErrConversionFailed, err)
		}
		return ToFrame(f)
	case func() interface{}:
		return ToFrame(fn())
	}
	return ToFrame(v)
}

// IsDataLike reports whether a value is plausibly accepted as plotting
// input: already canonical, a deferred-data callable, legacy-convertible,
// or accepted by the generic probe. Purely advisory; probe panics and
// failures count as false.
func IsDataLike(v interface{}) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()

	if v == nil {
		return false
	}

	switch v.(type) {
	case *frame.Frame:
		return true
	case func() *frame.Frame, func() (*frame.Frame, error), func() interface{}:
		return true
	}

	if _, isProducer := v.(FrameProducer); isProducer {
		return true
	}

	_, err := probeFrame(v)
	return err == nil
}
