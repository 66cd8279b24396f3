package plot

import (
	"fmt"

	"tableplot/domain/core"
)

// Geom identifies the geometry a layer is drawn with
type Geom string

const (
	GeomPoint     Geom = "point"
	GeomLine      Geom = "line"
	GeomBar       Geom = "bar"
	GeomHistogram Geom = "histogram"
)

// ParseGeom validates a geometry name
func ParseGeom(s string) (Geom, error) {
	switch Geom(s) {
	case GeomPoint, GeomLine, GeomBar, GeomHistogram:
		return Geom(s), nil
	}
	return "", fmt.Errorf("%w: %q", core.ErrUnknownGeom, s)
}

// DefaultStat returns the stat a geometry computes when none is set
// explicitly. Every geometry except histogram passes its data through
// unchanged.
func (g Geom) DefaultStat() StatKind {
	if g == GeomHistogram {
		return StatBin
	}
	return StatIdentity
}

// RequiresY reports whether the geometry needs a y aesthetic
func (g Geom) RequiresY() bool {
	return g != GeomHistogram
}
