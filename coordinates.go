package diesel2d

import (
	"fmt"
	"math"
	"strings"

	"github.com/gogpu/gg"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// ScaleToFit selects how a source rectangle is mapped into a destination
// of a different aspect ratio.
type ScaleToFit uint8

const (
	// ScaleToFitFill scales each axis independently and may stretch.
	ScaleToFitFill ScaleToFit = iota
	// ScaleToFitStart keeps the aspect ratio and aligns to the top-left.
	ScaleToFitStart
	// ScaleToFitCenter keeps the aspect ratio and centers the result.
	ScaleToFitCenter
	// ScaleToFitEnd keeps the aspect ratio and aligns to the bottom-right.
	ScaleToFitEnd
)

func (f ScaleToFit) String() string {
	switch f {
	case ScaleToFitFill:
		return "fill"
	case ScaleToFitStart:
		return "start"
	case ScaleToFitCenter:
		return "center"
	case ScaleToFitEnd:
		return "end"
	}
	return fmt.Sprintf("ScaleToFit(%d)", uint8(f))
}

// ParseScaleToFit converts the textual form used in config files.
func ParseScaleToFit(s string) (ScaleToFit, error) {
	switch strings.ToLower(s) {
	case "fill", "":
		return ScaleToFitFill, nil
	case "start":
		return ScaleToFitStart, nil
	case "center":
		return ScaleToFitCenter, nil
	case "end":
		return ScaleToFitEnd, nil
	}
	return 0, fmt.Errorf("unknown scale-to-fit %q", s)
}

// Rect is an axis-aligned rectangle given by its edges. Left may exceed
// Right and Top may exceed Bottom to describe a flipped axis.
type Rect struct {
	Left, Top, Right, Bottom float64
}

func (r Rect) Width() float64 {
	return r.Right - r.Left
}

func (r Rect) Height() float64 {
	return r.Bottom - r.Top
}

func (r Rect) finite() bool {
	for _, v := range [...]float64{r.Left, r.Top, r.Right, r.Bottom} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// CoordinateKind tags a CoordinateSystem.
type CoordinateKind uint8

const (
	// CoordinatesNone leaves the canvas transform untouched.
	CoordinatesNone CoordinateKind = iota
	CoordinatesPhysical
	CoordinatesLogical
	CoordinatesVisibleRange
	CoordinatesFixedWidth
)

func (k CoordinateKind) String() string {
	switch k {
	case CoordinatesNone:
		return "none"
	case CoordinatesPhysical:
		return "physical"
	case CoordinatesLogical:
		return "logical"
	case CoordinatesVisibleRange:
		return "visible_range"
	case CoordinatesFixedWidth:
		return "fixed_width"
	}
	return fmt.Sprintf("CoordinateKind(%d)", uint8(k))
}

// CoordinateSystem is the coordinate space the renderer installs on the
// canvas before each draw callback. Only the fields of its Kind are used.
type CoordinateSystem struct {
	Kind CoordinateKind

	// CoordinatesVisibleRange
	VisibleRange Rect
	Fit          ScaleToFit

	// CoordinatesFixedWidth
	Center      gg.Point
	XHalfExtent float64
}

// PhysicalCoordinates maps one unit to one surface pixel.
func PhysicalCoordinates() CoordinateSystem {
	return CoordinateSystem{Kind: CoordinatesPhysical}
}

// LogicalCoordinates maps one unit to one DPI-independent window pixel.
func LogicalCoordinates() CoordinateSystem {
	return CoordinateSystem{Kind: CoordinatesLogical}
}

// VisibleRangeCoordinates maps visible onto the whole surface.
func VisibleRangeCoordinates(visible Rect, fit ScaleToFit) CoordinateSystem {
	return CoordinateSystem{Kind: CoordinatesVisibleRange, VisibleRange: visible, Fit: fit}
}

// FixedWidthCoordinates shows xHalfExtent units either side of center and
// derives the vertical range from the surface aspect ratio.
func FixedWidthCoordinates(center gg.Point, xHalfExtent float64) CoordinateSystem {
	return CoordinateSystem{Kind: CoordinatesFixedWidth, Center: center, XHalfExtent: xHalfExtent}
}

// NoCoordinates keeps whatever transform the canvas already has.
func NoCoordinates() CoordinateSystem {
	return CoordinateSystem{Kind: CoordinatesNone}
}

// Transformable is the part of a canvas the coordinate helper touches.
// *gg.Context implements it.
type Transformable interface {
	SetTransform(m gg.Matrix)
}

// CoordinateSystemHelper computes canvas transforms for the current
// surface and window sizes. A new helper is handed to every draw callback.
type CoordinateSystemHelper struct {
	surfaceExtent vk.Extent2D
	logicalSize   LogicalSize
	physicalSize  PhysicalSize
	scaleFactor   float64
}

func NewCoordinateSystemHelper(surfaceExtent vk.Extent2D, logical LogicalSize, physical PhysicalSize, scaleFactor float64) *CoordinateSystemHelper {
	return &CoordinateSystemHelper{
		surfaceExtent: surfaceExtent,
		logicalSize:   logical,
		physicalSize:  physical,
		scaleFactor:   scaleFactor,
	}
}

// SurfaceExtent is the raw pixel size of the surface being drawn.
func (h *CoordinateSystemHelper) SurfaceExtent() vk.Extent2D {
	return h.surfaceExtent
}

func (h *CoordinateSystemHelper) WindowLogicalSize() LogicalSize {
	return h.logicalSize
}

func (h *CoordinateSystemHelper) WindowPhysicalSize() PhysicalSize {
	return h.physicalSize
}

// ScaleFactor is the high-dpi multiplier, e.g. 2.0 for a 4K display
// simulating 1080p.
func (h *CoordinateSystemHelper) ScaleFactor() float64 {
	return h.scaleFactor
}

func (h *CoordinateSystemHelper) surfaceRect() Rect {
	return Rect{Right: float64(h.surfaceExtent.Width), Bottom: float64(h.surfaceExtent.Height)}
}

// PhysicalMatrix is the identity: top-left (0,0), one unit per pixel.
func (h *CoordinateSystemHelper) PhysicalMatrix() gg.Matrix {
	return gg.Identity()
}

// LogicalMatrix scales logical window units to surface pixels. The surface
// is not necessarily the size of the window in physical pixels, so the
// ratio is taken against the surface extent.
func (h *CoordinateSystemHelper) LogicalMatrix() (gg.Matrix, error) {
	if h.logicalSize.Width == 0 || h.logicalSize.Height == 0 {
		return gg.Matrix{}, errors.Wrap(ErrDegenerateTransform, "zero logical window size")
	}
	return gg.Scale(
		float64(h.surfaceExtent.Width)/float64(h.logicalSize.Width),
		float64(h.surfaceExtent.Height)/float64(h.logicalSize.Height),
	), nil
}

// VisibleRangeMatrix maps visible onto (0,0)-(surface extent). An inverted
// axis is fitted with its endpoints negated and then flipped back, which
// also mirrors text drawn on that axis.
func (h *CoordinateSystemHelper) VisibleRangeMatrix(visible Rect, fit ScaleToFit) (gg.Matrix, error) {
	xScale, yScale := 1.0, 1.0
	if visible.Left > visible.Right {
		visible.Left, visible.Right = -visible.Left, -visible.Right
		xScale = -1
	}
	if visible.Top > visible.Bottom {
		visible.Top, visible.Bottom = -visible.Top, -visible.Bottom
		yScale = -1
	}
	m, err := rectToRect(visible, h.surfaceRect(), fit)
	if err != nil {
		return gg.Matrix{}, err
	}
	return m.Multiply(gg.Scale(xScale, yScale)), nil
}

// FixedWidthMatrix shows xHalfExtent units either side of center.x and
// the matching vertical range for the surface aspect ratio.
func (h *CoordinateSystemHelper) FixedWidthMatrix(center gg.Point, xHalfExtent float64) (gg.Matrix, error) {
	aspect := float64(h.surfaceExtent.Width) / float64(h.surfaceExtent.Height)
	yHalfExtent := xHalfExtent / aspect
	return h.VisibleRangeMatrix(Rect{
		Left:   center.X - xHalfExtent,
		Top:    center.Y - yHalfExtent,
		Right:  center.X + xHalfExtent,
		Bottom: center.Y + yHalfExtent,
	}, ScaleToFitFill)
}

// Matrix returns the transform for cs. The second result is false for
// CoordinatesNone.
func (h *CoordinateSystemHelper) Matrix(cs CoordinateSystem) (gg.Matrix, bool, error) {
	var (
		m   gg.Matrix
		err error
	)
	switch cs.Kind {
	case CoordinatesNone:
		return gg.Matrix{}, false, nil
	case CoordinatesPhysical:
		m = h.PhysicalMatrix()
	case CoordinatesLogical:
		m, err = h.LogicalMatrix()
	case CoordinatesVisibleRange:
		m, err = h.VisibleRangeMatrix(cs.VisibleRange, cs.Fit)
	case CoordinatesFixedWidth:
		m, err = h.FixedWidthMatrix(cs.Center, cs.XHalfExtent)
	default:
		return gg.Matrix{}, false, errors.Errorf("unknown coordinate system %v", cs.Kind)
	}
	if err != nil {
		return gg.Matrix{}, false, err
	}
	return m, true, nil
}

// Apply sets the canvas transform for cs. On error the canvas is left as
// it was.
func (h *CoordinateSystemHelper) Apply(canvas Transformable, cs CoordinateSystem) error {
	m, ok, err := h.Matrix(cs)
	if err != nil || !ok {
		return err
	}
	canvas.SetTransform(m)
	return nil
}

func (h *CoordinateSystemHelper) UsePhysicalCoordinates(canvas Transformable) {
	canvas.SetTransform(h.PhysicalMatrix())
}

func (h *CoordinateSystemHelper) UseLogicalCoordinates(canvas Transformable) error {
	return h.Apply(canvas, LogicalCoordinates())
}

// UseVisibleRange maps visible onto the surface. See VisibleRangeMatrix.
func (h *CoordinateSystemHelper) UseVisibleRange(canvas Transformable, visible Rect, fit ScaleToFit) error {
	return h.Apply(canvas, VisibleRangeCoordinates(visible, fit))
}

func (h *CoordinateSystemHelper) UseFixedWidth(canvas Transformable, center gg.Point, xHalfExtent float64) error {
	return h.Apply(canvas, FixedWidthCoordinates(center, xHalfExtent))
}

// rectToRect maps src onto dst. Fill scales the axes independently; the
// other policies use the smaller scale on both axes and align the slack.
func rectToRect(src, dst Rect, fit ScaleToFit) (gg.Matrix, error) {
	if !src.finite() || !dst.finite() {
		return gg.Matrix{}, errors.Wrap(ErrDegenerateTransform, "non-finite rectangle")
	}
	if src.Width() <= 0 || src.Height() <= 0 {
		return gg.Matrix{}, errors.Wrapf(ErrDegenerateTransform, "empty source %+v", src)
	}
	if dst.Width() <= 0 || dst.Height() <= 0 {
		return gg.Matrix{}, errors.Wrapf(ErrDegenerateTransform, "empty destination %+v", dst)
	}

	sx := dst.Width() / src.Width()
	sy := dst.Height() / src.Height()
	xLarger := false
	if fit != ScaleToFitFill {
		if sx > sy {
			xLarger = true
			sx = sy
		} else {
			sy = sx
		}
	}
	tx := dst.Left - src.Left*sx
	ty := dst.Top - src.Top*sy
	if fit == ScaleToFitCenter || fit == ScaleToFitEnd {
		var diff float64
		if xLarger {
			diff = dst.Width() - src.Width()*sy
		} else {
			diff = dst.Height() - src.Height()*sy
		}
		if fit == ScaleToFitCenter {
			diff /= 2
		}
		if xLarger {
			tx += diff
		} else {
			ty += diff
		}
	}
	m := gg.Matrix{A: sx, C: tx, E: sy, F: ty}
	if math.IsNaN(m.A) || math.IsInf(m.A, 0) || math.IsNaN(m.E) || math.IsInf(m.E, 0) {
		return gg.Matrix{}, errors.Wrap(ErrDegenerateTransform, "singular matrix")
	}
	return m, nil
}
