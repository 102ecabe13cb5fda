package imaging

import (
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/ironsheep/lane-tools-mcp/internal/lane"
)

// roadQuad is a trapezoid in a 3840×2160 dashcam frame, mapped onto a
// 640×480 bird's-eye view.
var roadQuad = Quad{{X: 1380, Y: 1090}, {X: 2280, Y: 1090}, {X: 3180, Y: 1740}, {X: 0, Y: 1740}}

func assertPointNear(t *testing.T, want, got lane.Point) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-6, "x")
	assert.InDelta(t, want.Y, got.Y, 1e-6, "y")
}

func TestNewHomography_MapsCorners(t *testing.T) {
	dst := RectQuad(640, 480)
	h, err := NewHomography(roadQuad, dst)
	require.NoError(t, err)

	for i := range roadQuad {
		assertPointNear(t, dst[i], h.Apply(roadQuad[i]))
	}
}

func TestHomography_InverseRoundTrip(t *testing.T) {
	h, err := NewHomography(roadQuad, RectQuad(640, 480))
	require.NoError(t, err)
	inv, err := h.Inverse()
	require.NoError(t, err)

	pts := []lane.Point{{X: 90, Y: 450}, {X: 320, Y: 240}, {X: 560, Y: 30}}
	back := h.ApplyAll(inv.ApplyAll(pts))
	require.Len(t, back, len(pts))
	for i := range pts {
		assertPointNear(t, pts[i], back[i])
	}

	// The bottom corners of the view land on the bottom corners of the road.
	assertPointNear(t, roadQuad[3], inv.Apply(lane.Point{X: 0, Y: 480}))
	assertPointNear(t, roadQuad[2], inv.Apply(lane.Point{X: 640, Y: 480}))
}

func TestNewHomography_Identity(t *testing.T) {
	q := RectQuad(100, 50)
	h, err := NewHomography(q, q)
	require.NoError(t, err)

	assertPointNear(t, lane.Point{X: 12.5, Y: 33}, h.Apply(lane.Point{X: 12.5, Y: 33}))
}

func TestNewHomography_Degenerate(t *testing.T) {
	collapsed := Quad{{X: 5, Y: 5}, {X: 5, Y: 5}, {X: 5, Y: 5}, {X: 5, Y: 5}}

	_, err := NewHomography(collapsed, RectQuad(640, 480))
	assert.ErrorIs(t, err, ErrDegenerateQuad)
}

func TestHomography_VanishingLine(t *testing.T) {
	// The denominator -0.01x + 1 vanishes on the line x = 100.
	h := &Homography{m: mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, -0.01, 0, 1})}

	p := h.Apply(lane.Point{X: 100, Y: 25})
	assert.True(t, math.IsInf(p.X, 1))
	assert.True(t, math.IsInf(p.Y, 1))

	p = h.Apply(lane.Point{X: 50, Y: 25})
	assertPointNear(t, lane.Point{X: 100, Y: 50}, p)
}

func TestWarpPerspective_Identity(t *testing.T) {
	src := stripeImage(80, 60, 30, 45)
	q := RectQuad(80, 60)
	h, err := NewHomography(q, q)
	require.NoError(t, err)

	out, err := WarpPerspective(src, h, 80, 60)
	require.NoError(t, err)
	require.Equal(t, src.Bounds(), out.Bounds())

	for y := 0; y < 60; y++ {
		for x := 0; x < 80; x++ {
			want := src.NRGBAAt(x, y)
			got := out.NRGBAAt(x, y)
			if absDiff(want.R, got.R) > 1 || got.A != 255 {
				t.Fatalf("pixel (%d,%d): got %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestWarpPerspective_Translation(t *testing.T) {
	src := stripeImage(100, 40, 40, 60)
	srcQuad := RectQuad(100, 40)
	var dstQuad Quad
	for i, p := range srcQuad {
		dstQuad[i] = lane.Point{X: p.X + 10, Y: p.Y}
	}
	h, err := NewHomography(srcQuad, dstQuad)
	require.NoError(t, err)

	out, err := WarpPerspective(src, h, 100, 40)
	require.NoError(t, err)

	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, out.NRGBAAt(60, 20), "shifted stripe")
	assert.Equal(t, color.NRGBA{0, 0, 0, 255}, out.NRGBAAt(45, 20), "left of shifted stripe")
	assert.Equal(t, color.NRGBA{0, 0, 0, 255}, out.NRGBAAt(3, 20), "outside the source is black")
}

func TestWarpPerspective_DegenerateTransform(t *testing.T) {
	h := &Homography{m: mat.NewDense(3, 3, nil)}
	_, err := WarpPerspective(solidImage(10, 10, color.White), h, 10, 10)
	assert.ErrorIs(t, err, ErrDegenerateQuad)
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}
