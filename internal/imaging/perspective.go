package imaging

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/mat"

	"github.com/ironsheep/lane-tools-mcp/internal/lane"
)

// ErrDegenerateQuad is returned when four point correspondences do not define
// a projective transform (for example, three collinear points).
var ErrDegenerateQuad = errors.New("degenerate quadrilateral")

// Quad is four corner points, conventionally ordered top-left, top-right,
// bottom-right, bottom-left.
type Quad [4]lane.Point

// RectQuad returns the corners of a width×height rectangle at the origin.
func RectQuad(width, height int) Quad {
	w, h := float64(width), float64(height)
	return Quad{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h}}
}

// Homography is a 3×3 projective transform between two image planes.
type Homography struct {
	m *mat.Dense
}

// NewHomography computes the transform that maps each src corner onto the
// matching dst corner.
//
// The eight unknowns h0..h7 (h8 fixed to 1) come from the linear system
//
//	u = (h0·x + h1·y + h2) / (h6·x + h7·y + 1)
//	v = (h3·x + h4·y + h5) / (h6·x + h7·y + 1)
//
// written out for the four correspondences.
func NewHomography(src, dst Quad) (*Homography, error) {
	a := mat.NewDense(8, 8, nil)
	b := mat.NewVecDense(8, nil)
	for i := 0; i < 4; i++ {
		x, y := src[i].X, src[i].Y
		u, v := dst[i].X, dst[i].Y
		a.SetRow(2*i, []float64{x, y, 1, 0, 0, 0, -u * x, -u * y})
		a.SetRow(2*i+1, []float64{0, 0, 0, x, y, 1, -v * x, -v * y})
		b.SetVec(2*i, u)
		b.SetVec(2*i+1, v)
	}

	var h mat.VecDense
	if err := h.SolveVec(a, b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDegenerateQuad, err)
	}

	m := mat.NewDense(3, 3, []float64{
		h.AtVec(0), h.AtVec(1), h.AtVec(2),
		h.AtVec(3), h.AtVec(4), h.AtVec(5),
		h.AtVec(6), h.AtVec(7), 1,
	})
	return &Homography{m: m}, nil
}

// Inverse returns the transform mapping dst back onto src.
func (h *Homography) Inverse() (*Homography, error) {
	var inv mat.Dense
	if err := inv.Inverse(h.m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDegenerateQuad, err)
	}
	return &Homography{m: &inv}, nil
}

// Apply maps one point. Points on the transform's vanishing line map to
// infinity.
func (h *Homography) Apply(p lane.Point) lane.Point {
	x, y := h.apply(p.X, p.Y)
	return lane.Point{X: x, Y: y}
}

// ApplyAll maps every point of pts into a new slice.
func (h *Homography) ApplyAll(pts []lane.Point) []lane.Point {
	out := make([]lane.Point, len(pts))
	for i, p := range pts {
		out[i] = h.Apply(p)
	}
	return out
}

func (h *Homography) apply(x, y float64) (float64, float64) {
	m := h.m.RawMatrix().Data
	w := m[6]*x + m[7]*y + m[8]
	if w == 0 {
		return math.Inf(1), math.Inf(1)
	}
	return (m[0]*x + m[1]*y + m[2]) / w, (m[3]*x + m[4]*y + m[5]) / w
}

// WarpPerspective resamples src into a width×height image through h, which
// maps source coordinates to output coordinates.
//
// Each output pixel is pulled from the source through the inverse transform
// with bilinear interpolation. Samples falling outside src are black, and the
// output is fully opaque.
func WarpPerspective(src image.Image, h *Homography, width, height int) (*image.NRGBA, error) {
	inv, err := h.Inverse()
	if err != nil {
		return nil, err
	}

	s := imaging.Clone(src)
	sw, sh := s.Bounds().Dx(), s.Bounds().Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))

	sample := func(x, y int) (r, g, b float64) {
		if x < 0 || y < 0 || x >= sw || y >= sh {
			return 0, 0, 0
		}
		i := s.PixOffset(x, y)
		a := float64(s.Pix[i+3]) / 255
		return float64(s.Pix[i]) * a, float64(s.Pix[i+1]) * a, float64(s.Pix[i+2]) * a
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			fx, fy := inv.apply(float64(x), float64(y))
			i := dst.PixOffset(x, y)
			dst.Pix[i+3] = 0xff
			// Also rejects NaN and the infinities of the vanishing line.
			if !(fx > -1 && fy > -1 && fx < float64(sw) && fy < float64(sh)) {
				continue
			}

			x0, y0 := math.Floor(fx), math.Floor(fy)
			dx, dy := fx-x0, fy-y0
			ix, iy := int(x0), int(y0)

			r00, g00, b00 := sample(ix, iy)
			r10, g10, b10 := sample(ix+1, iy)
			r01, g01, b01 := sample(ix, iy+1)
			r11, g11, b11 := sample(ix+1, iy+1)

			w00 := (1 - dx) * (1 - dy)
			w10 := dx * (1 - dy)
			w01 := (1 - dx) * dy
			w11 := dx * dy

			dst.Pix[i] = clampByte(r00*w00 + r10*w10 + r01*w01 + r11*w11)
			dst.Pix[i+1] = clampByte(g00*w00 + g10*w10 + g01*w01 + g11*w11)
			dst.Pix[i+2] = clampByte(b00*w00 + b10*w10 + b01*w01 + b11*w11)
		}
	}
	return dst, nil
}

func clampByte(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v + 0.5)
	}
}
