package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/vector"

	"github.com/ironsheep/lane-tools-mcp/internal/lane"
)

// OverlayStyle controls how tracked boundaries are drawn onto a frame.
type OverlayStyle struct {
	LeftColor  string  `json:"left_color"`  // Hex "#RRGGBB"
	RightColor string  `json:"right_color"` // Hex "#RRGGBB"
	FillColor  string  `json:"fill_color"`  // Hex "#RRGGBB"; empty disables the lane fill
	LineWidth  float64 `json:"line_width"`  // Stroke width in pixels
	FillWeight float64 `json:"fill_weight"` // Fill contribution added to the frame (0-1)
}

// DefaultOverlayStyle draws a blue left edge, a red right edge and a
// translucent green lane area.
func DefaultOverlayStyle() OverlayStyle {
	return OverlayStyle{
		LeftColor:  "#0000FF",
		RightColor: "#FF0000",
		FillColor:  "#64FF00",
		LineWidth:  3,
		FillWeight: 0.5,
	}
}

// Overlay composites the boundaries onto a copy of frame.
//
// The lane area (lane.Boundaries.Polygon) is filled additively: each covered
// channel becomes min(255, frame + FillWeight·fill), which keeps the road
// texture visible under the tint. Each boundary is then stroked as a polyline.
// Non-finite points are skipped. The returned image has its origin at (0,0).
func Overlay(frame image.Image, b *lane.Boundaries, style OverlayStyle) (*image.RGBA, error) {
	left, err := parseHexColor(style.LeftColor)
	if err != nil {
		return nil, fmt.Errorf("invalid left color: %w", err)
	}
	right, err := parseHexColor(style.RightColor)
	if err != nil {
		return nil, fmt.Errorf("invalid right color: %w", err)
	}

	bounds := frame.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(out, out.Bounds(), frame, bounds.Min, draw.Src)

	if style.FillColor != "" && style.FillWeight > 0 {
		fill, err := parseHexColor(style.FillColor)
		if err != nil {
			return nil, fmt.Errorf("invalid fill color: %w", err)
		}
		addPolygon(out, b.Polygon(), fill, style.FillWeight)
	}

	strokePolyline(out, b.Left, left, style.LineWidth)
	strokePolyline(out, b.Right, right, style.LineWidth)
	return out, nil
}

// addPolygon adds weight·c to every pixel covered by poly, scaled by
// coverage and saturating at 255.
func addPolygon(dst *image.RGBA, poly []lane.Point, c color.RGBA, weight float64) {
	if len(poly) < 3 {
		return
	}
	size := dst.Bounds().Size()
	z := vector.NewRasterizer(size.X, size.Y)
	started := false
	for _, p := range poly {
		if !finite(p) {
			continue
		}
		if !started {
			z.MoveTo(float32(p.X), float32(p.Y))
			started = true
			continue
		}
		z.LineTo(float32(p.X), float32(p.Y))
	}
	if !started {
		return
	}
	z.ClosePath()

	mask := image.NewAlpha(dst.Bounds())
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	for y := 0; y < size.Y; y++ {
		for x := 0; x < size.X; x++ {
			a := mask.AlphaAt(x, y).A
			if a == 0 {
				continue
			}
			k := weight * float64(a) / 255
			i := dst.PixOffset(x, y)
			dst.Pix[i] = clampByte(float64(dst.Pix[i]) + k*float64(c.R))
			dst.Pix[i+1] = clampByte(float64(dst.Pix[i+1]) + k*float64(c.G))
			dst.Pix[i+2] = clampByte(float64(dst.Pix[i+2]) + k*float64(c.B))
		}
	}
}

// strokePolyline draws pts as connected segments of the given width.
func strokePolyline(dst *image.RGBA, pts []lane.Point, c color.RGBA, width float64) {
	if len(pts) < 2 || width <= 0 {
		return
	}
	size := dst.Bounds().Size()
	z := vector.NewRasterizer(size.X, size.Y)
	half := width / 2
	drawn := false

	for i := 1; i < len(pts); i++ {
		p, q := pts[i-1], pts[i]
		if !finite(p) || !finite(q) {
			continue
		}
		dx, dy := q.X-p.X, q.Y-p.Y
		length := math.Hypot(dx, dy)
		if length == 0 {
			continue
		}
		nx, ny := -dy/length*half, dx/length*half

		z.MoveTo(float32(p.X+nx), float32(p.Y+ny))
		z.LineTo(float32(q.X+nx), float32(q.Y+ny))
		z.LineTo(float32(q.X-nx), float32(q.Y-ny))
		z.LineTo(float32(p.X-nx), float32(p.Y-ny))
		z.ClosePath()
		drawn = true
	}
	if drawn {
		z.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{})
	}
}

func finite(p lane.Point) bool {
	return !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0) && !math.IsNaN(p.X) && !math.IsNaN(p.Y)
}

// parseHexColor parses "#RRGGBB" (the leading '#' is optional) into an opaque
// color.
func parseHexColor(hex string) (color.RGBA, error) {
	if hex == "" {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, err
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// EncodePNGBase64 encodes img as a base64 PNG for tool responses.
func EncodePNGBase64(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
