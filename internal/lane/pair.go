package lane

import (
	"context"
	"fmt"
	"image"

	"golang.org/x/sync/errgroup"
)

// Side identifies one boundary of the lane.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}

// Boundaries holds the tracked sample points of both lane sides, each ordered
// bottom to top.
type Boundaries struct {
	Left  []Point `json:"left"`
	Right []Point `json:"right"`
}

// Side returns the points tracked for s.
func (b *Boundaries) Side(s Side) []Point {
	if s == Left {
		return b.Left
	}
	return b.Right
}

// TrackPair tracks the left and right boundaries of img concurrently.
//
// The two invocations share the image read-only. If either side fails the
// error names the side; ctx is only checked before tracking starts since a
// single Track call is bounded by the image height.
func TrackPair(ctx context.Context, img image.Image, left, right Window) (*Boundaries, error) {
	var result Boundaries

	g, ctx := errgroup.WithContext(ctx)
	track := func(side Side, start Window, dst *[]Point) {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			pts, err := Track(img, start)
			if err != nil {
				return fmt.Errorf("%s boundary %v: %w", side, start, err)
			}
			*dst = pts
			return nil
		})
	}
	track(Left, left, &result.Left)
	track(Right, right, &result.Right)

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &result, nil
}

// Polygon returns the outline of the area between the two boundaries: the
// left points bottom to top followed by the right points top to bottom.
func (b *Boundaries) Polygon() []Point {
	poly := make([]Point, 0, len(b.Left)+len(b.Right))
	poly = append(poly, b.Left...)
	for i := len(b.Right) - 1; i >= 0; i-- {
		poly = append(poly, b.Right[i])
	}
	return poly
}

// Map returns a copy of b with every point passed through fn.
func (b *Boundaries) Map(fn func(Point) Point) *Boundaries {
	out := &Boundaries{
		Left:  make([]Point, len(b.Left)),
		Right: make([]Point, len(b.Right)),
	}
	for i, p := range b.Left {
		out.Left[i] = fn(p)
	}
	for i, p := range b.Right {
		out.Right[i] = fn(p)
	}
	return out
}
