package lane

import (
	"image"
	"math"
)

// Track follows one lane boundary from start up to the top of img.
//
// Parameters:
//   - img: Occupancy image. Any non-zero pixel is a lane-marking candidate.
//     The image is only read.
//   - start: Initial search window, in coordinates relative to the image's
//     top-left pixel. See Window.Validate for the accepted range.
//
// Returns:
//   - []Point: One sample per step, bottom to top. The length is always
//     start.Y/start.Height + 1.
//   - error: Non-nil (wrapping ErrEmptyImage or ErrInvalidWindow) when the
//     input cannot be tracked.
//
// # Algorithm
//
// Each step:
//
//  1. Average the columns of all foreground pixels inside the window. An
//     empty window averages to its own center column.
//  2. Emit (average, window vertical center).
//  3. Move the window up by its height. If that passes the top edge, pin it
//     at y=0 and stop after this step.
//  4. Shift the window by the difference between the average and its center
//     column, rounded to whole pixels, then clamp so that
//     0 <= x and x+width < image width (x is floored at 0 when the window is
//     as wide as the image).
func Track(img image.Image, start Window) ([]Point, error) {
	var points []Point
	err := walk(img, start, func(_ Window, p Point) {
		points = append(points, p)
	})
	if err != nil {
		return nil, err
	}
	return points, nil
}

// Step is one iteration of the tracker: the window that was searched and the
// sample it produced.
type Step struct {
	Window Window `json:"window"`
	Point  Point  `json:"point"`
}

// Trace runs the same search as Track but also reports the window searched at
// each step, for debugging overlays.
func Trace(img image.Image, start Window) ([]Step, error) {
	var steps []Step
	err := walk(img, start, func(w Window, p Point) {
		steps = append(steps, Step{Window: w, Point: p})
	})
	if err != nil {
		return nil, err
	}
	return steps, nil
}

func walk(img image.Image, start Window, visit func(Window, Point)) error {
	if img == nil {
		return ErrEmptyImage
	}
	bounds := img.Bounds()
	if err := start.Validate(bounds); err != nil {
		return err
	}

	imgWidth := bounds.Dx()
	win := start

	for done := false; !done; {
		centerX, centerY := win.Center()

		avgX, found := meanColumn(img, win)
		if !found {
			avgX = float64(centerX)
		}
		visit(win, Point{X: avgX, Y: float64(centerY)})

		win.Y -= win.Height
		if win.Y < 0 {
			win.Y = 0
			done = true
		}

		win.X += int(math.Round(avgX - float64(centerX)))
		win.X = clampX(win.X, win.Width, imgWidth)
	}
	return nil
}

// clampX keeps a window of the given width strictly inside an image row.
func clampX(x, width, imgWidth int) int {
	if x < 0 {
		x = 0
	}
	if x+width >= imgWidth {
		x = imgWidth - width - 1
	}
	if x < 0 {
		x = 0
	}
	return x
}

// meanColumn returns the mean column of the foreground pixels inside win,
// relative to the image origin. found is false when the window holds no
// foreground pixel or lies entirely outside the image.
func meanColumn(img image.Image, win Window) (mean float64, found bool) {
	bounds := img.Bounds()
	r := win.Rectangle().Add(bounds.Min).Intersect(bounds)
	if r.Empty() {
		return 0, false
	}

	var sum float64
	var count int

	if gray, ok := img.(*image.Gray); ok {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			off := gray.PixOffset(r.Min.X, y)
			row := gray.Pix[off : off+r.Dx()]
			for i, v := range row {
				if v != 0 {
					sum += float64(r.Min.X + i - bounds.Min.X)
					count++
				}
			}
		}
	} else {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				if isForeground(img, x, y) {
					sum += float64(x - bounds.Min.X)
					count++
				}
			}
		}
	}

	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

// isForeground reports whether the pixel at (x, y) has any non-zero color
// channel. Alpha is ignored so that opaque black counts as background.
func isForeground(img image.Image, x, y int) bool {
	r, g, b, _ := img.At(x, y).RGBA()
	return r|g|b != 0
}
