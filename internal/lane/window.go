package lane

import (
	"errors"
	"fmt"
	"image"
)

var (
	// ErrEmptyImage is returned when the occupancy image has no pixels.
	ErrEmptyImage = errors.New("occupancy image is empty")

	// ErrInvalidWindow is returned when a search window cannot be tracked
	// within the image.
	ErrInvalidWindow = errors.New("invalid search window")
)

// Point is a sample point in image coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Window is a search rectangle. X and Y locate its top-left corner; Width and
// Height stay fixed while the window moves.
type Window struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rectangle returns the window as an image.Rectangle.
func (w Window) Rectangle() image.Rectangle {
	return image.Rect(w.X, w.Y, w.X+w.Width, w.Y+w.Height)
}

// Center returns the window's center using integer halving of its size.
func (w Window) Center() (int, int) {
	return w.X + w.Width/2, w.Y + w.Height/2
}

// Validate reports whether the window can be tracked inside bounds.
//
// X may lie partly or wholly outside bounds: the tracker treats the part of
// the window outside the image as empty and clamps X after the first step.
// Y must start inside the image and the window must not be wider than it.
func (w Window) Validate(bounds image.Rectangle) error {
	if bounds.Empty() {
		return ErrEmptyImage
	}
	switch {
	case w.Width <= 0 || w.Height <= 0:
		return fmt.Errorf("%w: size %dx%d must be positive", ErrInvalidWindow, w.Width, w.Height)
	case w.Width > bounds.Dx():
		return fmt.Errorf("%w: width %d exceeds image width %d", ErrInvalidWindow, w.Width, bounds.Dx())
	case w.Y < 0 || w.Y >= bounds.Dy():
		return fmt.Errorf("%w: y %d outside [0,%d)", ErrInvalidWindow, w.Y, bounds.Dy())
	}
	return nil
}

func (w Window) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", w.X, w.Y, w.Width, w.Height)
}
