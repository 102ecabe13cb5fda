package imaging

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/blend"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/gift"
	"github.com/disintegration/imaging"
)

// Binarization modes.
const (
	// ModeWhite keeps bright (white paint) areas.
	ModeWhite = "white"
	// ModeEdges keeps gradient edges, for footage where paint and asphalt
	// differ in texture more than in brightness.
	ModeEdges = "edges"
)

// BinarizeOptions controls how a bird's-eye view becomes an occupancy image.
type BinarizeOptions struct {
	// Mode is ModeWhite or ModeEdges. Empty means ModeWhite.
	Mode string `json:"mode,omitempty"`

	// WhiteLevel is the minimum gray value (0-255) of a lane-paint pixel.
	WhiteLevel uint8 `json:"white_level"`

	// BlurSigma is the Gaussian blur applied to the paint mask before the
	// morphology, smoothing ragged paint edges.
	BlurSigma float64 `json:"blur_sigma"`

	// KernelSize is the square morphology kernel used to fill gaps in dashed
	// or worn markings. Even sizes are reduced by one.
	KernelSize int `json:"kernel_size"`

	// Level is the final binarization threshold (0-255).
	Level uint8 `json:"level"`

	// EdgeLow and EdgeHigh are the hysteresis thresholds for ModeEdges.
	EdgeLow  int `json:"edge_low"`
	EdgeHigh int `json:"edge_high"`
}

// DefaultBinarizeOptions returns the settings tuned for daylight highway
// footage rectified to 640×480.
func DefaultBinarizeOptions() BinarizeOptions {
	return BinarizeOptions{
		Mode:       ModeWhite,
		WhiteLevel: 195,
		BlurSigma:  1.7,
		KernelSize: 13,
		Level:      150,
		EdgeLow:    50,
		EdgeHigh:   150,
	}
}

// Validate checks that the options describe a usable pipeline.
func (o BinarizeOptions) Validate() error {
	switch o.Mode {
	case "", ModeWhite, ModeEdges:
	default:
		return fmt.Errorf("unknown binarize mode: %q", o.Mode)
	}
	if o.BlurSigma < 0 {
		return fmt.Errorf("blur sigma must not be negative, got %g", o.BlurSigma)
	}
	if o.KernelSize < 0 {
		return fmt.Errorf("kernel size must not be negative, got %d", o.KernelSize)
	}
	if o.EdgeLow < 0 || o.EdgeHigh > 255 || o.EdgeLow > o.EdgeHigh {
		return fmt.Errorf("invalid edge thresholds: low=%d high=%d", o.EdgeLow, o.EdgeHigh)
	}
	return nil
}

// Binarize turns a bird's-eye view into an occupancy image whose pixels are
// 255 where lane paint is likely and 0 elsewhere.
//
// # ModeWhite
//
//  1. Grayscale.
//  2. Keep gray values at or above WhiteLevel, zero the rest.
//  3. Gaussian blur (BlurSigma).
//  4. Dilate, erode, then close (dilate+erode) with a KernelSize square,
//     bridging gaps between paint fragments.
//  5. Threshold at Level.
//
// # ModeEdges
//
// EdgeMask(EdgeLow, EdgeHigh) followed by the same closing and threshold.
//
// The returned image has the same size as img.
func Binarize(img image.Image, opts BinarizeOptions) *image.Gray {
	var candidates image.Image
	if opts.Mode == ModeEdges {
		candidates = EdgeMask(img, opts.EdgeLow, opts.EdgeHigh)
	} else {
		gray := effect.Grayscale(img)
		paint := segment.Threshold(gray, opts.WhiteLevel)
		candidates = imaging.Blur(blend.Multiply(gray, paint), opts.BlurSigma)
	}

	closed := morphology(candidates, opts.KernelSize, opts.Mode != ModeEdges)
	return segment.Threshold(closed, opts.Level)
}

// morphology closes gaps in the candidate mask. The white-paint pipeline
// dilates and erodes once before the closing, the edge pipeline only closes.
func morphology(img image.Image, ksize int, prefilter bool) image.Image {
	if ksize <= 1 {
		return img
	}
	var filters []gift.Filter
	if prefilter {
		filters = append(filters, gift.Maximum(ksize, false), gift.Minimum(ksize, false))
	}
	filters = append(filters, gift.Maximum(ksize, false), gift.Minimum(ksize, false))

	g := gift.New(filters...)
	dst := image.NewGray(g.Bounds(img.Bounds()))
	g.Draw(dst, img)
	return dst
}
