package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"time"

	"github.com/ironsheep/lane-tools-mcp/internal/config"
	"github.com/ironsheep/lane-tools-mcp/internal/imaging"
	"github.com/ironsheep/lane-tools-mcp/internal/lane"
	"github.com/ironsheep/lane-tools-mcp/internal/video"
)

// Processor runs the lane detection pipeline with a fixed configuration.
// It holds no per-frame state and is safe for concurrent use.
type Processor struct {
	// Debug enables progress logging in Run.
	Debug bool

	toView   *imaging.Homography
	toCamera *imaging.Homography
	width    int
	height   int
	left     lane.Window
	right    lane.Window
	binarize imaging.BinarizeOptions
	style    imaging.OverlayStyle
	every    int
}

// FrameResult holds every intermediate product of one frame.
type FrameResult struct {
	// BirdsEye is the rectified road area.
	BirdsEye *image.NRGBA
	// Binary is the occupancy image the tracker ran on.
	Binary *image.Gray
	// View holds the boundaries in bird's-eye coordinates.
	View *lane.Boundaries
	// Camera holds the same boundaries in frame coordinates.
	Camera *lane.Boundaries
	// Overlay is the input frame with the lane drawn on it.
	Overlay *image.RGBA
}

// Stats summarizes a Run.
type Stats struct {
	Frames  int           `json:"frames"`
	Elapsed time.Duration `json:"elapsed"`
}

// FPS returns the average processing rate.
func (s Stats) FPS() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Frames) / s.Elapsed.Seconds()
}

// New builds a Processor from cfg. The configuration is validated and the
// perspective transform and its inverse are computed once.
func New(cfg *config.Config) (*Processor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	width, height := cfg.GetOutputSize()
	toView, err := imaging.NewHomography(cfg.GetSourceQuad(), imaging.RectQuad(width, height))
	if err != nil {
		return nil, fmt.Errorf("failed to compute perspective transform: %w", err)
	}
	toCamera, err := toView.Inverse()
	if err != nil {
		return nil, fmt.Errorf("failed to invert perspective transform: %w", err)
	}

	return &Processor{
		toView:   toView,
		toCamera: toCamera,
		width:    width,
		height:   height,
		left:     cfg.GetLeftWindow(),
		right:    cfg.GetRightWindow(),
		binarize: cfg.GetBinarizeOptions(),
		style:    cfg.GetOverlayStyle(),
		every:    cfg.GetProgressInterval(),
	}, nil
}

// BirdsEye rectifies frame into the configured bird's-eye view.
func (p *Processor) BirdsEye(frame image.Image) (*image.NRGBA, error) {
	return imaging.WarpPerspective(frame, p.toView, p.width, p.height)
}

// BinarizeOptions returns the configured binarization settings.
func (p *Processor) BinarizeOptions() imaging.BinarizeOptions {
	return p.binarize
}

// ToCamera maps bird's-eye points into frame coordinates.
func (p *Processor) ToCamera(b *lane.Boundaries) *lane.Boundaries {
	return b.Map(p.toCamera.Apply)
}

// Process runs the full pipeline on one frame.
func (p *Processor) Process(ctx context.Context, frame image.Image) (*FrameResult, error) {
	if frame == nil || frame.Bounds().Empty() {
		return nil, lane.ErrEmptyImage
	}

	view, err := p.BirdsEye(frame)
	if err != nil {
		return nil, fmt.Errorf("failed to rectify frame: %w", err)
	}
	binary := imaging.Binarize(view, p.binarize)

	bounds, err := lane.TrackPair(ctx, binary, p.left, p.right)
	if err != nil {
		return nil, fmt.Errorf("failed to track lane: %w", err)
	}

	camera := p.ToCamera(bounds)
	overlay, err := imaging.Overlay(frame, camera, p.style)
	if err != nil {
		return nil, fmt.Errorf("failed to draw overlay: %w", err)
	}

	return &FrameResult{
		BirdsEye: view,
		Binary:   binary,
		View:     bounds,
		Camera:   camera,
		Overlay:  overlay,
	}, nil
}

// Run processes frames from src until it is exhausted, writing each overlay
// to sink. It stops at the first failing frame or when ctx is canceled.
func (p *Processor) Run(ctx context.Context, src video.Source, sink video.Sink) (Stats, error) {
	var stats Stats
	start := time.Now()

	for {
		frame, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return p.finish(stats, start), fmt.Errorf("frame %d: %w", stats.Frames, err)
		}

		result, err := p.Process(ctx, frame)
		if err != nil {
			return p.finish(stats, start), fmt.Errorf("frame %d: %w", stats.Frames, err)
		}
		if err := sink.Write(ctx, result.Overlay); err != nil {
			return p.finish(stats, start), fmt.Errorf("frame %d: %w", stats.Frames, err)
		}
		stats.Frames++

		if p.Debug && stats.Frames%p.every == 0 {
			s := p.finish(stats, start)
			log.Printf("Processed %d frames (%.1f fps)", s.Frames, s.FPS())
		}
	}

	stats = p.finish(stats, start)
	if p.Debug {
		log.Printf("Finished: %d frames in %s (%.1f fps)", stats.Frames, stats.Elapsed.Round(time.Millisecond), stats.FPS())
	}
	return stats, nil
}

func (p *Processor) finish(s Stats, start time.Time) Stats {
	s.Elapsed = time.Since(start)
	return s
}
