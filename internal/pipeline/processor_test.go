package pipeline

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/lane-tools-mcp/internal/config"
	limaging "github.com/ironsheep/lane-tools-mcp/internal/imaging"
	"github.com/ironsheep/lane-tools-mcp/internal/lane"
	"github.com/ironsheep/lane-tools-mcp/internal/video"
)

// birdsEyeRoad returns a 640×480 top-down road with paint stripes covering
// columns [80,100) and [550,570).
func birdsEyeRoad() *image.NRGBA {
	img := imaging.New(640, 480, color.Gray{Y: 60})
	paint := color.NRGBA{R: 240, G: 240, B: 240, A: 255}
	for y := 0; y < 480; y++ {
		for x := 80; x < 100; x++ {
			img.Set(x, y, paint)
		}
		for x := 550; x < 570; x++ {
			img.Set(x, y, paint)
		}
	}
	return img
}

// identityConfig maps a 640×480 frame onto itself.
func identityConfig() *config.Config {
	q := limaging.RectQuad(640, 480)
	return &config.Config{SourceQuad: &q}
}

// smallCameraConfig is the default camera geometry scaled down to a 960×540
// frame.
func smallCameraConfig() (*config.Config, limaging.Quad) {
	q := limaging.Quad{{X: 345, Y: 272.5}, {X: 570, Y: 272.5}, {X: 795, Y: 435}, {X: 0, Y: 435}}
	return &config.Config{SourceQuad: &q}, q
}

func TestNew_InvalidConfig(t *testing.T) {
	bad := &config.Config{LeftWindow: &lane.Window{X: 0, Y: 900, Width: 10, Height: 10}}
	_, err := New(bad)
	assert.ErrorIs(t, err, lane.ErrInvalidWindow)

	collapsed := limaging.Quad{}
	_, err = New(&config.Config{SourceQuad: &collapsed})
	assert.ErrorIs(t, err, limaging.ErrDegenerateQuad)
}

func TestProcess_Identity(t *testing.T) {
	p, err := New(identityConfig())
	require.NoError(t, err)

	res, err := p.Process(context.Background(), birdsEyeRoad())
	require.NoError(t, err)

	require.Len(t, res.View.Left, 8)
	require.Len(t, res.View.Right, 8)
	for i := range res.View.Left {
		assert.InDelta(t, 89.5, res.View.Left[i].X, 0.01, "left point %d", i)
		assert.InDelta(t, 559.5, res.View.Right[i].X, 0.01, "right point %d", i)
		assert.InDelta(t, res.View.Left[i].X, res.Camera.Left[i].X, 1e-6)
		assert.InDelta(t, res.View.Left[i].Y, res.Camera.Left[i].Y, 1e-6)
	}

	assert.Equal(t, image.Rect(0, 0, 640, 480), res.BirdsEye.Bounds())
	assert.Equal(t, image.Rect(0, 0, 640, 480), res.Binary.Bounds())
	assert.Equal(t, image.Rect(0, 0, 640, 480), res.Overlay.Bounds())
	assert.Equal(t, uint8(255), res.Binary.GrayAt(90, 240).Y)
	assert.Equal(t, uint8(0), res.Binary.GrayAt(320, 240).Y)

	// Lane area between the boundaries is tinted green.
	c := res.Overlay.RGBAAt(320, 300)
	assert.Greater(t, c.G, c.R)
}

func TestProcess_CameraGeometry(t *testing.T) {
	cfg, quad := smallCameraConfig()
	p, err := New(cfg)
	require.NoError(t, err)

	// Project the top-down road into the camera frame.
	toCamera, err := limaging.NewHomography(limaging.RectQuad(640, 480), quad)
	require.NoError(t, err)
	frame, err := limaging.WarpPerspective(birdsEyeRoad(), toCamera, 960, 540)
	require.NoError(t, err)

	res, err := p.Process(context.Background(), frame)
	require.NoError(t, err)
	require.Len(t, res.View.Left, 8)

	for i := range res.View.Left {
		assert.InDelta(t, 89.5, res.View.Left[i].X, 3, "left point %d", i)
		assert.InDelta(t, 559.5, res.View.Right[i].X, 3, "right point %d", i)

		want := toCamera.Apply(res.View.Left[i])
		assert.InDelta(t, want.X, res.Camera.Left[i].X, 1e-6)
		assert.InDelta(t, want.Y, res.Camera.Left[i].Y, 1e-6)
	}

	// The lane narrows toward the horizon in the camera frame.
	bottom := res.Camera.Right[0].X - res.Camera.Left[0].X
	top := res.Camera.Right[7].X - res.Camera.Left[7].X
	assert.Greater(t, bottom, top)
	assert.Equal(t, image.Rect(0, 0, 960, 540), res.Overlay.Bounds())
}

func TestProcess_EmptyFrame(t *testing.T) {
	p, err := New(identityConfig())
	require.NoError(t, err)

	_, err = p.Process(context.Background(), nil)
	assert.ErrorIs(t, err, lane.ErrEmptyImage)
	_, err = p.Process(context.Background(), image.NewRGBA(image.Rect(0, 0, 0, 0)))
	assert.ErrorIs(t, err, lane.ErrEmptyImage)
}

func TestProcess_CanceledContext(t *testing.T) {
	p, err := New(identityConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Process(ctx, birdsEyeRoad())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_DirToDir(t *testing.T) {
	in := t.TempDir()
	for _, name := range []string{"000.png", "001.png", "002.png"} {
		require.NoError(t, imaging.Save(birdsEyeRoad(), filepath.Join(in, name)))
	}
	out := filepath.Join(t.TempDir(), "overlay")

	src, err := video.NewDirSource(in)
	require.NoError(t, err)
	sink, err := video.NewDirSink(out, "")
	require.NoError(t, err)

	p, err := New(identityConfig())
	require.NoError(t, err)
	p.Debug = true

	stats, err := p.Run(context.Background(), src, sink)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Frames)
	assert.Positive(t, stats.Elapsed)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

type fakeSource struct {
	frames []image.Image
	failAt int
}

func (s *fakeSource) Next(ctx context.Context) (image.Image, error) {
	if len(s.frames) == 0 {
		return nil, io.EOF
	}
	if s.failAt == 0 {
		return nil, errors.New("decoder exploded")
	}
	s.failAt--
	f := s.frames[0]
	s.frames = s.frames[1:]
	return f, nil
}

func (s *fakeSource) Close() error { return nil }

type memSink struct{ frames []image.Image }

func (s *memSink) Write(_ context.Context, f image.Image) error {
	s.frames = append(s.frames, f)
	return nil
}

func (s *memSink) Close() error { return nil }

func TestRun_SourceError(t *testing.T) {
	p, err := New(identityConfig())
	require.NoError(t, err)

	road := birdsEyeRoad()
	src := &fakeSource{frames: []image.Image{road, road, road}, failAt: 2}
	sink := &memSink{}

	stats, err := p.Run(context.Background(), src, sink)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frame 2")
	assert.Contains(t, err.Error(), "decoder exploded")
	assert.Equal(t, 2, stats.Frames)
	assert.Len(t, sink.frames, 2)
}

func TestRun_Empty(t *testing.T) {
	p, err := New(identityConfig())
	require.NoError(t, err)

	stats, err := p.Run(context.Background(), &fakeSource{failAt: -1}, &memSink{})
	require.NoError(t, err)
	assert.Zero(t, stats.Frames)
}

func TestStats_FPS(t *testing.T) {
	assert.Zero(t, Stats{}.FPS())
	assert.InDelta(t, 25.0, Stats{Frames: 50, Elapsed: 2e9}.FPS(), 1e-9)
}
