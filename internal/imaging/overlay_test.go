package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/lane-tools-mcp/internal/lane"
)

func straightLane() *lane.Boundaries {
	return &lane.Boundaries{
		Left:  []lane.Point{{X: 20, Y: 90}, {X: 20, Y: 50}, {X: 20, Y: 10}},
		Right: []lane.Point{{X: 80, Y: 90}, {X: 80, Y: 50}, {X: 80, Y: 10}},
	}
}

func TestOverlay(t *testing.T) {
	frame := solidImage(100, 100, color.Black)

	out, err := Overlay(frame, straightLane(), DefaultOverlayStyle())
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 100, 100), out.Bounds())

	// Fill #64FF00 added at half weight.
	assert.Equal(t, color.RGBA{50, 128, 0, 255}, out.RGBAAt(50, 50), "lane area")
	assert.Equal(t, color.RGBA{0, 0, 255, 255}, out.RGBAAt(20, 50), "left boundary")
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, out.RGBAAt(80, 50), "right boundary")
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, out.RGBAAt(5, 50), "outside the lane")
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, out.RGBAAt(50, 97), "below the lane")
}

func TestOverlay_FillSaturates(t *testing.T) {
	frame := solidImage(100, 100, color.NRGBA{200, 200, 200, 255})

	out, err := Overlay(frame, straightLane(), DefaultOverlayStyle())
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{250, 255, 200, 255}, out.RGBAAt(50, 50))
}

func TestOverlay_NoFill(t *testing.T) {
	style := DefaultOverlayStyle()
	style.FillColor = ""

	out, err := Overlay(solidImage(100, 100, color.Black), straightLane(), style)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, out.RGBAAt(50, 50))
	assert.Equal(t, color.RGBA{0, 0, 255, 255}, out.RGBAAt(20, 50))
}

func TestOverlay_DoesNotModifyFrame(t *testing.T) {
	frame := solidImage(100, 100, color.Black)
	before := append([]uint8(nil), frame.Pix...)

	_, err := Overlay(frame, straightLane(), DefaultOverlayStyle())
	require.NoError(t, err)
	assert.Equal(t, before, frame.Pix)
}

func TestOverlay_NonFinitePoints(t *testing.T) {
	b := straightLane()
	b.Left[1] = lane.Point{X: math.Inf(1), Y: math.Inf(1)}
	b.Right[2] = lane.Point{X: math.NaN(), Y: 10}

	_, err := Overlay(solidImage(100, 100, color.Black), b, DefaultOverlayStyle())
	assert.NoError(t, err)
}

func TestOverlay_EmptyBoundaries(t *testing.T) {
	out, err := Overlay(solidImage(40, 30, color.White), &lane.Boundaries{}, DefaultOverlayStyle())
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, out.RGBAAt(20, 15))
}

func TestOverlay_InvalidColor(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*OverlayStyle)
		want   string
	}{
		{"left", func(s *OverlayStyle) { s.LeftColor = "blue" }, "left color"},
		{"right", func(s *OverlayStyle) { s.RightColor = "" }, "right color"},
		{"fill", func(s *OverlayStyle) { s.FillColor = "#12" }, "fill color"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			style := DefaultOverlayStyle()
			tt.mutate(&style)
			_, err := Overlay(solidImage(10, 10, color.Black), straightLane(), style)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#FF0000", color.RGBA{255, 0, 0, 255}, false},
		{"00ff64", color.RGBA{0, 255, 100, 255}, false},
		{"#abc", color.RGBA{170, 187, 204, 255}, false},
		{"", color.RGBA{}, true},
		{"#GG0000", color.RGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseHexColor(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodePNGBase64(t *testing.T) {
	encoded, err := EncodePNGBase64(solidImage(12, 8, color.White))
	require.NoError(t, err)

	data, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 12, 8), img.Bounds())
}
