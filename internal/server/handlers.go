package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"

	dimaging "github.com/disintegration/imaging"

	"github.com/ironsheep/lane-tools-mcp/internal/imaging"
	"github.com/ironsheep/lane-tools-mcp/internal/lane"
)

// errInvalidArgs marks failures caused by the caller's arguments rather than
// by tool execution. They are reported with the invalid-params code.
var errInvalidArgs = errors.New("invalid arguments")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "lane_detect").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Argument errors and unknown tools return code -32602; failures while
// running a tool return code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if errors.Is(err, errInvalidArgs) {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}
	if err != nil {
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Pipeline Stages
	case "lane_birdseye":
		return s.handleLaneBirdseye(args)
	case "lane_binarize":
		return s.handleLaneBinarize(args)
	case "lane_edges":
		return s.handleLaneEdges(args)

	// Tracking
	case "lane_track":
		return s.handleLaneTrack(args)
	case "lane_detect":
		return s.handleLaneDetect(ctx, args)

	default:
		return nil, fmt.Errorf("%w: unknown tool: %s", errInvalidArgs, name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments and checks the mandatory path.
func decodeArgs(args json.RawMessage, dst interface{ path() string }) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing arguments", errInvalidArgs)
	}
	if err := json.Unmarshal(args, dst); err != nil {
		return fmt.Errorf("%w: %v", errInvalidArgs, err)
	}
	if dst.path() == "" {
		return fmt.Errorf("%w: path is required", errInvalidArgs)
	}
	return nil
}

// ImageResult is an image produced by a tool, either inline or saved.
type ImageResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64,omitempty"`
	MimeType    string `json:"mime_type,omitempty"`
	SavedTo     string `json:"saved_to,omitempty"`
}

// imageResult saves img to outputPath when set, and otherwise encodes it as
// base64 PNG.
func imageResult(img image.Image, outputPath string) (*ImageResult, error) {
	res := &ImageResult{Width: img.Bounds().Dx(), Height: img.Bounds().Dy()}
	if outputPath != "" {
		if err := dimaging.Save(img, outputPath); err != nil {
			return nil, fmt.Errorf("failed to save image: %w", err)
		}
		res.SavedTo = outputPath
		return res, nil
	}

	encoded, err := imaging.EncodePNGBase64(img)
	if err != nil {
		return nil, err
	}
	res.ImageBase64 = encoded
	res.MimeType = "image/png"
	return res, nil
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (a *imageLoadArgs) path() string { return a.Path }

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Pipeline Stage Handlers ===

type laneBirdseyeArgs struct {
	Path       string `json:"path"`
	OutputPath string `json:"output_path"`
}

func (a *laneBirdseyeArgs) path() string { return a.Path }

func (s *Server) handleLaneBirdseye(args json.RawMessage) (interface{}, error) {
	var a laneBirdseyeArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	frame, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	view, err := s.proc.BirdsEye(frame)
	if err != nil {
		return nil, err
	}
	return imageResult(view, a.OutputPath)
}

// loadView loads path and, unless rectified is set, warps it into the
// bird's-eye view.
func (s *Server) loadView(path string, rectified bool) (image.Image, error) {
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	if rectified {
		return img, nil
	}
	return s.proc.BirdsEye(img)
}

type laneBinarizeArgs struct {
	Path       string `json:"path"`
	Rectified  bool   `json:"rectified"`
	Mode       string `json:"mode"`
	WhiteLevel *int   `json:"white_level"`
	KernelSize *int   `json:"kernel_size"`
	Level      *int   `json:"level"`
	OutputPath string `json:"output_path"`
}

func (a *laneBinarizeArgs) path() string { return a.Path }

func (s *Server) handleLaneBinarize(args json.RawMessage) (interface{}, error) {
	var a laneBinarizeArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	opts := s.proc.BinarizeOptions()
	if a.Mode != "" {
		opts.Mode = a.Mode
	}
	if a.KernelSize != nil {
		opts.KernelSize = *a.KernelSize
	}
	for _, f := range []struct {
		name string
		v    *int
		dst  *uint8
	}{
		{"white_level", a.WhiteLevel, &opts.WhiteLevel},
		{"level", a.Level, &opts.Level},
	} {
		if f.v == nil {
			continue
		}
		if *f.v < 0 || *f.v > 255 {
			return nil, fmt.Errorf("%w: %s must be between 0 and 255, got %d", errInvalidArgs, f.name, *f.v)
		}
		*f.dst = uint8(*f.v)
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidArgs, err)
	}

	view, err := s.loadView(a.Path, a.Rectified)
	if err != nil {
		return nil, err
	}
	return imageResult(imaging.Binarize(view, opts), a.OutputPath)
}

type laneEdgesArgs struct {
	Path          string `json:"path"`
	Rectified     bool   `json:"rectified"`
	ThresholdLow  *int   `json:"threshold_low"`
	ThresholdHigh *int   `json:"threshold_high"`
	OutputPath    string `json:"output_path"`
}

func (a *laneEdgesArgs) path() string { return a.Path }

func (s *Server) handleLaneEdges(args json.RawMessage) (interface{}, error) {
	var a laneEdgesArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	low, high := 50, 150
	if a.ThresholdLow != nil {
		low = *a.ThresholdLow
	}
	if a.ThresholdHigh != nil {
		high = *a.ThresholdHigh
	}
	if low < 0 || high > 255 || low > high {
		return nil, fmt.Errorf("%w: invalid thresholds: low=%d high=%d", errInvalidArgs, low, high)
	}

	view, err := s.loadView(a.Path, a.Rectified)
	if err != nil {
		return nil, err
	}
	return imageResult(imaging.EdgeMask(view, low, high), a.OutputPath)
}

// === Tracking Handlers ===

type laneTrackArgs struct {
	Path        string `json:"path"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ShowWindows bool   `json:"show_windows"`
}

func (a *laneTrackArgs) path() string { return a.Path }

// TrackResult is the output of lane_track.
type TrackResult struct {
	Start   lane.Window   `json:"start"`
	Points  []lane.Point  `json:"points"`
	Windows []lane.Window `json:"windows"`
	Image   *ImageResult  `json:"image,omitempty"`
}

func (s *Server) handleLaneTrack(args json.RawMessage) (interface{}, error) {
	var a laneTrackArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	start := lane.Window{X: a.X, Y: a.Y, Width: a.Width, Height: a.Height}
	steps, err := lane.Trace(img, start)
	if errors.Is(err, lane.ErrInvalidWindow) {
		return nil, fmt.Errorf("%w: %v", errInvalidArgs, err)
	}
	if err != nil {
		return nil, err
	}

	res := &TrackResult{
		Start:   start,
		Points:  make([]lane.Point, len(steps)),
		Windows: make([]lane.Window, len(steps)),
	}
	for i, st := range steps {
		res.Points[i] = st.Point
		res.Windows[i] = st.Window
	}

	if a.ShowWindows {
		drawn, err := imaging.DrawWindows(img, steps, "#00FF00", true)
		if err != nil {
			return nil, err
		}
		if res.Image, err = imageResult(drawn, ""); err != nil {
			return nil, err
		}
	}
	return res, nil
}

type laneDetectArgs struct {
	Path           string `json:"path"`
	IncludeOverlay bool   `json:"include_overlay"`
	IncludePlot    bool   `json:"include_plot"`
	OutputPath     string `json:"output_path"`
}

func (a *laneDetectArgs) path() string { return a.Path }

// DetectResult is the output of lane_detect.
type DetectResult struct {
	Width    int              `json:"width"`
	Height   int              `json:"height"`
	BirdsEye *lane.Boundaries `json:"birdseye"`
	Camera   *lane.Boundaries `json:"camera"`
	Overlay  *ImageResult     `json:"overlay,omitempty"`
	Plot     *ImageResult     `json:"plot,omitempty"`
}

func (s *Server) handleLaneDetect(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a laneDetectArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	frame, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	fr, err := s.proc.Process(ctx, frame)
	if err != nil {
		return nil, err
	}

	res := &DetectResult{
		Width:    frame.Bounds().Dx(),
		Height:   frame.Bounds().Dy(),
		BirdsEye: fr.View,
		Camera:   fr.Camera,
	}

	if a.IncludeOverlay || a.OutputPath != "" {
		if res.Overlay, err = imageResult(fr.Overlay, a.OutputPath); err != nil {
			return nil, err
		}
	}

	if a.IncludePlot {
		var buf bytes.Buffer
		w, h := fr.BirdsEye.Bounds().Dx(), fr.BirdsEye.Bounds().Dy()
		if err := lane.PlotBoundaries(fr.View, w, h, &buf); err != nil {
			return nil, err
		}
		cfg, err := png.DecodeConfig(bytes.NewReader(buf.Bytes()))
		if err != nil {
			return nil, fmt.Errorf("failed to read plot: %w", err)
		}
		res.Plot = &ImageResult{
			Width:       cfg.Width,
			Height:      cfg.Height,
			ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
			MimeType:    "image/png",
		}
	}
	return res, nil
}
