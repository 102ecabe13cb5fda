package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var pathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Absolute path to the image file",
}

var outputPathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Optional path to save the result image (extension selects the format). When set, the image is not returned inline.",
}

var rectifiedProperty = map[string]interface{}{
	"type":        "boolean",
	"description": "Set when the input is already a bird's-eye view; skips the perspective warp. Default false",
	"default":     false,
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format. The decoded image is cached for subsequent calls.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},

		// Pipeline Stages
		{
			Name:        "lane_birdseye",
			Description: "Warp a camera frame into the configured top-down (bird's-eye) view of the road and return it as PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":        pathProperty,
					"output_path": outputPathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "lane_binarize",
			Description: "Produce the binary occupancy image the lane tracker runs on (white = lane paint candidate). Optional fields override the configured binarization for this call only.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":      pathProperty,
					"rectified": rectifiedProperty,
					"mode": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"white", "edges"},
						"description": "Keep bright paint (white) or gradient edges (edges)",
					},
					"white_level": map[string]interface{}{
						"type":        "integer",
						"description": "Minimum gray value (0-255) of a paint pixel in white mode",
					},
					"kernel_size": map[string]interface{}{
						"type":        "integer",
						"description": "Morphology kernel size used to bridge gaps in dashed markings",
					},
					"level": map[string]interface{}{
						"type":        "integer",
						"description": "Final threshold (0-255)",
					},
					"output_path": outputPathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "lane_edges",
			Description: "Canny edge mask of an image, as used by the edges binarization mode.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":      pathProperty,
					"rectified": rectifiedProperty,
					"threshold_low": map[string]interface{}{
						"type":        "integer",
						"description": "Lower hysteresis threshold (0-255). Default 50",
						"default":     50,
					},
					"threshold_high": map[string]interface{}{
						"type":        "integer",
						"description": "Upper hysteresis threshold (0-255). Default 150",
						"default":     150,
					},
					"output_path": outputPathProperty,
				},
				"required": []string{"path"},
			},
		},

		// Tracking
		{
			Name:        "lane_track",
			Description: "Run the sliding-window boundary tracker on a binary image from an explicit start window. Returns one sample point per step, bottom to top.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to a binary occupancy image (any non-black pixel is foreground)",
					},
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "Start window left edge",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Start window top edge; must lie inside the image",
					},
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Window width; at most the image width",
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Window height; also the vertical step",
					},
					"show_windows": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the image with every searched window outlined. Default false",
						"default":     false,
					},
				},
				"required": []string{"path", "x", "y", "width", "height"},
			},
		},
		{
			Name:        "lane_detect",
			Description: "Run the full pipeline on a camera frame: rectify, binarize, track both lane boundaries and map them back into the frame. Returns both boundaries in bird's-eye and camera coordinates.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"include_overlay": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the frame with the lane drawn on it. Default false",
						"default":     false,
					},
					"include_plot": map[string]interface{}{
						"type":        "boolean",
						"description": "Return a chart of the bird's-eye boundaries. Default false",
						"default":     false,
					},
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional path to save the overlay image",
					},
				},
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
