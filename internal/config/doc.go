// Package config loads lane detection settings from a JSON file.
//
// All fields are optional pointers; Get* methods return the configured value
// or the compiled default, so a config file only needs the keys it changes:
//
//	{
//	  "source_quad": [{"x": 1380, "y": 1090}, {"x": 2280, "y": 1090},
//	                  {"x": 3180, "y": 1740}, {"x": 0, "y": 1740}],
//	  "level": 140,
//	  "fill_color": ""
//	}
//
// The server and the process command read the file named by LANE_MCP_CONFIG.
package config
