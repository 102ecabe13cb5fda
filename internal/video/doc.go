// Package video reads frames from, and writes frames to, image sequences and
// video files.
//
// A Source yields frames in order and returns io.EOF once exhausted. Image
// directories are always supported. Video files are decoded with gocv and
// need the binary to be built with the gocv tag (and OpenCV installed):
//
//	go build -tags gocv ./cmd/lane-tools-mcp
//
// Without the tag OpenVideo returns ErrVideoUnsupported.
package video
