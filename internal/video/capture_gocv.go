//go:build gocv

package video

import (
	"context"
	"fmt"
	"image"
	"io"

	"gocv.io/x/gocv"
)

type captureSource struct {
	vc  *gocv.VideoCapture
	mat gocv.Mat
}

// OpenVideo opens a video file for frame-by-frame decoding.
func OpenVideo(path string) (Source, error) {
	vc, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open video: %w", err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("failed to open video: %s", path)
	}
	return &captureSource{vc: vc, mat: gocv.NewMat()}, nil
}

func (s *captureSource) Next(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ok := s.vc.Read(&s.mat); !ok || s.mat.Empty() {
		return nil, io.EOF
	}
	img, err := s.mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert frame: %w", err)
	}
	return img, nil
}

func (s *captureSource) Close() error {
	s.mat.Close()
	return s.vc.Close()
}
