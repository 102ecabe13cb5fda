package video

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
)

// ErrVideoUnsupported is returned by OpenVideo when the binary was built
// without video decoding support.
var ErrVideoUnsupported = errors.New("video decoding not supported in this build (rebuild with -tags gocv)")

// Source yields frames in presentation order.
type Source interface {
	// Next returns the next frame, or io.EOF when there are no more.
	Next(ctx context.Context) (image.Image, error)
	Close() error
}

// Sink consumes processed frames.
type Sink interface {
	Write(ctx context.Context, frame image.Image) error
	Close() error
}

// Open returns a DirSource for directories and a video Source for anything
// else.
func Open(path string) (Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	if info.IsDir() {
		src, err := NewDirSource(path)
		if err != nil {
			return nil, err
		}
		return src, nil
	}
	return OpenVideo(path)
}
