package video

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
)

var frameExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// DirSource reads the image files of a directory in lexical order.
// Subdirectories and files with other extensions are skipped.
type DirSource struct {
	paths []string
	next  int
}

// NewDirSource lists the frames in dir. An empty directory is not an error;
// its first Next returns io.EOF.
func NewDirSource(dir string) (*DirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !frameExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)

	return &DirSource{paths: paths}, nil
}

// Len returns the number of frames in the directory.
func (s *DirSource) Len() int { return len(s.paths) }

// Next decodes the next frame.
func (s *DirSource) Next(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.next >= len(s.paths) {
		return nil, io.EOF
	}
	path := s.paths[s.next]
	s.next++

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to load frame %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

func (s *DirSource) Close() error { return nil }

// DirSink writes frames as numbered PNG files (frame_000000.png, ...).
type DirSink struct {
	dir    string
	prefix string
	n      int
}

// NewDirSink creates dir if needed. Files are named prefix_NNNNNN.png; an
// empty prefix means "frame".
func NewDirSink(dir, prefix string) (*DirSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if prefix == "" {
		prefix = "frame"
	}
	return &DirSink{dir: dir, prefix: prefix}, nil
}

// Write saves frame as the next file in the sequence.
func (s *DirSink) Write(ctx context.Context, frame image.Image) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := filepath.Join(s.dir, fmt.Sprintf("%s_%06d.png", s.prefix, s.n))
	if err := imaging.Save(frame, path); err != nil {
		return fmt.Errorf("failed to write frame %d: %w", s.n, err)
	}
	s.n++
	return nil
}

// Count returns the number of frames written.
func (s *DirSink) Count() int { return s.n }

func (s *DirSink) Close() error { return nil }
