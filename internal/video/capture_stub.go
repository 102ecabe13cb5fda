//go:build !gocv

package video

// OpenVideo always fails with ErrVideoUnsupported; build with -tags gocv to
// decode video files.
func OpenVideo(path string) (Source, error) {
	return nil, ErrVideoUnsupported
}
