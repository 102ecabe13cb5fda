// Package imaging holds the image stages around the boundary tracker: frame
// loading and caching, perspective rectification into a bird's-eye view,
// binarization into an occupancy image, and the debug and result overlays.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward. Every image returned by
// this package has its origin at (0,0); inputs with a non-zero origin are
// read relative to their top-left pixel.
//
// # Pipeline
//
// A dashcam frame typically flows through
//
//	frame ─ WarpPerspective ─▶ bird's-eye ─ Binarize ─▶ occupancy ─ lane.TrackPair
//
// and the tracked points are mapped back through the inverse Homography and
// drawn with Overlay.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. All other functions are stateless,
// never modify their inputs, and may be called concurrently.
package imaging
