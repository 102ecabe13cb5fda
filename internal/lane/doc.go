// Package lane locates lane boundaries in a top-down binary occupancy image.
//
// The tracker scans a fixed-size search window upward one window height at a
// time. At each step it averages the columns of all foreground (non-zero)
// pixels inside the window, emits a sample point at that column and the
// window's vertical center, and shifts the window horizontally by the observed
// drift before moving up.
//
// # Coordinate System
//
// Coordinates follow the image convention: (0,0) is the top-left pixel, X
// grows rightward and Y grows downward. Sample points are returned in the
// occupancy image's coordinates, ordered from the bottom of the image to the
// top.
//
// # Degenerate Input
//
// An empty window never stops tracking: the sample falls back to the window's
// own center and the window does not drift. A window pushed past the left or
// right edge is clamped back inside the image and tracking continues from the
// clamped position.
//
// # Thread Safety
//
// Track never mutates the image and keeps all state local to the call, so any
// number of calls may run concurrently on the same image. TrackPair uses this
// to follow both sides of the lane in parallel.
package lane
