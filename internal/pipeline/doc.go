// Package pipeline turns camera frames into lane boundaries.
//
// For every frame a Processor
//
//  1. rectifies the road area into a bird's-eye view,
//  2. binarizes the view into an occupancy image,
//  3. tracks the left and right boundaries with lane.TrackPair,
//  4. maps the tracked points back into camera coordinates, and
//  5. draws the lane onto the original frame.
//
// Frames are independent: nothing is carried from one frame to the next.
package pipeline
