// Package imaging provides the low-level image operations the perception
// pipeline is built on.
//
// This package implements image enumeration and cached decoding, Canny edge
// detection, Hough line segments, colorfulness and brightness measures,
// cropping and resizing, and the drawing primitives used by the overlay
// renderer. All operations work with standard Go image.Image types and use a
// coordinate system where (0,0) is at the top-left corner, X increases
// rightward, and Y increases downward.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// # Recognized Formats
//
// ListImages and IsImagePath accept .jpg, .jpeg, .png, .bmp, .tif and .tiff
// (case-insensitive). Decoders for all of them are registered on import, plus
// GIF for completeness.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Individual image operations
// are stateless and can be called concurrently on different images.
//
// # Error Handling
//
// Loading errors wrap the sentinels in package errs: a missing file wraps
// errs.ErrNotFound and undecodable bytes wrap errs.ErrDegenerateInput.
package imaging
