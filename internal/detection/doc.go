// Package detection finds labeled objects in images through pluggable
// providers.
//
// Three provider kinds exist:
//
//   - blueprint: a detector trained on floor-plan symbols (walls, doors, ...)
//   - general: a general-purpose room-object detector
//   - openvocab: a prompt-driven detector, optionally paired with a segmenter
//
// Providers are acquired lazily by a Dispatcher, at most once per kind for
// the life of the Dispatcher. Failed acquisitions are remembered as well so a
// dead service is not rechecked for every image.
//
// # Substitution Policy
//
// Blueprint mode prefers the blueprint provider and falls back to the
// general provider. Room mode prefers the open-vocabulary provider when one
// is configured and falls back to the general provider. Every substitution
// is logged and recorded on the Selection, so the output can report which
// provider actually ran. When the general provider is unavailable too the
// call fails with errs.ErrProviderUnavailable.
//
// # Coordinate System
//
// Boxes are (x1, y1, x2, y2) in source-image pixels with x1 <= x2 and
// y1 <= y2. Masks, when present, always cover the full source image and use
// 255 for pixels inside the object.
package detection
