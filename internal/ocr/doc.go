// Package ocr reads dimension callouts on floor-plan drawings using
// Tesseract (via gosseract/v2).
//
// The blueprint detector marks dimension strings ("12'6\"", "3.60 m") with
// a Dimension box. Reader crops each box, upscales it, and runs a single-line
// OCR pass; ParseDimension turns the recognized text into meters when it can.
//
// # Prerequisites
//
// Tesseract and its language data must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// OCR is best-effort. A region that fails to read is skipped and logged; it
// never fails the image it belongs to.
package ocr
