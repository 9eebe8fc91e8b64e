package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder

	"github.com/ironsheep/tourguide/internal/errs"
)

// ImageExtensions is the fixed set of recognized image file extensions.
// Matching is case-insensitive.
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".tif", ".tiff"}

// IsImagePath reports whether path carries a recognized image extension.
func IsImagePath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range ImageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ListImages enumerates the images under path.
//
// Parameters:
//   - path: Either a single image file or a directory. Directories are scanned
//     non-recursively; only direct children with a recognized extension count.
//
// Returns:
//   - []string: Image paths sorted by name, so enumeration order is stable.
//   - error: Wraps errs.ErrNotFound when path is neither an image file nor a
//     directory holding at least one image.
func ListImages(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("invalid input path %q: %w", path, errs.ErrNotFound)
	}

	if !info.IsDir() {
		if IsImagePath(path) {
			return []string{path}, nil
		}
		return nil, fmt.Errorf("input %q is not a recognized image: %w", path, errs.ErrNotFound)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %q: %w", path, errs.ErrNotFound)
	}

	var images []string
	for _, e := range entries {
		if e.IsDir() || !IsImagePath(e.Name()) {
			continue
		}
		images = append(images, filepath.Join(path, e.Name()))
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("no valid images found in %q: %w", path, errs.ErrNotFound)
	}

	sort.Strings(images)
	return images, nil
}

// ImageCache provides thread-safe caching of decoded images so that the
// classifier, the detectors, and the overlay renderer share one decode per file.
//
// ImageCache is safe for concurrent use by multiple goroutines. Cached images
// remain in memory until Evict or Clear is called; the batch runner evicts each
// image once its entry is complete.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load retrieves an image from the cache or decodes it from disk.
//
// # Errors
//
//   - Wraps errs.ErrNotFound if the file does not exist or cannot be opened
//   - Wraps errs.ErrDegenerateInput if the bytes are not a decodable image
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %v: %w", err, errs.ErrNotFound)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %v: %w", filepath.Base(path), err, errs.ErrDegenerateInput)
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}
