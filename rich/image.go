package rich

import (
	"container/list"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rjkroege/mdedit/draw"
	xdraw "golang.org/x/image/draw"
)

// Image size limits to prevent memory exhaustion.
const (
	MaxImageWidth  = 4096             // Maximum width in pixels
	MaxImageHeight = 4096             // Maximum height in pixels
	MaxImageBytes  = 16 * 1024 * 1024 // 16MB uncompressed (RGBA at 4 bytes/pixel)
)

// ErrRemoteImage is returned for image destinations that are URLs.
var ErrRemoteImage = errors.New("remote images are not loaded")

// LoadImage loads an image from a file path.
// Supports PNG, JPEG, and GIF (first frame only for GIF).
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width > MaxImageWidth || height > MaxImageHeight {
		return nil, fmt.Errorf("image too large: %dx%d (max %dx%d)",
			width, height, MaxImageWidth, MaxImageHeight)
	}
	if size := width * height * 4; size > MaxImageBytes {
		return nil, fmt.Errorf("image uncompressed size exceeds limit: %d bytes (max %d bytes)",
			size, MaxImageBytes)
	}
	return img, nil
}

// CachedImage is the result of loading one image destination. Failed loads
// are cached too so that a missing file is not retried on every layout.
type CachedImage struct {
	Original      image.Image
	Width, Height int
	Err           error
}

// ImageCache loads images by destination and keeps the most recently used
// ones.
type ImageCache struct {
	mu       sync.Mutex
	capacity int
	base     string
	order    *list.List // of string, most recent first
	entries  map[string]*cacheEntry
}

type cacheEntry struct {
	img  *CachedImage
	elem *list.Element
}

// NewImageCache returns a cache holding at most capacity images.
func NewImageCache(capacity int) *ImageCache {
	if capacity < 1 {
		capacity = 1
	}
	return &ImageCache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*cacheEntry),
	}
}

// SetBasePath sets the path of the document. Relative destinations are
// resolved against its directory. Changing it empties the cache.
func (c *ImageCache) SetBasePath(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if path == c.base {
		return
	}
	c.base = path
	c.order.Init()
	c.entries = make(map[string]*cacheEntry)
}

// Get returns the image at dest, loading it on first use.
func (c *ImageCache) Get(dest string) *CachedImage {
	c.mu.Lock()
	if e, ok := c.entries[dest]; ok {
		c.order.MoveToFront(e.elem)
		c.mu.Unlock()
		return e.img
	}
	path := c.resolve(dest)
	c.mu.Unlock()

	ci := &CachedImage{}
	if path == "" {
		ci.Err = fmt.Errorf("%q: %w", dest, ErrRemoteImage)
	} else if img, err := LoadImage(path); err != nil {
		ci.Err = err
	} else {
		ci.Original = img
		ci.Width = img.Bounds().Dx()
		ci.Height = img.Bounds().Dy()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[dest]; ok {
		return e.img
	}
	c.entries[dest] = &cacheEntry{img: ci, elem: c.order.PushFront(dest)}
	for c.order.Len() > c.capacity {
		last := c.order.Back()
		c.order.Remove(last)
		delete(c.entries, last.Value.(string))
	}
	return ci
}

// Len returns the number of cached destinations.
func (c *ImageCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// resolve maps dest to a file path, or "" for URLs.
func (c *ImageCache) resolve(dest string) string {
	if i := strings.Index(dest, "://"); i > 0 && !strings.HasPrefix(dest, "file://") {
		return ""
	}
	dest = strings.TrimPrefix(dest, "file://")
	if filepath.IsAbs(dest) || c.base == "" {
		return dest
	}
	return filepath.Join(filepath.Dir(c.base), dest)
}

// ConvertToPlan9 returns the pixels of img in the RGBA32 layout expected by
// Image.Load: premultiplied, four bytes per pixel in the order A, B, G, R.
func ConvertToPlan9(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, errors.New("nil image")
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("empty image %v", b)
	}
	out := make([]byte, 0, b.Dx()*b.Dy()*4)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := img.At(x, y).RGBA()
			out = append(out, byte(a>>8), byte(bl>>8), byte(g>>8), byte(r>>8))
		}
	}
	return out, nil
}

// scaleTo returns img resized to w by h with bilinear filtering, or img
// itself when it already has that size.
func scaleTo(img image.Image, w, h int) image.Image {
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// upload copies img into a new display image of size w by h. The caller
// frees the result.
func upload(d draw.Display, img image.Image, w, h int) (draw.Image, error) {
	data, err := ConvertToPlan9(scaleTo(img, w, h))
	if err != nil {
		return nil, err
	}
	r := image.Rect(0, 0, w, h)
	dst, err := d.AllocImage(r, draw.RGBA32, false, 0)
	if err != nil {
		return nil, err
	}
	if _, err := dst.Load(r, data); err != nil {
		dst.Free()
		return nil, err
	}
	return dst, nil
}
