package renderer

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "golang.org/x/image/webp"

	"github.com/level5eng/docflow/layout"
)

const builtinPrefix = "built-in:"

// ImageStore resolves image references and caches decoded images. A
// reference is "built-in:<name>", an absolute path, or a path relative to
// the base directory.
type ImageStore struct {
	baseDir string
	builtin map[string][]byte

	mu    sync.Mutex
	cache map[string]image.Image
}

// NewImageStore returns a store rooted at baseDir.
func NewImageStore(baseDir string, builtin map[string][]byte) *ImageStore {
	return &ImageStore{baseDir: baseDir, builtin: builtin, cache: map[string]image.Image{}}
}

// Load decodes ref. A reference that names no asset yields an error
// wrapping layout.ErrImageNotFound.
func (s *ImageStore) Load(ref string) (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if img, ok := s.cache[ref]; ok {
		return img, nil
	}
	data, err := s.read(ref)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", ref, err)
	}
	s.cache[ref] = img
	return img, nil
}

// Size returns the pixel size of ref.
func (s *ImageStore) Size(ref string) (int, int, error) {
	img, err := s.Load(ref)
	if err != nil {
		return 0, 0, err
	}
	b := img.Bounds()
	return b.Dx(), b.Dy(), nil
}

func (s *ImageStore) read(ref string) ([]byte, error) {
	if ref == "" {
		return nil, layout.ErrImageNotFound
	}
	if name, ok := strings.CutPrefix(ref, builtinPrefix); ok {
		data, ok := s.builtin[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", layout.ErrImageNotFound, ref)
		}
		return data, nil
	}
	path := ref
	if !filepath.IsAbs(path) {
		if s.baseDir == "" {
			return nil, fmt.Errorf("%w: %s (relative path without a base directory)", layout.ErrImageNotFound, ref)
		}
		path = filepath.Join(s.baseDir, path)
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", layout.ErrImageNotFound, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("read image %s: %w", ref, err)
	}
	return data, nil
}
