package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	// Register decoders for the still formats a capture directory may hold.
	_ "image/jpeg"
	_ "image/png"
)

// FileCamera serves stills from a directory of image files, standing in
// for camera hardware behind the Camera port in development and demos.
type FileCamera struct {
	dir string
}

func NewFileCamera(dir string) *FileCamera {
	return &FileCamera{dir: dir}
}

// Open scans the directory for image files. An unreadable directory maps
// to ErrPermissionDenied, an empty or missing one to ErrNoDevice.
func (f *FileCamera) Open(_ context.Context, _ Facing) (Stream, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("%w: %v", ErrPermissionDenied, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrNoDevice, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg", ".png":
			paths = append(paths, filepath.Join(f.dir, e.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no image files in %s", ErrNoDevice, f.dir)
	}
	sort.Strings(paths)

	return &fileStream{paths: paths}, nil
}

// fileStream cycles through the directory's images, one per frame.
type fileStream struct {
	mu     sync.Mutex
	paths  []string
	next   int
	closed bool
}

func (s *fileStream) ReadFrame(_ context.Context) (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, errors.New("stream closed")
	}

	path := s.paths[s.next%len(s.paths)]
	s.next++

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open frame source: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

func (s *fileStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
