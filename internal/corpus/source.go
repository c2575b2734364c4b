package corpus

import (
	"fmt"
	"io"
	"io/fs"
)

// Source opens the raw markup for one psalm.
type Source interface {
	Open(number int) (io.ReadCloser, error)
	Name(number int) string
}

// FSSource reads psalm pages named by a fmt pattern (for example "psalm-%02d.html") from a filesystem.
type FSSource struct {
	FS      fs.FS
	Pattern string
}

// NewFSSource creates a Source over fsys.
func NewFSSource(fsys fs.FS, pattern string) *FSSource {
	return &FSSource{FS: fsys, Pattern: pattern}
}

// Name returns the file name for a psalm.
func (s *FSSource) Name(number int) string {
	return fmt.Sprintf(s.Pattern, number)
}

// Open opens the page for a psalm.
func (s *FSSource) Open(number int) (io.ReadCloser, error) {
	return s.FS.Open(s.Name(number))
}
