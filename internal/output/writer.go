package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Adda-Baaj/khobor-digest/internal/fsutil"
)

// PeriodTag returns the ISO week identifier of t, e.g. "2024-W23".
func PeriodTag(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// FileName returns the digest file name for a period tag.
func FileName(periodTag string) string {
	return "digest_" + periodTag + ".html"
}

// Writer persists rendered digests into a directory.
type Writer struct {
	dir string
}

// NewWriter returns a Writer rooted at dir.
func NewWriter(dir string) (*Writer, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("output directory is empty")
	}
	return &Writer{dir: dir}, nil
}

// Write stores document as <dir>/digest_<periodTag>.html, creating dir when
// needed and replacing any previous file atomically. It returns the path written.
func (w *Writer) Write(document []byte, periodTag string) (string, error) {
	periodTag = strings.TrimSpace(periodTag)
	if periodTag == "" || strings.ContainsAny(periodTag, `/\`) {
		return "", fmt.Errorf("invalid period tag %q", periodTag)
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(w.dir, FileName(periodTag))
	if err := fsutil.WriteFileAtomic(path, document, 0o644); err != nil {
		return "", fmt.Errorf("write digest: %w", err)
	}
	return path, nil
}
