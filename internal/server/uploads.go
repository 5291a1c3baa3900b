package server

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/nguyentranbao-ct/price-extractor/internal/config"
)

// UploadStore writes uploaded images under a single directory.
type UploadStore struct {
	dir string
	now func() time.Time
}

func NewUploadStore(conf *config.Config) *UploadStore {
	return &UploadStore{
		dir: conf.Server.UploadDir,
		now: time.Now,
	}
}

// Save writes data as product_<yyyymmdd_hhmmss>_<id><ext> and returns the path
// relative to the working directory. The extension comes from the original
// filename, or from the content when the name has none.
func (s *UploadStore) Save(originalName string, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" {
		ext = mimetype.Detect(data).Extension()
	}
	if ext == "" {
		ext = ".jpg"
	}

	name := fmt.Sprintf("product_%s_%s%s", s.now().Format("20060102_150405"), uuid.NewString()[:8], ext)
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return path, nil
}
