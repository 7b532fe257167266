package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// localStore implements Store on the local file system. Files land under a
// base directory and are served by the router under /uploads/.
type localStore struct {
	baseDir string
	baseURL string
	logger  zerolog.Logger
}

// NewLocalStore creates a file-system image store rooted at baseDir.
func NewLocalStore(baseDir string, logger zerolog.Logger) Store {
	return &localStore{
		baseDir: baseDir,
		baseURL: "/uploads",
		logger:  logger.With().Str("component", "local-image-store").Logger(),
	}
}

// Save writes the file under the base directory and returns its serving path.
func (s *localStore) Save(_ context.Context, key, _ string, r io.Reader) (string, error) {
	// Keys are built internally, but reject traversal anyway.
	clean := filepath.Clean(key)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid storage key: %s", key)
	}

	dest := filepath.Join(s.baseDir, clean)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}

	url := s.baseURL + "/" + filepath.ToSlash(clean)

	s.logger.Debug().
		Str("path", dest).
		Str("url", url).
		Msg("image stored")

	return url, nil
}
