package acquire

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// IndexSuffix is appended to a data file's name by GRIB indexers.
const IndexSuffix = ".idx"

// store writes r to dir/name, replacing any existing file. Gzipped payloads are decompressed and saved without the .gz suffix. A stale
// index file next to the result is removed.
func store(dir, name string, r io.Reader, logger *zap.Logger) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if strings.HasSuffix(name, ".gz") {
		gzReader, err := gzip.NewReader(r)
		if err != nil {
			return "", fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzReader.Close()
		r = gzReader
		name = strings.TrimSuffix(name, ".gz")
	}

	finalPath := filepath.Join(dir, name)
	tmp, err := os.CreateTemp(dir, name+".*.part")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to save file %s: %w", finalPath, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), finalPath); err != nil {
		return "", fmt.Errorf("failed to move file into place at %s: %w", finalPath, err)
	}

	indexPath := finalPath + IndexSuffix
	if _, err := os.Stat(indexPath); err == nil {
		logger.Warn("Removing index file", zap.String("file", indexPath))
		if err := os.Remove(indexPath); err != nil {
			return "", fmt.Errorf("failed to remove index file %s: %w", indexPath, err)
		}
	}
	return finalPath, nil
}
