package compress

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

// compressedSuffix is appended to the source filename for the compressed
// artifact.
const compressedSuffix = ".gz"

// GzipCompressor compresses bucket files on disk, streaming so file size is
// never bounded by memory.
type GzipCompressor struct{}

// NewGzipCompressor creates a GzipCompressor.
func NewGzipCompressor() *GzipCompressor {
	return &GzipCompressor{}
}

// CompressFile writes a gzip'd copy of sourcePath alongside it and returns
// the new path. The partial artifact is removed on any failure.
func (c *GzipCompressor) CompressFile(sourcePath string) (string, error) {
	in, err := os.Open(sourcePath)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", sourcePath, err)
	}
	defer in.Close()

	dstPath := sourcePath + compressedSuffix
	out, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dstPath, err)
	}

	gw := gzip.NewWriter(out)
	if _, err := io.Copy(gw, in); err != nil {
		gw.Close()
		out.Close()
		os.Remove(dstPath)
		return "", fmt.Errorf("failed to compress %s: %w", sourcePath, err)
	}
	if err := gw.Close(); err != nil {
		out.Close()
		os.Remove(dstPath)
		return "", fmt.Errorf("failed to flush gzip stream for %s: %w", sourcePath, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dstPath)
		return "", fmt.Errorf("failed to close %s: %w", dstPath, err)
	}

	return dstPath, nil
}
