package store

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// FilePrefix starts the name of every benchmark result file.
const FilePrefix = "grainchain_benchmark_"

var jsonSuffixes = []string{".json", ".json.gz", ".json.zst"}

// IsJSONResult reports whether name is a (possibly compressed) JSON result file.
func IsJSONResult(name string) bool {
	if !strings.HasPrefix(name, FilePrefix) {
		return false
	}
	for _, s := range jsonSuffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

// IsMarkdownResult reports whether name is a Markdown result report.
func IsMarkdownResult(name string) bool {
	return strings.HasPrefix(name, FilePrefix) && strings.HasSuffix(name, ".md")
}

// IsResultFile reports whether name is any kind of result file.
func IsResultFile(name string) bool {
	return IsJSONResult(name) || IsMarkdownResult(name)
}

// ReadFile returns the contents of path, decompressing .gz and .zst files.
func ReadFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch {
	case strings.HasSuffix(path, ".gz"):
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("opening gzip stream: %w", err)
		}
		defer zr.Close()
		return io.ReadAll(zr)
	case strings.HasSuffix(path, ".zst"):
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("opening zstd stream: %w", err)
		}
		defer zr.Close()
		return io.ReadAll(zr)
	default:
		return io.ReadAll(f)
	}
}
