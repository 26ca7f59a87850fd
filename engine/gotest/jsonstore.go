package gotest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// jsonStore writes the raw go test -json stream of every class run to
// <baseDir>/<suite>/<test>/<class>.json
type jsonStore struct {
	baseDir string
}

func newJSONStore(baseDir string) *jsonStore {
	return &jsonStore{baseDir: baseDir}
}

// Create opens the file for a class run. With no base directory it returns a
// writer that discards everything.
func (s *jsonStore) Create(suite, test, class string) (io.WriteCloser, string, error) {
	if s == nil || s.baseDir == "" {
		return nopWriteCloser{io.Discard}, "", nil
	}
	dir := filepath.Join(s.baseDir, safeFileName(suite), safeFileName(test))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, "", fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, safeFileName(class)+JSONExtension)
	f, err := os.Create(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create raw JSON file: %w", err)
	}
	return f, path, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// safeFileName turns a suite, test or package name into a single path element
func safeFileName(name string) string {
	name = strings.TrimPrefix(name, "./")
	name = strings.Trim(name, "/")
	if name == "" || name == "." {
		return "root"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		default:
			return '_'
		}
	}, name)
}
