package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
)

//go:embed all:content
var content embed.FS

// Default returns the embedded course content
func Default() fs.FS {
	sub, err := fs.Sub(content, "content")
	if err != nil {
		panic(fmt.Sprintf("embedded content: %v", err))
	}
	return sub
}

// Open returns a source over dir, or over the embedded content when dir is empty
func Open(dir string, logger *slog.Logger) (*FSSource, error) {
	if dir == "" {
		return NewFSSource(Default(), logger), nil
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("assets dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("assets dir %s is not a directory", dir)
	}

	return NewFSSource(os.DirFS(dir), logger), nil
}
