package opener

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

type LocalOpener struct {
	logger *slog.Logger
}

func NewLocalOpener(logger *slog.Logger) *LocalOpener {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalOpener{logger: logger}
}

func (l *LocalOpener) Open(_ context.Context, path string) (io.ReadCloser, Meta, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("open %s: %w", path, err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, Meta{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if st.IsDir() {
		f.Close()
		return nil, Meta{}, fmt.Errorf("%s is a directory", path)
	}
	l.logger.Debug("opened local file", "path", path, "size", st.Size())
	return f, Meta{Source: "file", Name: filepath.Base(path), Size: st.Size()}, nil
}
