package opener

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
)

type HTTPOpener struct {
	Client *http.Client
	logger *slog.Logger
}

func NewHTTPOpener(cli *http.Client, logger *slog.Logger) *HTTPOpener {
	if cli == nil {
		cli = &http.Client{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPOpener{Client: cli, logger: logger}
}

func (h *HTTPOpener) Open(ctx context.Context, rawURL string) (io.ReadCloser, Meta, error) {
	h.logger.Debug("http open start", "url", rawURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("build request: %w", err)
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		h.logger.Warn("http open failed", "url", rawURL, "error", err)
		return nil, Meta{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		h.logger.Warn("http open bad status",
			"url", rawURL,
			"status", resp.StatusCode,
			"content_type", resp.Header.Get("Content-Type"))
		return nil, Meta{}, fmt.Errorf("http status %d", resp.StatusCode)
	}
	size := resp.ContentLength
	if size < 0 {
		size = -1
	}
	name := "report.pdf"
	if u, err := url.Parse(rawURL); err == nil {
		if base := path.Base(u.Path); base != "." && base != "/" {
			name = base
		}
	}
	h.logger.Debug("http open ok", "content_type", resp.Header.Get("Content-Type"), "size", size)
	return resp.Body, Meta{
		Source:      "https",
		Name:        name,
		ContentType: resp.Header.Get("Content-Type"),
		Size:        size,
	}, nil
}
