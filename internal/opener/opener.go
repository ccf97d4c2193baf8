// Package opener resolves report locations (local paths, http(s) URLs and
// s3://bucket/key) to readable streams.
package opener

import (
	"context"
	"io"
)

// Meta describes where a stream came from.
type Meta struct {
	Source      string // "file", "https" or "s3"
	Name        string // base file name, used for the extension check
	ContentType string
	Size        int64 // -1 when unknown
	Bucket      string
	Key         string
}

type Opener interface {
	Open(ctx context.Context, location string) (io.ReadCloser, Meta, error)
}
