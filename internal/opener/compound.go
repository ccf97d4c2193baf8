package opener

import (
	"context"
	"errors"
	"io"
	"net/url"
	"path"
	"strings"
)

// CompoundOpener dispatches on the location scheme. Anything that is not an
// URL is a local path.
type CompoundOpener struct {
	Local *LocalOpener
	HTTP  *HTTPOpener
	S3    *S3Opener
}

func NewCompoundOpener(local *LocalOpener, httpOp *HTTPOpener, s3Op *S3Opener) *CompoundOpener {
	return &CompoundOpener{Local: local, HTTP: httpOp, S3: s3Op}
}

func (c *CompoundOpener) Open(ctx context.Context, location string) (io.ReadCloser, Meta, error) {
	loc := strings.TrimSpace(location)

	switch {
	case strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://"):
		if c.HTTP == nil {
			return nil, Meta{}, errors.New("http opener not configured")
		}
		return c.HTTP.Open(ctx, loc)

	case strings.HasPrefix(loc, "s3://"):
		if c.S3 == nil {
			return nil, Meta{}, errors.New("s3 opener not configured")
		}
		bkt, key, err := parseS3URL(loc)
		if err != nil {
			return nil, Meta{}, err
		}
		return c.S3.OpenObject(ctx, bkt, key)

	default:
		if c.Local == nil {
			return nil, Meta{}, errors.New("local opener not configured")
		}
		return c.Local.Open(ctx, loc)
	}
}

// IsRemote reports whether location needs a network opener.
func IsRemote(location string) bool {
	loc := strings.TrimSpace(location)
	return strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://") || strings.HasPrefix(loc, "s3://")
}

func parseS3URL(raw string) (bucket, key string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", err
	}
	if u.Scheme != "s3" {
		return "", "", errors.New("scheme must be s3")
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	key = path.Clean(key)
	if bucket == "" || key == "" || key == "." || key == "/" {
		return "", "", errors.New("empty bucket or key")
	}
	return bucket, key, nil
}
