package opener

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/minio/minio-go/v7"
)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestParseS3URL(t *testing.T) {
	tests := []struct {
		in      string
		bucket  string
		key     string
		wantErr bool
	}{
		{in: "s3://reports/2026/ivanov.pdf", bucket: "reports", key: "2026/ivanov.pdf"},
		{in: "s3://reports/a/./b.pdf", bucket: "reports", key: "a/b.pdf"},
		{in: "s3://reports/", wantErr: true},
		{in: "s3:///key.pdf", wantErr: true},
		{in: "https://host/key.pdf", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			b, k, err := parseS3URL(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if b != tt.bucket || k != tt.key {
				t.Fatalf("got %q %q", b, k)
			}
		})
	}
}

func TestCompoundLocal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0o600); err != nil {
		t.Fatal(err)
	}
	c := NewCompoundOpener(NewLocalOpener(discard()), nil, nil)
	rc, meta, err := c.Open(context.Background(), "  "+path+" ")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	if diff := cmp.Diff(Meta{Source: "file", Name: "report.pdf", Size: 8}, meta); diff != "" {
		t.Fatalf("meta (-want +got):\n%s", diff)
	}
	if _, _, err := c.Open(context.Background(), t.TempDir()); err == nil {
		t.Fatal("directories must not open")
	}
}

func TestCompoundHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.pdf" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.7 body"))
	}))
	defer srv.Close()

	c := NewCompoundOpener(nil, NewHTTPOpener(srv.Client(), discard()), nil)
	rc, meta, err := c.Open(context.Background(), srv.URL+"/files/report.pdf")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	body, _ := io.ReadAll(rc)
	rc.Close()
	if string(body) != "%PDF-1.7 body" || meta.Name != "report.pdf" || meta.ContentType != "application/pdf" {
		t.Fatalf("body=%q meta=%+v", body, meta)
	}
	if _, _, err := c.Open(context.Background(), srv.URL+"/missing.pdf"); err == nil {
		t.Fatal("want error for 404")
	}
}

type failingS3 struct{}

func (failingS3) StatObject(context.Context, string, string, minio.StatObjectOptions) (minio.ObjectInfo, error) {
	return minio.ObjectInfo{}, errors.New("no such key")
}

func (failingS3) GetObject(context.Context, string, string, minio.GetObjectOptions) (*minio.Object, error) {
	return nil, errors.New("unreachable")
}

func TestCompoundS3(t *testing.T) {
	c := NewCompoundOpener(nil, nil, NewS3Opener(failingS3{}, discard()))
	if _, _, err := c.Open(context.Background(), "s3://reports/a.pdf"); err == nil {
		t.Fatal("want stat error")
	}
	if _, _, err := c.Open(context.Background(), "https://example.com/a.pdf"); err == nil {
		t.Fatal("want error when http is not configured")
	}
	if _, _, err := c.Open(context.Background(), "/tmp/a.pdf"); err == nil {
		t.Fatal("want error when local is not configured")
	}
}

func TestIsRemote(t *testing.T) {
	for in, want := range map[string]bool{
		"s3://b/k.pdf":    true,
		"https://h/x.pdf": true,
		"/home/u/x.pdf":   false,
		"relative/x.pdf":  false,
	} {
		if got := IsRemote(in); got != want {
			t.Errorf("IsRemote(%q) = %v", in, got)
		}
	}
}
