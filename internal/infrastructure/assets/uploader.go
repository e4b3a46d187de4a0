package assets

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Uploader stores a file under a folder label and returns its public URL,
// mirroring the hosted asset service the storefront uploads to.
type Uploader interface {
	Upload(ctx context.Context, folder, name string, r io.Reader) (string, error)
}

// BatchInput is one file of a multi-upload.
type BatchInput struct {
	Folder string
	Name   string
	Reader io.Reader
}

// BatchResult reports the per-file outcome. A failed file carries its error
// message and never aborts its siblings.
type BatchResult struct {
	Name  string
	URL   string
	Error string
}

// DiskUploader writes assets under a local directory and serves them by URL
// path. It stands in for the third-party asset host.
type DiskUploader struct {
	root    string
	baseURL string
}

func NewDiskUploader(root, baseURL string) (*DiskUploader, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("assets: create root %s: %w", root, err)
	}
	return &DiskUploader{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (u *DiskUploader) Upload(ctx context.Context, folder, name string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if name == "" {
		return "", fmt.Errorf("assets: file name is required")
	}

	folder = sanitize(folder)
	stored := uuid.NewString() + "-" + sanitize(name)

	dir := filepath.Join(u.root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("assets: create folder %s: %w", folder, err)
	}

	f, err := os.Create(filepath.Join(dir, stored))
	if err != nil {
		return "", fmt.Errorf("assets: create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("assets: write file: %w", err)
	}

	return u.baseURL + "/" + path.Join(folder, stored), nil
}

// UploadBatch uploads every input, recording per-file status; one failure does
// not stop the rest.
func UploadBatch(ctx context.Context, u Uploader, inputs []BatchInput) []BatchResult {
	results := make([]BatchResult, 0, len(inputs))
	for _, in := range inputs {
		url, err := u.Upload(ctx, in.Folder, in.Name, in.Reader)
		res := BatchResult{Name: in.Name, URL: url}
		if err != nil {
			res.URL = ""
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	return results
}

var nameSanitizer = strings.NewReplacer("/", "_", "\\", "_", "..", "_", " ", "-")

func sanitize(s string) string {
	s = nameSanitizer.Replace(s)
	if s == "" {
		s = "misc"
	}
	return s
}
