package blob

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Filesystem is the development signer. There is no real signing: the
// server exposes the local directory and uploads go straight to it.
type Filesystem struct {
	baseURL string
}

func NewFilesystem(dir, publicURL string) *Filesystem {
	base := publicURL
	if base == "" {
		base = "/" + strings.Trim(dir, "/")
	}
	return &Filesystem{baseURL: strings.TrimSuffix(base, "/")}
}

func (f *Filesystem) SignUpload(ctx context.Context, key, contentType string) (SignedUpload, error) {
	return SignedUpload{
		Key:       key,
		UploadURL: f.ObjectURL(key),
		ExpiresAt: time.Now().UTC().Add(uploadExpiry),
	}, nil
}

func (f *Filesystem) ObjectURL(key string) string {
	return fmt.Sprintf("%s/%s", f.baseURL, key)
}
