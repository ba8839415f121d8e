// Package blob signs file uploads and resolves download URLs. Bytes
// never pass through the API server: clients upload straight to the
// backend with a time-limited signed URL.
package blob

import (
	"context"
	"fmt"
	"time"

	"github.com/agencyos/agencyos/internal/config"
)

// SignedUpload is a time-limited PUT target for a single object.
type SignedUpload struct {
	Key       string    `json:"key"`
	UploadURL string    `json:"uploadUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Signer produces upload URLs and durable download URLs for object keys.
type Signer interface {
	SignUpload(ctx context.Context, key, contentType string) (SignedUpload, error)
	ObjectURL(key string) string
}

// Open selects a Signer from configuration: "s3" for AWS S3 or any
// S3-compatible endpoint, "fs" for local development.
func Open(ctx context.Context, cfg config.StorageConfig) (Signer, error) {
	switch cfg.Backend {
	case "s3":
		return NewS3(ctx, cfg)
	case "filesystem", "fs", "":
		return NewFilesystem(cfg.LocalDir, cfg.PublicURL), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
