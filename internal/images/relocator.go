// Package images re-hosts externally-hosted thumbnails on object storage so
// records don't rot when the source site prunes its images.
package images

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"hotdeal/internal/config"
	"hotdeal/internal/logger"
)

const downloadTimeout = 10 * time.Second

// Some image hosts reject non-browser clients.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Relocator downloads a thumbnail and uploads it to object storage.
type Relocator struct {
	client   *minio.Client
	bucket   string
	endpoint string
	secure   bool
	httpc    *http.Client
	log      logger.Interface
}

func NewRelocator(cfg config.StorageConfig, log logger.Interface) (*Relocator, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &Relocator{
		client:   client,
		bucket:   cfg.Bucket,
		endpoint: cfg.Endpoint,
		secure:   cfg.UseSSL,
		httpc:    &http.Client{Timeout: downloadTimeout},
		log:      log,
	}, nil
}

// Relocate downloads sourceURL and stores it under
// folder/yyyy-mm/<generated name>. It returns the public URL of the stored
// object, or "" on any failure; the caller falls back to the source URL.
func (r *Relocator) Relocate(ctx context.Context, sourceURL, folder string) string {
	normalized := NormalizeURL(sourceURL)
	if normalized == "" {
		return ""
	}

	data, err := r.download(ctx, normalized)
	if err != nil {
		r.log.Warn("image download failed", "url", normalized, "error", err)
		return ""
	}

	key := fmt.Sprintf("%s/%s/%s", folder, time.Now().UTC().Format("2006-01"), objectName(normalized))
	_, err = r.client.PutObject(ctx, r.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentTypeFor(normalized)})
	if err != nil {
		r.log.Warn("image upload failed", "key", key, "error", err)
		return ""
	}

	return r.publicURL(key)
}

func (r *Relocator) download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := r.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (r *Relocator) publicURL(key string) string {
	scheme := "https"
	if !r.secure {
		scheme = "http"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, r.endpoint, r.bucket, key)
}

// NormalizeURL turns protocol-relative and bare-host URLs into absolute
// HTTPS URLs. Empty or blank input normalizes to "".
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "//") {
		return "https:" + raw
	}
	if !strings.HasPrefix(raw, "http") {
		return "https://" + raw
	}
	return raw
}

// objectName builds a unique object name from the source URL: unix-millis
// timestamp, a short random suffix, and the original base name. Extensionless
// names default to .jpg.
func objectName(rawURL string) string {
	base := "image"
	if u, err := url.Parse(rawURL); err == nil {
		if b := path.Base(u.Path); b != "" && b != "." && b != "/" {
			base = b
		}
	}
	if !strings.Contains(base, ".") {
		base += ".jpg"
	}
	ext := path.Ext(base)
	name := strings.TrimSuffix(base, ext)
	return fmt.Sprintf("%d_%s_%s%s", time.Now().UnixMilli(), uuid.NewString()[:8], name, ext)
}

func contentTypeFor(rawURL string) string {
	ext := strings.ToLower(path.Ext(rawURL))
	if i := strings.IndexAny(ext, "?#"); i >= 0 {
		ext = ext[:i]
	}
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
