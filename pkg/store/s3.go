package store

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Store persists images in an S3 bucket, content-addressed like DiskStore.
//
// Example usage:
//
//	cfg, _ := config.LoadDefaultConfig(context.Background())
//	st := store.NewS3Store(s3.NewFromConfig(cfg), "my-bucket", "posters/",
//	    "https://cdn.example.com", 20<<20)
type S3Store struct {
	client  *s3.Client
	bucket  string
	prefix  string
	baseURL string
	maxSize int64
	fetch   *http.Client
}

// NewS3Store creates an S3-backed image store.
//
// Parameters:
//   - client: AWS S3 client from aws-sdk-go-v2
//   - bucket: S3 bucket name
//   - prefix: key prefix for images (e.g., "posters/")
//   - baseURL: public base URL images are served from (CDN or bucket URL)
//   - maxSize: maximum image size in bytes (0 = no limit)
func NewS3Store(client *s3.Client, bucket, prefix, baseURL string, maxSize int64) *S3Store {
	return &S3Store{
		client:  client,
		bucket:  bucket,
		prefix:  prefix,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		maxSize: maxSize,
		fetch:   &http.Client{Timeout: 30 * time.Second},
	}
}

// SaveImage uploads data to S3 under its content hash.
func (s *S3Store) SaveImage(ctx context.Context, data []byte, filename string) (ImageID, error) {
	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return "", ErrTooLarge
	}

	contentType := sniffContentType(data)
	if len(data) == 0 || !strings.HasPrefix(contentType, "image/") {
		return "", nil
	}

	sum := sha256.Sum256(data)
	id := ImageID(hex.EncodeToString(sum[:]))
	key := s.prefix + string(id)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		Metadata: map[string]string{
			"original-filename": path.Base(filename),
			"upload-time":       time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", fmt.Errorf("s3 store: put object: %w", err)
	}

	return id, nil
}

// SaveImageFromURL fetches url and uploads the body to S3.
func (s *S3Store) SaveImageFromURL(ctx context.Context, url string) (ImageID, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("s3 store: build request: %w", err)
	}

	resp, err := s.fetch.Do(req)
	if err != nil {
		return "", fmt.Errorf("s3 store: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", nil
	}

	var reader io.Reader = resp.Body
	if s.maxSize > 0 {
		reader = io.LimitReader(resp.Body, s.maxSize+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("s3 store: read body: %w", err)
	}
	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return "", ErrTooLarge
	}

	return s.SaveImage(ctx, data, path.Base(req.URL.Path))
}

// PreviewURL returns the public URL for a stored image.
func (s *S3Store) PreviewURL(id ImageID) string {
	return s.baseURL + "/" + s.prefix + string(id)
}
