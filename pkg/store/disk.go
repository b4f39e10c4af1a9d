package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// DiskStore is a content-addressed image store on the local filesystem.
// Identifiers are the SHA-256 of the image bytes, so saving the same image
// twice yields the same id.
type DiskStore struct {
	dir     string
	maxSize int64
	baseURL string
	client  *http.Client

	mu    sync.RWMutex
	files map[ImageID]*diskMeta
}

type diskMeta struct {
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewDiskStore creates a DiskStore rooted at dir.
//
// Parameters:
//   - dir: directory to store images
//   - maxSize: maximum image size in bytes (0 = no limit)
func NewDiskStore(dir string, maxSize int64) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	s := &DiskStore{
		dir:     dir,
		maxSize: maxSize,
		baseURL: "/image",
		client:  &http.Client{Timeout: 30 * time.Second},
		files:   make(map[ImageID]*diskMeta),
	}
	s.loadIndex()
	return s, nil
}

// WithBaseURL sets the URL prefix PreviewURL builds from. Default "/image".
func (s *DiskStore) WithBaseURL(base string) *DiskStore {
	s.baseURL = strings.TrimSuffix(base, "/")
	return s
}

// WithHTTPClient replaces the client used for SaveImageFromURL.
func (s *DiskStore) WithHTTPClient(c *http.Client) *DiskStore {
	if c != nil {
		s.client = c
	}
	return s
}

// SaveImage persists data and returns its content hash as the identifier.
// Payloads whose sniffed content type is not image/* are rejected with
// ("", nil).
func (s *DiskStore) SaveImage(ctx context.Context, data []byte, filename string) (ImageID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return "", ErrTooLarge
	}

	contentType := sniffContentType(data)
	if len(data) == 0 || !strings.HasPrefix(contentType, "image/") {
		// Store-level rejection, not a transport failure.
		return "", nil
	}

	sum := sha256.Sum256(data)
	id := ImageID(hex.EncodeToString(sum[:]))
	path := filepath.Join(s.dir, string(id))

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("disk store: write: %w", err)
	}

	meta := &diskMeta{
		Filename:    filepath.Base(filename),
		ContentType: contentType,
		Size:        int64(len(data)),
		CreatedAt:   time.Now(),
	}

	// The sidecar is what survives a restart; without it the image would
	// silently vanish from the index on the next loadIndex.
	if err := s.saveMeta(id, meta); err != nil {
		return "", fmt.Errorf("disk store: write meta: %w", err)
	}

	s.mu.Lock()
	s.files[id] = meta
	s.mu.Unlock()

	return id, nil
}

// SaveImageFromURL fetches url and persists the response body. A non-2xx
// response is a store-level rejection; network failures are errors.
func (s *DiskStore) SaveImageFromURL(ctx context.Context, url string) (ImageID, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("disk store: build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("disk store: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", nil
	}

	var reader io.Reader = resp.Body
	if s.maxSize > 0 {
		reader = io.LimitReader(resp.Body, s.maxSize+1) // +1 to detect overflow
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("disk store: read body: %w", err)
	}
	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return "", ErrTooLarge
	}

	filename := filepath.Base(strings.TrimSuffix(req.URL.Path, "/"))
	if filename == "." || filename == "/" || filename == "" {
		filename = "remote-image"
	}

	return s.SaveImage(ctx, data, filename)
}

// PreviewURL returns the serving URL for a stored image.
func (s *DiskStore) PreviewURL(id ImageID) string {
	return s.baseURL + "/" + string(id)
}

// OpenImage returns a reader over a stored image plus its content type.
func (s *DiskStore) OpenImage(id ImageID) (io.ReadCloser, string, error) {
	s.mu.RLock()
	meta, ok := s.files[id]
	s.mu.RUnlock()

	if !ok {
		var err error
		meta, err = s.loadMeta(id)
		if err != nil {
			return nil, "", os.ErrNotExist
		}
	}

	f, err := os.Open(filepath.Join(s.dir, string(id)))
	if err != nil {
		return nil, "", err
	}
	return f, meta.ContentType, nil
}

// Filename returns the original filename recorded for a stored image.
func (s *DiskStore) Filename(id ImageID) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	meta, ok := s.files[id]
	if !ok {
		return "", false
	}
	return meta.Filename, true
}

func (s *DiskStore) metaPath(id ImageID) string {
	return filepath.Join(s.dir, string(id)+".meta")
}

func (s *DiskStore) saveMeta(id ImageID, meta *diskMeta) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return os.WriteFile(s.metaPath(id), data, 0644)
}

func (s *DiskStore) loadMeta(id ImageID) (*diskMeta, error) {
	data, err := os.ReadFile(s.metaPath(id))
	if err != nil {
		return nil, err
	}
	var meta diskMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// loadIndex rebuilds the in-memory index from meta files on disk.
func (s *DiskStore) loadIndex() {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".meta") {
			continue
		}
		id := ImageID(strings.TrimSuffix(name, ".meta"))
		if meta, err := s.loadMeta(id); err == nil {
			s.files[id] = meta
		}
	}
}

// sniffContentType detects the MIME type from the payload's leading bytes.
func sniffContentType(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	return http.DetectContentType(data)
}
