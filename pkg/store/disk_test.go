package store_test

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/posterbox-dev/posterbox/pkg/store"
)

// pngBytes returns a payload that sniffs as image/png.
func pngBytes(size int) []byte {
	data := make([]byte, size)
	copy(data, "\x89PNG\r\n\x1a\n")
	return data
}

func TestDiskStore_SaveImage(t *testing.T) {
	s, err := store.NewDiskStore(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	data := pngBytes(64)
	id, err := s.SaveImage(context.Background(), data, "poster.png")
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected non-empty id")
	}

	rc, contentType, err := s.OpenImage(id)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer rc.Close()

	if contentType != "image/png" {
		t.Errorf("expected image/png, got %s", contentType)
	}
	got, _ := io.ReadAll(rc)
	if !bytes.Equal(got, data) {
		t.Error("content mismatch")
	}
	if name, ok := s.Filename(id); !ok || name != "poster.png" {
		t.Errorf("expected filename poster.png, got %q ok=%v", name, ok)
	}
}

func TestDiskStore_ContentAddressed(t *testing.T) {
	s, _ := store.NewDiskStore(t.TempDir(), 0)

	data := pngBytes(32)
	first, _ := s.SaveImage(context.Background(), data, "a.png")
	second, _ := s.SaveImage(context.Background(), data, "b.png")

	if first != second {
		t.Errorf("same bytes should get same id: %s vs %s", first, second)
	}
}

func TestDiskStore_RejectsNonImage(t *testing.T) {
	s, _ := store.NewDiskStore(t.TempDir(), 0)

	id, err := s.SaveImage(context.Background(), []byte("plain text, not an image"), "note.txt")
	if err != nil {
		t.Fatalf("rejection must not be an error, got %v", err)
	}
	if id != "" {
		t.Errorf("expected empty id for rejected payload, got %s", id)
	}

	id, err = s.SaveImage(context.Background(), nil, "empty")
	if err != nil || id != "" {
		t.Errorf("empty payload should be rejected, got id=%q err=%v", id, err)
	}
}

func TestDiskStore_SizeLimit(t *testing.T) {
	s, _ := store.NewDiskStore(t.TempDir(), 16)

	_, err := s.SaveImage(context.Background(), pngBytes(32), "big.png")
	if err != store.ErrTooLarge {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
}

func TestDiskStore_MetaWriteFailure(t *testing.T) {
	dir := t.TempDir()
	s, _ := store.NewDiskStore(dir, 0)

	// Occupy the sidecar path with a directory so the meta write fails
	// while the image write itself would succeed.
	data := pngBytes(64)
	sum := sha256.Sum256(data)
	id := hex.EncodeToString(sum[:])
	if err := os.Mkdir(filepath.Join(dir, id+".meta"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	_, err := s.SaveImage(context.Background(), data, "poster.png")
	if err == nil {
		t.Fatal("expected an error when the meta sidecar cannot be written")
	}
	if _, ok := s.Filename(store.ImageID(id)); ok {
		t.Error("failed save must not appear in the index")
	}
}

func TestDiskStore_SaveImageFromURL(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(pngBytes(64))
	}))
	defer remote.Close()

	s, _ := store.NewDiskStore(t.TempDir(), 0)

	id, err := s.SaveImageFromURL(context.Background(), remote.URL+"/img.png")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected non-empty id")
	}
	if name, ok := s.Filename(id); !ok || name != "img.png" {
		t.Errorf("expected filename img.png, got %q", name)
	}
}

func TestDiskStore_SaveImageFromURL_RemoteError(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer remote.Close()

	s, _ := store.NewDiskStore(t.TempDir(), 0)

	id, err := s.SaveImageFromURL(context.Background(), remote.URL+"/missing.png")
	if err != nil {
		t.Fatalf("remote 404 is a rejection, not an error: %v", err)
	}
	if id != "" {
		t.Errorf("expected empty id, got %s", id)
	}
}

func TestDiskStore_SaveImageFromURL_NetworkFailure(t *testing.T) {
	s, _ := store.NewDiskStore(t.TempDir(), 0)

	_, err := s.SaveImageFromURL(context.Background(), "http://127.0.0.1:1/unreachable.png")
	if err == nil {
		t.Error("expected transport error for unreachable host")
	}
}

func TestDiskStore_IndexSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	s, _ := store.NewDiskStore(dir, 0)
	id, _ := s.SaveImage(context.Background(), pngBytes(24), "keep.png")

	reopened, err := store.NewDiskStore(dir, 0)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	rc, _, err := reopened.OpenImage(id)
	if err != nil {
		t.Fatalf("expected image to survive restart: %v", err)
	}
	rc.Close()
}

func TestDiskStore_PreviewURL(t *testing.T) {
	s, _ := store.NewDiskStore(t.TempDir(), 0)
	if got := s.PreviewURL("abc123"); got != "/image/abc123" {
		t.Errorf("unexpected preview URL %q", got)
	}

	s.WithBaseURL("https://cdn.example.com/posters/")
	if got := s.PreviewURL("abc123"); got != "https://cdn.example.com/posters/abc123" {
		t.Errorf("unexpected preview URL %q", got)
	}
}
