package store_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/posterbox-dev/posterbox/pkg/store"
)

// newStoreServer wires the save/serve handlers over a DiskStore, giving the
// HTTPStore client a real backend to talk to.
func newStoreServer(t *testing.T) (*httptest.Server, *store.DiskStore) {
	t.Helper()

	disk, err := store.NewDiskStore(t.TempDir(), 20<<20)
	if err != nil {
		t.Fatalf("failed to create disk store: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/image/url", store.SaveFromURLHandler(disk))
	mux.Handle("/image/", store.ServeHandler(disk))
	mux.Handle("/image", store.SaveHandler(disk, 20<<20))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, disk
}

func TestHTTPStore_SaveImage(t *testing.T) {
	srv, disk := newStoreServer(t)
	client := store.NewHTTPStore(srv.URL)

	id, err := client.SaveImage(context.Background(), pngBytes(128), "poster.png")
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected non-empty id")
	}

	// The backend really has it.
	rc, _, err := disk.OpenImage(id)
	if err != nil {
		t.Fatalf("image not stored server-side: %v", err)
	}
	rc.Close()

	// And it is fetchable through the serve endpoint the preview URL names.
	resp, err := http.Get(client.PreviewURL(id))
	if err != nil {
		t.Fatalf("preview fetch failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 from preview URL, got %d", resp.StatusCode)
	}
}

func TestHTTPStore_RejectionMapsToEmptyID(t *testing.T) {
	srv, _ := newStoreServer(t)
	client := store.NewHTTPStore(srv.URL)

	id, err := client.SaveImage(context.Background(), []byte("not an image"), "note.txt")
	if err != nil {
		t.Fatalf("422 must map to rejection, not error: %v", err)
	}
	if id != "" {
		t.Errorf("expected empty id, got %s", id)
	}
}

func TestHTTPStore_SaveImageFromURL(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(pngBytes(64))
	}))
	defer remote.Close()

	srv, _ := newStoreServer(t)
	client := store.NewHTTPStore(srv.URL)

	id, err := client.SaveImageFromURL(context.Background(), remote.URL+"/img.png")
	if err != nil {
		t.Fatalf("save from URL failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected non-empty id")
	}
}

func TestHTTPStore_ServerErrorIsTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := store.NewHTTPStore(srv.URL)
	_, err := client.SaveImage(context.Background(), pngBytes(16), "x.png")
	if err == nil {
		t.Error("expected error for 500 response")
	}
}

func TestSaveHandler_TooLarge(t *testing.T) {
	disk, _ := store.NewDiskStore(t.TempDir(), 16)
	srv := httptest.NewServer(store.SaveHandler(disk, 16))
	defer srv.Close()

	client := store.NewHTTPStore(srv.URL)
	_, err := client.SaveImage(context.Background(), pngBytes(64), "big.png")
	if err == nil {
		t.Error("expected error for oversized upload")
	}
}
