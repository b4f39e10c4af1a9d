package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/posterbox-dev/posterbox/pkg/store"
)

func pngBytes(n int) []byte {
	data := make([]byte, n)
	copy(data, "\x89PNG\r\n\x1a\n")
	return data
}

func newTestServer(t *testing.T) (*demoServer, *httptest.Server) {
	t.Helper()
	st, err := store.NewDiskStore(t.TempDir(), 1<<20)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	srv := newDemoServer(st, 1<<20)
	ts := httptest.NewServer(srv.routes())
	t.Cleanup(func() {
		srv.close()
		ts.Close()
	})
	return srv, ts
}

func TestIndexPage(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{"<!DOCTYPE html>", "pb-dropzone", "pb-url-input", "/ws"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestImageEndpoints(t *testing.T) {
	_, ts := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "poster.png")
	fw.Write(pngBytes(256))
	mw.Close()

	resp, err := http.Post(ts.URL+"/image", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.ID == "" {
		t.Fatalf("bad save response: %v %+v", err, out)
	}

	got, err := http.Get(ts.URL + "/image/" + out.ID)
	if err != nil {
		t.Fatalf("get image: %v", err)
	}
	defer got.Body.Close()
	if got.StatusCode != http.StatusOK {
		t.Errorf("expected 200 serving image, got %d", got.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestWebSocketDropFlow(t *testing.T) {
	srv, ts := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Initial paint.
	var frame renderFrame
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("initial frame: %v", err)
	}
	if frame.Type != "render" || !strings.Contains(frame.HTML, "pb-dropzone") {
		t.Fatalf("unexpected initial frame %+v", frame)
	}
	if srv.registry.Len() != 1 {
		t.Errorf("expected one registered instance, got %d", srv.registry.Len())
	}

	payload := base64.StdEncoding.EncodeToString(pngBytes(128))
	err = conn.WriteJSON(hostEvent{Type: "drop", Data: payload, Filename: "drop.png"})
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	// The upload produces at least one re-render carrying the preview.
	deadline := time.Now().Add(2 * time.Second)
	for {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		if err := conn.ReadJSON(&frame); err != nil {
			t.Fatalf("render frame: %v", err)
		}
		if strings.Contains(frame.HTML, "pb-preview") {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("no preview frame received")
		}
	}
	if !strings.Contains(frame.HTML, "?v=") {
		t.Errorf("preview must carry a cache-busting value, got %s", frame.HTML)
	}

	conn.Close()
	waitForCond(t, func() bool { return srv.registry.Len() == 0 })
}

func waitForCond(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}
