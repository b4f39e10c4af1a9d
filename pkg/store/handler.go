package store

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path"
)

// ImageOpener is implemented by stores that can serve stored bytes back,
// which the save endpoints' counterpart GET handler needs.
type ImageOpener interface {
	OpenImage(id ImageID) (io.ReadCloser, string, error)
}

// SaveHandler returns an http.Handler implementing the multipart save
// endpoint of the posterbox wire format. Mount it on your router:
//
//	r.Post("/image", store.SaveHandler(st, 20<<20))
//
// The handler expects a multipart form with a "file" field and answers
// {"id": "..."}; a store rejection answers 422.
func SaveHandler(st ImageStore, maxSize int64) http.Handler {
	if maxSize <= 0 {
		maxSize = 20 << 20
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		// Limit request body size before parsing.
		r.Body = http.MaxBytesReader(w, r.Body, maxSize+1024)

		if err := r.ParseMultipartForm(32 << 20); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				http.Error(w, "Image too large", http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, "Failed to parse form", http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "No file provided", http.StatusBadRequest)
			return
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
		if err != nil {
			http.Error(w, "Failed to read file", http.StatusBadRequest)
			return
		}
		if int64(len(data)) > maxSize {
			http.Error(w, "Image too large", http.StatusRequestEntityTooLarge)
			return
		}

		id, err := st.SaveImage(r.Context(), data, header.Filename)
		if err != nil {
			if errors.Is(err, ErrTooLarge) {
				http.Error(w, "Image too large", http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, "Save failed", http.StatusInternalServerError)
			return
		}
		if id == "" {
			http.Error(w, "Image rejected", http.StatusUnprocessableEntity)
			return
		}

		writeID(w, id)
	})
}

// SaveFromURLHandler returns an http.Handler implementing the URL save
// endpoint: it accepts {"url": "..."} and answers {"id": "..."}.
func SaveFromURLHandler(st ImageStore) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var payload struct {
			URL string `json:"url"`
		}
		if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&payload); err != nil || payload.URL == "" {
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}

		id, err := st.SaveImageFromURL(r.Context(), payload.URL)
		if err != nil {
			if errors.Is(err, ErrTooLarge) {
				http.Error(w, "Image too large", http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, "Save failed", http.StatusInternalServerError)
			return
		}
		if id == "" {
			http.Error(w, "Image rejected", http.StatusUnprocessableEntity)
			return
		}

		writeID(w, id)
	})
}

// ServeHandler returns an http.Handler serving stored image bytes. The
// image id is taken from the last path segment.
func ServeHandler(opener ImageOpener) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ImageID(path.Base(r.URL.Path))
		if id == "" || id == "." || id == "/" {
			http.NotFound(w, r)
			return
		}

		rc, contentType, err := opener.OpenImage(id)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		defer rc.Close()

		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		// Content is addressed by hash, so it never changes for a given id.
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		io.Copy(w, rc)
	})
}

func writeID(w http.ResponseWriter, id ImageID) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"id": string(id)})
}
