// Package store defines the image store contract the poster widget
// delegates persistence to, plus disk, HTTP and S3 backed implementations.
package store

import (
	"context"
	"errors"
)

// ImageID is the opaque handle a store returns for a saved image.
type ImageID string

// ErrTooLarge is returned when a payload exceeds the store's size limit.
var ErrTooLarge = errors.New("store: image too large")

// ImageStore persists image bytes and serves them back by identifier.
//
// The contract distinguishes two failure modes: a store-level rejection
// (invalid or unacceptable image) returns an empty id with a nil error,
// while transport, network and I/O failures return a non-nil error.
type ImageStore interface {
	// SaveImage persists raw image bytes under the given filename and
	// returns the stored identifier. ("", nil) means the store rejected
	// the image.
	SaveImage(ctx context.Context, data []byte, filename string) (ImageID, error)

	// SaveImageFromURL fetches the image at url server-side and persists
	// it. ("", nil) means the remote bytes could not be accepted.
	SaveImageFromURL(ctx context.Context, url string) (ImageID, error)

	// PreviewURL returns the deterministic URL template the store serves
	// the image from. Callers append their own cache-busting parameter.
	PreviewURL(id ImageID) string
}
