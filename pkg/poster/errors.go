package poster

import (
	"errors"
	"fmt"

	units "github.com/docker/go-units"
)

// ErrSizeLimit is returned when a payload exceeds the upload cap. The check
// runs client-side, before any store call.
var ErrSizeLimit = errors.New("poster: image exceeds upload size limit")

// ErrStoreRejected is returned when the store declined the image (its
// "null" answer) without a transport failure.
var ErrStoreRejected = errors.New("poster: store rejected image")

// ErrDisposed is returned when a submission reaches a disposed widget.
var ErrDisposed = errors.New("poster: widget disposed")

// User-visible error texts. Exported so hosts and tests share the exact
// wording shown in the widget.
const (
	// MsgSaveFailed is shown when the store rejects a byte submission.
	MsgSaveFailed = "Failed to save image. The file may not be a valid image."

	// MsgURLFailed is shown when the store rejects or cannot fetch a URL
	// submission.
	MsgURLFailed = "Failed to download image from URL. Check the address and try again."
)

// Transport failure prefixes, per channel.
const (
	uploadErrPrefix   = "Error uploading image: "
	downloadErrPrefix = "Error downloading image from URL: "
)

// sizeLimitMessage renders the size rejection text with a human-readable
// cap, e.g. "Image is too large. The maximum size is 20MiB.".
func sizeLimitMessage(maxBytes int64) string {
	return fmt.Sprintf("Image is too large. The maximum size is %s.",
		units.BytesSize(float64(maxBytes)))
}
