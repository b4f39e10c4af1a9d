package poster

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/posterbox-dev/posterbox/pkg/store"
)

// submission describes one pipeline run. All four input adapters reduce to
// a submission over either raw bytes or a URL.
type submission struct {
	channel   string
	rejectMsg string
	errPrefix string

	// clearPendingURL clears the URL field on success (URL channel only).
	clearPendingURL bool

	// op performs the store call and reports the payload size in bytes
	// (0 when unknown, e.g. the URL channel).
	op func(ctx context.Context) (store.ImageID, int64, error)
}

// SubmitBytes runs the pipeline over raw image bytes. It is the entry point
// the file picker converges on; drop and paste arrive base64-encoded and go
// through SubmitBase64.
func (w *Widget) SubmitBytes(ctx context.Context, data []byte, filename string) error {
	return w.submitBytesOn(ctx, "file", data, filename)
}

func (w *Widget) submitBytesOn(ctx context.Context, channel string, data []byte, filename string) error {
	return w.run(ctx, submission{
		channel:   channel,
		rejectMsg: MsgSaveFailed,
		errPrefix: uploadErrPrefix,
		op: func(ctx context.Context) (store.ImageID, int64, error) {
			if int64(len(data)) > w.maxBytes {
				return "", 0, ErrSizeLimit
			}
			id, err := w.store.SaveImage(ctx, data, filename)
			return id, int64(len(data)), err
		},
	})
}

// SubmitBase64 runs the pipeline over a base64-encoded payload, as
// delivered by the drop and paste hooks. The decoded size is estimated
// before decoding so oversized payloads are rejected without the decode
// work.
func (w *Widget) SubmitBase64(ctx context.Context, data, filename string) error {
	return w.submitBase64On(ctx, "paste", data, filename)
}

func (w *Widget) submitBase64On(ctx context.Context, channel, data, filename string) error {
	return w.run(ctx, submission{
		channel:   channel,
		rejectMsg: MsgSaveFailed,
		errPrefix: uploadErrPrefix,
		op: func(ctx context.Context) (store.ImageID, int64, error) {
			if base64DecodedLen(data) > w.maxBytes {
				return "", 0, ErrSizeLimit
			}
			decoded, err := base64.StdEncoding.DecodeString(data)
			if err != nil {
				return "", 0, fmt.Errorf("decode payload: %w", err)
			}
			if int64(len(decoded)) > w.maxBytes {
				return "", 0, ErrSizeLimit
			}
			id, err := w.store.SaveImage(ctx, decoded, filename)
			return id, int64(len(decoded)), err
		},
	})
}

// SubmitFile runs the pipeline over a picked file, reading at most the
// upload cap plus one byte so oversized files abort without a full read.
func (w *Widget) SubmitFile(ctx context.Context, filename string, r io.Reader) error {
	return w.run(ctx, submission{
		channel:   "file",
		rejectMsg: MsgSaveFailed,
		errPrefix: uploadErrPrefix,
		op: func(ctx context.Context) (store.ImageID, int64, error) {
			data, err := io.ReadAll(io.LimitReader(r, w.maxBytes+1))
			if err != nil {
				return "", 0, fmt.Errorf("read file: %w", err)
			}
			if int64(len(data)) > w.maxBytes {
				return "", 0, ErrSizeLimit
			}
			id, err := w.store.SaveImage(ctx, data, filename)
			return id, int64(len(data)), err
		},
	})
}

// SubmitURL runs the pipeline over a remote URL. Blank input is ignored.
func (w *Widget) SubmitURL(ctx context.Context, rawURL string) error {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil
	}
	return w.run(ctx, submission{
		channel:         "url",
		rejectMsg:       MsgURLFailed,
		errPrefix:       downloadErrPrefix,
		clearPendingURL: true,
		op: func(ctx context.Context) (store.ImageID, int64, error) {
			id, err := w.store.SaveImageFromURL(ctx, rawURL)
			return id, 0, err
		},
	})
}

// SubmitPendingURL submits the URL field's current text. Wired to the
// field's Enter keypress and blur, so it fires once per commit, not per
// keystroke.
func (w *Widget) SubmitPendingURL(ctx context.Context) error {
	return w.SubmitURL(ctx, w.pendingURL.Get())
}

// Remove clears the poster. Idempotent, no confirmation step.
func (w *Widget) Remove() {
	w.source.Set(NoSource)
	w.pendingURL.Set("")
	w.errText.Set("")
	w.recomputePreview()
	w.binding.notify(NoSource)
}

// run executes one pipeline pass: serialize, enter Uploading, clear the
// prior error, perform the store call, and map the three outcomes (id,
// rejection, failure) onto widget state. Whatever happens, the widget
// returns to Idle.
func (w *Widget) run(ctx context.Context, sub submission) error {
	if w.isDisposed() {
		return ErrDisposed
	}

	w.inflight.Lock()
	defer w.inflight.Unlock()

	w.uploading.SetTrue()
	defer w.uploading.SetFalse()
	w.errText.Set("")

	ctx, span := w.tracer.Start(ctx, "poster.upload")
	span.SetAttributes(attribute.String("poster.channel", sub.channel))
	defer span.End()

	m := getMetrics()

	id, size, err := sub.op(ctx)
	switch {
	case errors.Is(err, ErrSizeLimit):
		msg := sizeLimitMessage(w.maxBytes)
		w.errText.Set(msg)
		span.SetStatus(codes.Error, msg)
		m.uploadsTotal.WithLabelValues(sub.channel, resultTooLarge).Inc()
		w.logger.Warn("upload rejected before store call", "channel", sub.channel, "reason", "size limit")
		return ErrSizeLimit

	case err != nil:
		w.errText.Set(sub.errPrefix + err.Error())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		m.uploadsTotal.WithLabelValues(sub.channel, resultError).Inc()
		w.logger.Error("upload failed", "channel", sub.channel, "error", err)
		return fmt.Errorf("poster: %s submission: %w", sub.channel, err)

	case id == "":
		w.errText.Set(sub.rejectMsg)
		span.SetStatus(codes.Error, "store rejected image")
		m.uploadsTotal.WithLabelValues(sub.channel, resultRejected).Inc()
		w.logger.Warn("store rejected image", "channel", sub.channel)
		return ErrStoreRejected
	}

	src := ImageSource(id)
	w.source.Set(src)
	if sub.clearPendingURL {
		w.pendingURL.Set("")
	}
	w.recomputePreview()
	w.binding.notify(src)

	span.SetAttributes(attribute.String("poster.image_id", string(id)))
	m.uploadsTotal.WithLabelValues(sub.channel, resultSuccess).Inc()
	if size > 0 {
		m.uploadBytes.Observe(float64(size))
	}
	w.logger.Info("poster saved", "channel", sub.channel, "image_id", string(id))
	return nil
}

// base64DecodedLen estimates the decoded size of a standard base64 string
// without decoding it.
func base64DecodedLen(s string) int64 {
	n := int64(len(s)) / 4 * 3
	if strings.HasSuffix(s, "==") {
		n -= 2
	} else if strings.HasSuffix(s, "=") {
		n--
	}
	return n
}
