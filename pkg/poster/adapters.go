package poster

import (
	"context"

	"github.com/posterbox-dev/posterbox/pkg/vdom"
)

// Input adapters. Each converts its raw event into one of the two pipeline
// entry points; see pipeline.go.

// OpenPicker asks the host to open its file dialog. Suppressed while a
// submission is in flight, which is the manual-trigger re-entrancy guard:
// programmatic channels are not blocked and queue on the pipeline instead.
func (w *Widget) OpenPicker() {
	if w.uploading.Get() {
		return
	}
	if w.onOpenPicker != nil {
		w.onOpenPicker()
	}
}

// DragOver marks the drop zone as hovered. Deliberately not guarded by the
// uploading flag: the hover indicator stays responsive during a store call.
func (w *Widget) DragOver() {
	w.dragHover.SetTrue()
}

// DragLeave clears the hover indicator.
func (w *Widget) DragLeave() {
	w.dragHover.SetFalse()
}

// HandleDropPayload implements hostbridge.PayloadTarget. The host has
// already base64-encoded the dropped file out-of-band.
func (w *Widget) HandleDropPayload(data, filename string) {
	w.dragHover.SetFalse()
	w.submitBase64On(context.Background(), "drop", data, filename)
}

// HandlePastePayload implements hostbridge.PayloadTarget for the global
// paste listener.
func (w *Widget) HandlePastePayload(data, filename string) {
	w.submitBase64On(context.Background(), "paste", data, filename)
}

// urlKeyDown submits the URL field on Enter.
func (w *Widget) urlKeyDown(e vdom.KeyboardEvent) {
	if e.Key == vdom.KeyEnter {
		w.SubmitPendingURL(context.Background())
	}
}

// urlBlur submits the URL field when focus leaves it.
func (w *Widget) urlBlur() {
	w.SubmitPendingURL(context.Background())
}
