package poster

import (
	. "github.com/posterbox-dev/posterbox/pkg/vdom"
)

// Render returns the widget's markup. Reads go through the signal getters,
// so the output always reflects current state.
func (w *Widget) Render() *VNode {
	src := w.source.Get()
	uploading := w.uploading.Get()
	hover := w.dragHover.Get()
	errText := w.errText.Get()
	preview := w.previewURL.Get()

	zoneClasses := []string{"pb-dropzone"}
	if hover {
		zoneClasses = append(zoneClasses, "pb-dropzone-hover")
	}
	if uploading {
		zoneClasses = append(zoneClasses, "pb-dropzone-busy")
	}

	return Div(
		Class("pb-widget"),
		Data("poster-instance", w.id),

		Div(
			Class(zoneClasses...),
			Role("button"),
			AriaLabel("Poster image drop zone"),
			AriaBusy(uploading),
			OnClick(w.OpenPicker),
			OnDragOver(func(DragEvent) { w.DragOver() }),
			OnDragLeave(func(DragEvent) { w.DragLeave() }),
			OnDrop(func(DropEvent) { w.dragHover.SetFalse() }),

			IfElse(preview != "",
				Img(Class("pb-preview"), Src(preview), Alt("Poster preview")),
				Div(Class("pb-placeholder"),
					P("Drop a poster here, paste one, or click to choose a file."),
				),
			),

			If(uploading, Div(Class("pb-overlay"), Span("Uploading..."))),
		),

		If(errText != "", P(Class("pb-error"), AriaLive("polite"), errText)),

		Div(
			Class("pb-url-row"),
			Input(
				Type("text"),
				Class("pb-url-input"),
				Name("poster-url"),
				Placeholder("...or paste an image URL"),
				Value(w.pendingURL.Get()),
				OnInput(func(e InputEvent) { w.SetPendingURL(e.Value) }),
				OnKeyDown(w.urlKeyDown),
				OnBlur(w.urlBlur),
			),
		),

		If(!src.IsZero() && !uploading,
			Button(
				Type("button"),
				Class("pb-remove"),
				OnClick(w.Remove),
				"Remove poster",
			),
		),
	)
}
