// Package poster implements the poster image acquisition widget.
//
// The widget accepts an image from four input channels (file picker,
// drag-and-drop, clipboard paste, remote URL), normalizes each into raw
// bytes plus a filename, persists it through an ImageStore, and mirrors the
// resulting identifier back to the parent form. State lives in reactive
// signals so every UI-visible mutation triggers a re-render notification.
package poster
