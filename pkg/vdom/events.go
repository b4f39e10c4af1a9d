package vdom

// event creates an EventHandler with the given name and handler.
// The name is prefixed with "on" (e.g., "click" becomes "onclick").
func event(name string, handler any) EventHandler {
	return EventHandler{Event: "on" + name, Handler: handler}
}

// OnClick handles click events.
func OnClick(handler any) EventHandler { return event("click", handler) }

// OnKeyDown handles keydown events.
func OnKeyDown(handler any) EventHandler { return event("keydown", handler) }

// OnInput handles input events (fired when value changes).
func OnInput(handler any) EventHandler { return event("input", handler) }

// OnChange handles change events (fired when value is committed).
func OnChange(handler any) EventHandler { return event("change", handler) }

// OnBlur handles blur events.
func OnBlur(handler any) EventHandler { return event("blur", handler) }

// OnDragOver handles dragover events.
func OnDragOver(handler any) EventHandler { return event("dragover", handler) }

// OnDragLeave handles dragleave events.
func OnDragLeave(handler any) EventHandler { return event("dragleave", handler) }

// OnDrop handles drop events.
func OnDrop(handler any) EventHandler { return event("drop", handler) }

// OnPaste handles paste events.
func OnPaste(handler any) EventHandler { return event("paste", handler) }

// KeyboardEvent represents a keyboard event with key and modifiers.
type KeyboardEvent struct {
	// The key value (e.g., "Enter", "a", "Escape")
	Key string

	// The physical key code (e.g., "Enter", "KeyA", "Escape")
	Code string

	// Modifier keys
	CtrlKey  bool
	ShiftKey bool
	AltKey   bool
	MetaKey  bool

	// True if key is being held down (auto-repeat)
	Repeat bool
}

// KeyEnter is the Key value for the Enter key.
const KeyEnter = "Enter"

// InputEvent represents an input field change event.
type InputEvent struct {
	// Current value of the input
	Value string
}

// DragEvent represents a drag-and-drop event. The dropped file payload is
// not carried here; the host delivers it out-of-band, base64-encoded,
// through the hostbridge registry.
type DragEvent struct {
	ClientX int
	ClientY int
}

// DropEvent is an alias for DragEvent used on drop targets.
type DropEvent = DragEvent
