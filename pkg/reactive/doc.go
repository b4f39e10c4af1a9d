// Package reactive provides the signal primitives that drive posterbox
// widgets. A Signal[T] holds a value; Listeners subscribed to it are marked
// dirty whenever the value changes, which is how every UI-visible mutation
// gets a paired re-render trigger.
package reactive
