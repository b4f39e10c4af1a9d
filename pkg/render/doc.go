// Package render turns vdom trees into HTML. Output is deterministic:
// attributes are sorted, text and attribute values are escaped, and elements
// with event handlers are marked with data-on-* attributes for client-side
// binding.
package render
