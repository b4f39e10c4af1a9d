// Package vdom defines the virtual DOM node type and the builder functions
// used to describe widget markup in Go. Nodes are plain data; the render
// package turns them into HTML.
package vdom
