// Package uitest provides render-and-assert helpers for widget tests.
package uitest
