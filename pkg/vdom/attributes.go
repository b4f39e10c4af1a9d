package vdom

import "strings"

// attr creates an attribute with the given key and value.
func attr(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// ID sets the element ID.
func ID(id string) Attr { return attr("id", id) }

// Class sets CSS classes. Multiple arguments are joined with spaces.
func Class(classes ...string) Attr { return attr("class", strings.Join(classes, " ")) }

// StyleAttr sets inline CSS.
func StyleAttr(style string) Attr { return attr("style", style) }

// Data sets a data-* attribute.
func Data(key, value string) Attr { return attr("data-"+key, value) }

// Role sets the ARIA role.
func Role(role string) Attr { return attr("role", role) }

// AriaLabel sets the accessible label.
func AriaLabel(label string) Attr { return attr("aria-label", label) }

// AriaBusy marks an element as busy for assistive technology.
func AriaBusy(busy bool) Attr { return attr("aria-busy", busy) }

// AriaLive sets the live-region politeness.
func AriaLive(mode string) Attr { return attr("aria-live", mode) }

// TitleAttr sets the title attribute.
func TitleAttr(title string) Attr { return attr("title", title) }

// Href sets the link target.
func Href(url string) Attr { return attr("href", url) }

// Src sets the source URL for img/script elements.
func Src(url string) Attr { return attr("src", url) }

// Alt sets alternate text for images.
func Alt(text string) Attr { return attr("alt", text) }

// Name sets the form field name.
func Name(name string) Attr { return attr("name", name) }

// Type sets the input type.
func Type(t string) Attr { return attr("type", t) }

// Value sets the input value.
func Value(v string) Attr { return attr("value", v) }

// Placeholder sets the input placeholder.
func Placeholder(p string) Attr { return attr("placeholder", p) }

// Disabled marks a control as disabled.
func Disabled() Attr { return attr("disabled", true) }

// Accept restricts the file types a file input offers.
func Accept(types string) Attr { return attr("accept", types) }

// Charset sets the document character set.
func Charset(cs string) Attr { return attr("charset", cs) }
