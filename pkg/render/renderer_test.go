package render

import (
	"strings"
	"testing"

	. "github.com/posterbox-dev/posterbox/pkg/vdom"
)

func renderToString(t *testing.T, node *VNode) string {
	t.Helper()
	html, err := NewRenderer().RenderToString(node)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	return html
}

func TestRenderElement(t *testing.T) {
	html := renderToString(t, Div(Class("box"), Span("hi")))
	if html != `<div class="box"><span>hi</span></div>` {
		t.Errorf("unexpected html: %s", html)
	}
}

func TestRenderVoidElement(t *testing.T) {
	html := renderToString(t, Img(Src("/image/abc"), Alt("poster")))
	if html != `<img alt="poster" src="/image/abc">` {
		t.Errorf("unexpected html: %s", html)
	}
}

func TestRenderEscapesText(t *testing.T) {
	html := renderToString(t, Div(Text(`<script>alert("x")</script>`)))
	if strings.Contains(html, "<script>") {
		t.Errorf("text not escaped: %s", html)
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Errorf("expected escaped script tag: %s", html)
	}
}

func TestRenderEscapesAttributes(t *testing.T) {
	html := renderToString(t, Div(TitleAttr(`a"b`)))
	if !strings.Contains(html, `title="a&quot;b"`) {
		t.Errorf("attribute not escaped: %s", html)
	}
}

func TestRenderBooleanAttr(t *testing.T) {
	html := renderToString(t, Input(Type("text"), Disabled()))
	if !strings.Contains(html, " disabled") {
		t.Errorf("expected bare disabled attribute: %s", html)
	}

	html = renderToString(t, Input(Attr{Key: "disabled", Value: false}))
	if strings.Contains(html, "disabled") {
		t.Errorf("false boolean attribute should be omitted: %s", html)
	}
}

func TestRenderEventMarker(t *testing.T) {
	html := renderToString(t, Button(OnClick(func() {})))
	if !strings.Contains(html, `data-on-click="true"`) {
		t.Errorf("expected event marker: %s", html)
	}
	if strings.Contains(html, "onclick") {
		t.Errorf("handler must not render as attribute: %s", html)
	}
}

func TestRenderComponentAndFragment(t *testing.T) {
	comp := Func(func() *VNode {
		return Fragment(Text("a"), Span("b"))
	})
	html := renderToString(t, Div(comp))
	if html != `<div>a<span>b</span></div>` {
		t.Errorf("unexpected html: %s", html)
	}
}

func TestRenderRaw(t *testing.T) {
	html := renderToString(t, Div(Raw("<b>bold</b>")))
	if html != `<div><b>bold</b></div>` {
		t.Errorf("unexpected html: %s", html)
	}
}
