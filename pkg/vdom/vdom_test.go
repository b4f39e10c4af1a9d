package vdom

import "testing"

func TestCreateElement(t *testing.T) {
	node := Div(
		Class("box"),
		ID("poster"),
		Span("hello"),
		nil,
		Text("world"),
	)

	if node.Kind != KindElement || node.Tag != "div" {
		t.Fatalf("expected div element, got %s %q", node.Kind, node.Tag)
	}
	if node.Props["class"] != "box" {
		t.Errorf("expected class box, got %v", node.Props["class"])
	}
	if node.Props["id"] != "poster" {
		t.Errorf("expected id poster, got %v", node.Props["id"])
	}
	if len(node.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(node.Children))
	}
	if node.Children[1].Kind != KindText || node.Children[1].Text != "world" {
		t.Errorf("expected trailing text node, got %+v", node.Children[1])
	}
}

func TestEventHandlerProp(t *testing.T) {
	called := false
	node := Button(OnClick(func() { called = true }))

	if !node.IsInteractive() {
		t.Fatal("expected interactive node")
	}
	handler, ok := node.Props["onclick"].(func())
	if !ok {
		t.Fatalf("expected func() handler, got %T", node.Props["onclick"])
	}
	handler()
	if !called {
		t.Error("handler not invoked")
	}
}

func TestConditionalHelpers(t *testing.T) {
	if If(false, Div()) != nil {
		t.Error("If(false) should be nil")
	}
	if If(true, Div()) == nil {
		t.Error("If(true) should return node")
	}

	evaluated := false
	_ = When(false, func() *VNode {
		evaluated = true
		return Div()
	})
	if evaluated {
		t.Error("When(false) must not evaluate the branch")
	}

	got := IfElse(false, Text("a"), Text("b"))
	if got.Text != "b" {
		t.Errorf("expected b, got %q", got.Text)
	}
}

func TestFragmentSkipsNil(t *testing.T) {
	f := Fragment(Text("a"), nil, Text("b"))
	if f.Kind != KindFragment || len(f.Children) != 2 {
		t.Errorf("expected fragment with 2 children, got %d", len(f.Children))
	}
}

func TestVoidElements(t *testing.T) {
	if !IsVoidElement("img") || !IsVoidElement("input") {
		t.Error("img and input are void elements")
	}
	if IsVoidElement("div") {
		t.Error("div is not a void element")
	}
}
