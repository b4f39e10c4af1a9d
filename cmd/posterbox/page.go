package main

import (
	"net/http"

	"github.com/posterbox-dev/posterbox/pkg/poster"
	"github.com/posterbox-dev/posterbox/pkg/render"
	"github.com/posterbox-dev/posterbox/pkg/vdom"
)

// handleIndex serves the demo page. The widget markup here is the initial
// paint only; once the page connects to /ws its session widget takes over
// and pushes replacements into #pb-root.
func (s *demoServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	widget := poster.New(s.store, poster.WithMaxBytes(s.maxBytes))
	defer widget.Dispose()

	page := vdom.Html(
		vdom.Head(
			vdom.Meta(vdom.Charset("utf-8")),
			vdom.Title("Posterbox"),
			vdom.Style(vdom.Raw(pageCSS)),
		),
		vdom.Body(
			vdom.Main(
				vdom.H1("Posterbox"),
				vdom.P("Drop, paste, pick or link a poster image."),
				vdom.Div(vdom.ID("pb-root"), widget.Render()),
			),
			vdom.Script(vdom.Raw(pageJS)),
		),
	)

	var rr render.Renderer
	html, err := rr.RenderToString(page)
	if err != nil {
		s.logger.Error("page render failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte("<!DOCTYPE html>" + html))
}

const pageCSS = `
body { font-family: system-ui, sans-serif; max-width: 640px; margin: 2rem auto; }
.pb-dropzone { border: 2px dashed #aaa; border-radius: 8px; padding: 2rem;
  text-align: center; cursor: pointer; position: relative; }
.pb-dropzone-hover { border-color: #4a90d9; background: #f0f7ff; }
.pb-dropzone-busy { opacity: 0.6; cursor: wait; }
.pb-preview { max-width: 100%; max-height: 320px; }
.pb-overlay { position: absolute; inset: 0; display: flex;
  align-items: center; justify-content: center; background: rgba(255,255,255,0.7); }
.pb-error { color: #b00020; }
.pb-url-row { margin-top: 1rem; }
.pb-url-input { width: 100%; padding: 0.5rem; box-sizing: border-box; }
.pb-remove { margin-top: 1rem; }
`

const pageJS = `
(function () {
  var proto = location.protocol === "https:" ? "wss:" : "ws:";
  var ws = new WebSocket(proto + "//" + location.host + "/ws");
  var root = document.getElementById("pb-root");

  function send(msg) {
    if (ws.readyState === WebSocket.OPEN) ws.send(JSON.stringify(msg));
  }

  function sendFile(type, file) {
    var reader = new FileReader();
    reader.onload = function () {
      var b64 = reader.result.split(",", 2)[1] || "";
      send({ type: type, data: b64, filename: file.name || "pasted-image" });
    };
    reader.readAsDataURL(file);
  }

  ws.onmessage = function (e) {
    var frame = JSON.parse(e.data);
    if (frame.type === "render") root.innerHTML = frame.html;
  };

  document.addEventListener("paste", function (e) {
    var items = (e.clipboardData || {}).items || [];
    for (var i = 0; i < items.length; i++) {
      if (items[i].kind === "file") {
        sendFile("paste", items[i].getAsFile());
        e.preventDefault();
        return;
      }
    }
  });

  root.addEventListener("dragover", function (e) {
    e.preventDefault();
    if (e.target.closest(".pb-dropzone")) send({ type: "dragover" });
  });
  root.addEventListener("dragleave", function (e) {
    if (e.target.closest(".pb-dropzone")) send({ type: "dragleave" });
  });
  root.addEventListener("drop", function (e) {
    e.preventDefault();
    if (!e.target.closest(".pb-dropzone")) return;
    var files = e.dataTransfer.files;
    if (files.length > 0) sendFile("drop", files[0]);
  });

  var picker = document.createElement("input");
  picker.type = "file";
  picker.accept = "image/*";
  picker.onchange = function () {
    if (picker.files.length > 0) sendFile("file", picker.files[0]);
    picker.value = "";
  };

  root.addEventListener("click", function (e) {
    if (e.target.closest(".pb-remove")) {
      send({ type: "remove" });
      return;
    }
    if (e.target.closest(".pb-dropzone")) picker.click();
  });

  root.addEventListener("input", function (e) {
    if (e.target.closest(".pb-url-input"))
      send({ type: "url-input", value: e.target.value });
  });
  root.addEventListener("keydown", function (e) {
    if (e.key === "Enter" && e.target.closest(".pb-url-input"))
      send({ type: "url-submit" });
  });
  root.addEventListener("focusout", function (e) {
    if (e.target.closest(".pb-url-input")) send({ type: "url-submit" });
  });
})();
`
