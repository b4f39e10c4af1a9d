package poster

import (
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/posterbox-dev/posterbox/pkg/hostbridge"
	"github.com/posterbox-dev/posterbox/pkg/reactive"
	"github.com/posterbox-dev/posterbox/pkg/store"
)

// DefaultMaxUploadBytes is the upload cap applied when no override is set.
const DefaultMaxUploadBytes int64 = 20 << 20 // 20 MiB

// Widget is one poster acquisition instance. All state lives in signals;
// the widget subscribes itself to each of them, so every mutation that
// affects rendered output is followed by a re-render notification.
type Widget struct {
	id       string
	store    store.ImageStore
	registry *hostbridge.Registry
	binding  Binding
	logger   *slog.Logger
	tracer   trace.Tracer
	maxBytes int64

	// onRender is invoked whenever any rendered-from signal changes.
	onRender func()

	// onOpenPicker asks the host to open its file dialog.
	onOpenPicker func()

	source     *reactive.Signal[Source]
	uploading  *reactive.BoolSignal
	dragHover  *reactive.BoolSignal
	errText    *reactive.Signal[string]
	pendingURL *reactive.Signal[string]
	previewURL *reactive.Signal[string]

	// inflight serializes submissions per instance: the store call is a
	// single request, so overlapping submissions queue and the last
	// completing one wins.
	inflight sync.Mutex

	// bustMu guards lastBust, the previous cache-busting value.
	bustMu   sync.Mutex
	lastBust int64

	mu       sync.Mutex
	disposed bool

	listenerID uint64
}

var _ reactive.Listener = (*Widget)(nil)
var _ hostbridge.PayloadTarget = (*Widget)(nil)

// Option configures a Widget.
type Option func(*Widget)

// WithRegistry registers the widget in the given hostbridge registry for
// out-of-band paste/drop payload delivery.
func WithRegistry(r *hostbridge.Registry) Option {
	return func(w *Widget) { w.registry = r }
}

// WithBinding sets the parent form's output callbacks.
func WithBinding(b Binding) Option {
	return func(w *Widget) { w.binding = b }
}

// WithInitial seeds the widget from the parent form's current values.
func WithInitial(id store.ImageID, legacyURL string) Option {
	return func(w *Widget) { w.source = reactive.NewSignal(SourceOf(id, legacyURL)) }
}

// WithMaxBytes overrides the upload cap.
func WithMaxBytes(n int64) Option {
	return func(w *Widget) {
		if n > 0 {
			w.maxBytes = n
		}
	}
}

// WithLogger sets the widget's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Widget) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithRenderNotify sets the callback fired whenever rendered state changes.
func WithRenderNotify(fn func()) Option {
	return func(w *Widget) { w.onRender = fn }
}

// WithPickerOpener sets the host callback that opens the file dialog when
// the drop zone is clicked.
func WithPickerOpener(fn func()) Option {
	return func(w *Widget) { w.onOpenPicker = fn }
}

// WithInstanceID overrides the generated instance id. Intended for tests
// and hosts that manage their own ids.
func WithInstanceID(id string) Option {
	return func(w *Widget) {
		if id != "" {
			w.id = id
		}
	}
}

// New creates a widget backed by the given store.
func New(st store.ImageStore, opts ...Option) *Widget {
	w := &Widget{
		id:         uuid.NewString(),
		store:      st,
		logger:     slog.Default().With("component", "poster"),
		tracer:     otel.Tracer("posterbox/poster"),
		maxBytes:   DefaultMaxUploadBytes,
		uploading:  reactive.NewBoolSignal(false),
		dragHover:  reactive.NewBoolSignal(false),
		errText:    reactive.NewSignal(""),
		pendingURL: reactive.NewSignal(""),
		previewURL: reactive.NewSignal(""),
		listenerID: reactive.NextID(),
	}

	for _, opt := range opts {
		opt(w)
	}
	if w.source == nil {
		w.source = reactive.NewSignal(NoSource)
	}

	w.source.Subscribe(w)
	w.uploading.Subscribe(w)
	w.dragHover.Subscribe(w)
	w.errText.Subscribe(w)
	w.pendingURL.Subscribe(w)
	w.previewURL.Subscribe(w)

	w.recomputePreview()

	// Registration is a one-time side effect per instance lifetime.
	// Payloads dispatched before it completes are dropped by the
	// registry and the widget stays usable.
	if w.registry != nil {
		w.registry.Register(w.id, w)
	}

	return w
}

// InstanceID returns the generated per-instance identifier the host uses to
// address paste/drop payloads.
func (w *Widget) InstanceID() string {
	return w.id
}

// ID implements reactive.Listener.
func (w *Widget) ID() uint64 {
	return w.listenerID
}

// MarkDirty implements reactive.Listener by forwarding to the host's
// re-render callback.
func (w *Widget) MarkDirty() {
	if w.onRender != nil {
		w.onRender()
	}
}

// Dispose tears the instance down: it deregisters from the hostbridge and
// stops listening to its signals. Submissions after Dispose fail with
// ErrDisposed.
func (w *Widget) Dispose() {
	w.mu.Lock()
	if w.disposed {
		w.mu.Unlock()
		return
	}
	w.disposed = true
	w.mu.Unlock()

	if w.registry != nil {
		w.registry.Deregister(w.id)
	}

	w.source.Unsubscribe(w)
	w.uploading.Unsubscribe(w)
	w.dragHover.Unsubscribe(w)
	w.errText.Unsubscribe(w)
	w.pendingURL.Unsubscribe(w)
	w.previewURL.Unsubscribe(w)
}

func (w *Widget) isDisposed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.disposed
}

// Source returns the current poster value.
func (w *Widget) Source() Source {
	return w.source.Get()
}

// SetSource re-synchronizes the widget when the parent resets its values
// externally. It does not fire the binding callbacks: the parent already
// knows.
func (w *Widget) SetSource(s Source) {
	w.source.Set(s)
	w.recomputePreview()
}

// Uploading reports whether a submission is in flight.
func (w *Widget) Uploading() bool {
	return w.uploading.Get()
}

// DragHover reports whether a drag is currently over the drop zone.
func (w *Widget) DragHover() bool {
	return w.dragHover.Get()
}

// ErrorText returns the current user-visible error, empty when none.
func (w *Widget) ErrorText() string {
	return w.errText.Get()
}

// PendingURL returns the in-progress URL field text.
func (w *Widget) PendingURL() string {
	return w.pendingURL.Get()
}

// SetPendingURL tracks the URL field as the user types.
func (w *Widget) SetPendingURL(s string) {
	w.pendingURL.Set(s)
}

// PreviewURL returns the current preview URL, empty when no poster is set.
// Stored images carry a cache-busting query parameter that is distinct for
// every recomputation, so the browser never serves a stale cached image
// after a replacement.
func (w *Widget) PreviewURL() string {
	return w.previewURL.Get()
}

// recomputePreview derives the preview URL from the current source.
func (w *Widget) recomputePreview() {
	src := w.source.Get()
	switch src.Kind {
	case SourceImage:
		base := w.store.PreviewURL(src.ImageID())
		w.previewURL.Set(base + "?v=" + strconv.FormatInt(w.nextBust(), 10))
	case SourceLegacyURL:
		w.previewURL.Set(src.Value)
	default:
		w.previewURL.Set("")
	}
}

// nextBust returns a monotonically distinct cache-busting value: the
// current nanosecond timestamp, bumped past the previous value if the
// clock has not advanced.
func (w *Widget) nextBust() int64 {
	w.bustMu.Lock()
	defer w.bustMu.Unlock()

	bust := time.Now().UnixNano()
	if bust <= w.lastBust {
		bust = w.lastBust + 1
	}
	w.lastBust = bust
	return bust
}
