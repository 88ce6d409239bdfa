package embed

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/glowbot/spa-widget-platform/pkg/logging"
)

// captureEvents are the page events that trigger an immediate reconcile.
var captureEvents = []string{"scroll", "resize", "touchmove", "wheel"}

// ReconcilerOptions tune the loop's timing. Zero values take the production
// defaults.
type ReconcilerOptions struct {
	// FastInterval is the high-frequency phase tick (~60Hz).
	FastInterval time.Duration
	// FastWindow bounds the high-frequency phase; it always terminates.
	FastWindow time.Duration
	// SlowInterval is the durable safety-net tick. The slow timer runs for
	// the page's lifetime and is never cancelled on a schedule.
	SlowInterval time.Duration
}

func (o *ReconcilerOptions) defaults() {
	if o.FastInterval <= 0 {
		o.FastInterval = 16 * time.Millisecond
	}
	if o.FastWindow <= 0 {
		o.FastWindow = 5 * time.Second
	}
	if o.SlowInterval <= 0 {
		o.SlowInterval = 2 * time.Second
	}
}

// Reconciler defends the widget container against host page interference.
// Desired state is fixed: container attached directly to the body with the
// critical style set applied. Each trigger compares observed state against
// that and corrects drift; writes are gated on an actual deviation, so
// repeated reconciles of a healthy container are free.
type Reconciler struct {
	doc       *Document
	container *Element
	opts      ReconcilerOptions
	logger    *logging.Logger

	stopOnce sync.Once
	stop     chan struct{}
	runs     atomic.Int64
	heals    atomic.Int64
}

// NewReconciler creates a reconciler with production timing.
func NewReconciler(doc *Document, container *Element, logger *logging.Logger) *Reconciler {
	return NewReconcilerWithOptions(doc, container, ReconcilerOptions{}, logger)
}

// NewReconcilerWithOptions creates a reconciler with explicit timing.
func NewReconcilerWithOptions(doc *Document, container *Element, opts ReconcilerOptions, logger *logging.Logger) *Reconciler {
	opts.defaults()
	if logger == nil {
		logger = logging.Default()
	}
	return &Reconciler{
		doc:       doc,
		container: container,
		opts:      opts,
		logger:    logger,
		stop:      make(chan struct{}),
	}
}

// Start wires every trigger: mutation observers on the body and the
// container, capture-phase event listeners, the bounded high-frequency
// phase, and the durable low-frequency timer.
func (r *Reconciler) Start() {
	r.doc.Observe(r.doc.Body, true, false, nil, func(m Mutation) {
		for _, removed := range m.Removed {
			if removed == r.container || contains(removed, r.container) {
				r.logger.Warn("widget container was removed, re-adding")
				break
			}
		}
		r.Reconcile()
	})

	r.doc.Observe(r.container, false, true, []string{"style", "class", "id"}, func(Mutation) {
		r.Reconcile()
	})

	for _, event := range captureEvents {
		r.doc.AddEventListener(event, func(string) {
			r.Reconcile()
		})
	}

	go r.fastLoop()
	go r.slowLoop()
}

// fastLoop is the bounded high-frequency phase covering the volatile seconds
// right after load. It cancels itself when the window elapses.
func (r *Reconciler) fastLoop() {
	ticker := time.NewTicker(r.opts.FastInterval)
	defer ticker.Stop()
	deadline := time.NewTimer(r.opts.FastWindow)
	defer deadline.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-deadline.C:
			return
		case <-ticker.C:
			r.Reconcile()
		}
	}
}

// slowLoop is the durable defense. It has no deadline; only Stop ends it.
func (r *Reconciler) slowLoop() {
	ticker := time.NewTicker(r.opts.SlowInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.Reconcile()
		}
	}
}

// Reconcile compares observed state against the desired invariants and
// corrects any drift. Idempotent; safe to call from any trigger.
func (r *Reconciler) Reconcile() {
	r.runs.Add(1)

	if r.container.Parent() != r.doc.Body {
		r.doc.Body.AppendChild(r.container)
		r.heals.Add(1)
	}

	for prop, want := range criticalStyles {
		if r.container.Style(prop) != want {
			r.container.SetStyle(prop, want)
			r.heals.Add(1)
		}
	}

	if r.container.Attribute("id") != ContainerID {
		r.container.SetAttribute("id", ContainerID)
		r.heals.Add(1)
	}
}

// Runs reports how many reconcile passes have executed.
func (r *Reconciler) Runs() int64 {
	return r.runs.Load()
}

// Heals reports how many corrective writes have been applied.
func (r *Reconciler) Heals() int64 {
	return r.heals.Load()
}

// Stop ends both timer loops. Observer and event triggers stay registered;
// on a real page the reconciler is never stopped.
func (r *Reconciler) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
}

func contains(el, target *Element) bool {
	for _, child := range el.Children() {
		if child == target || contains(child, target) {
			return true
		}
	}
	return false
}
