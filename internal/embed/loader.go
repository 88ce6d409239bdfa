package embed

import (
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/glowbot/spa-widget-platform/pkg/logging"
)

// Version is the loader version exposed to host pages.
const Version = "2.0.0"

// ContainerID is the fixed id of the single mount point the loader adds to
// the host page body.
const ContainerID = "spa-bot-root"

// Page globals used by the embedding contract.
const (
	GlobalTenantID   = "__SPA_BOT_ID"
	GlobalDescriptor = "SpaBot"
)

// Loader lifecycle states, checked atomically at bootstrap entry.
const (
	stateUninitialized int32 = iota
	stateInitializing
	stateReady
)

// criticalStyles are the properties the loader asserts on its container and
// keeps re-asserting against host page interference.
var criticalStyles = map[string]string{
	"position":       "fixed",
	"z-index":        "2147483647",
	"bottom":         "0",
	"right":          "0",
	"isolation":      "isolate",
	"opacity":        "1",
	"visibility":     "visible",
	"display":        "block",
	"transform":      "translateZ(0)",
	"contain":        "layout style paint",
	"pointer-events": "auto",
}

// Descriptor is the minimal diagnostic global exposed to the host page. It
// carries no control API; the iframe manages its own open/closed state.
type Descriptor struct {
	SpaID     string `json:"spaId"`
	BaseURL   string `json:"baseUrl"`
	Version   string `json:"version"`
	ShadowDOM bool   `json:"shadowDOM"`
}

// Loader mounts the widget into a host page: one isolated container under
// the body, a shadow subtree, and a single iframe hosting the chat app.
// Bootstrap is idempotent per page.
type Loader struct {
	doc    *Document
	logger *logging.Logger

	state      atomic.Int32
	container  *Element
	shadowBox  *Element
	iframe     *Element
	reconciler *Reconciler
	descriptor Descriptor
}

// NewLoader creates a loader for the given page.
func NewLoader(doc *Document, logger *logging.Logger) *Loader {
	if logger == nil {
		logger = logging.Default()
	}
	return &Loader{doc: doc, logger: logger}
}

// Bootstrap runs the embedding sequence. Safe to call at most once per page:
// a second call, or a page that already carries the mount point, returns
// ErrAlreadyLoaded without touching the document. Embedding failures abort
// silently with no visible UI, since there is nothing to render into yet.
func (l *Loader) Bootstrap() error {
	if !l.state.CompareAndSwap(stateUninitialized, stateInitializing) {
		l.logger.Warn("widget already loaded")
		return ErrAlreadyLoaded
	}

	script := l.findScript()
	if script == nil {
		l.state.Store(stateUninitialized)
		l.logger.Error("could not find loader script element")
		return ErrMissingScriptElement
	}

	spaID := l.tenantID(script)
	if spaID == "" {
		l.state.Store(stateUninitialized)
		l.logger.Error("missing spa id, provide it in the script URL: bot.js?spa=YOUR_SPA_ID")
		return ErrMissingTenantID
	}

	baseURL := l.baseURL(script)

	if l.doc.GetElementByID(ContainerID) != nil {
		l.state.Store(stateUninitialized)
		l.logger.Warn("widget container already exists", "container_id", ContainerID)
		return ErrAlreadyLoaded
	}

	l.logger.Info("initializing widget", "spa_id", spaID, "base_url", baseURL)
	l.mount(spaID, baseURL)

	l.descriptor = Descriptor{SpaID: spaID, BaseURL: baseURL, Version: Version, ShadowDOM: true}
	l.doc.SetGlobal(GlobalDescriptor, l.descriptor)

	l.state.Store(stateReady)
	return nil
}

// findScript locates the loader's own script tag by its src.
func (l *Loader) findScript() *Element {
	var found *Element
	var walk func(el *Element)
	walk = func(el *Element) {
		if found != nil {
			return
		}
		if el.Tag == "script" && strings.Contains(el.Attribute("src"), "bot.js") {
			found = el
			return
		}
		for _, child := range el.Children() {
			walk(child)
		}
	}
	walk(l.doc.Body)
	return found
}

// tenantID derives the spa id with the documented precedence: script URL
// query parameter, then data attribute, then page global.
func (l *Loader) tenantID(script *Element) string {
	if src := script.Attribute("src"); src != "" {
		if parsed, err := url.Parse(src); err == nil {
			if spa := parsed.Query().Get("spa"); spa != "" {
				return spa
			}
		}
	}
	if spa := script.Attribute("data-spa"); spa != "" {
		return spa
	}
	if v, ok := l.doc.Global(GlobalTenantID); ok {
		if spa, ok := v.(string); ok && spa != "" {
			return spa
		}
	}
	return ""
}

// baseURL derives the iframe content base: explicit data-base override, else
// the script URL with the trailing script filename stripped, else the page
// origin.
func (l *Loader) baseURL(script *Element) string {
	if base := script.Attribute("data-base"); base != "" {
		return strings.TrimRight(base, "/")
	}
	if src := script.Attribute("src"); src != "" {
		if parsed, err := url.Parse(src); err == nil && parsed.Host != "" {
			path := strings.TrimSuffix(parsed.Path, "/bot.js")
			return strings.TrimRight(fmt.Sprintf("%s://%s%s", parsed.Scheme, parsed.Host, path), "/")
		}
	}
	return l.doc.Origin()
}

// mount builds the isolated widget subtree and attaches it to the body.
func (l *Loader) mount(spaID, baseURL string) {
	container := l.doc.CreateElement("div")
	container.SetAttribute("id", ContainerID)
	container.SetAttribute("data-spa-id", spaID)
	container.SetAttribute("data-spa-bot-widget", "true")
	for prop, value := range criticalStyles {
		container.SetStyle(prop, value)
	}

	shadowRoot := container.AttachShadow()

	shadowBox := l.doc.CreateElement("div")
	shadowBox.SetAttribute("id", "spa-bot-shadow-container")
	for _, prop := range []string{"position", "z-index", "bottom", "right", "pointer-events", "opacity", "visibility", "display"} {
		shadowBox.SetStyle(prop, criticalStyles[prop])
	}

	iframe := l.doc.CreateElement("iframe")
	iframe.SetAttribute("src", fmt.Sprintf("%s?spa=%s", baseURL, url.QueryEscape(spaID)))
	iframe.SetAttribute("frameborder", "0")
	iframe.SetAttribute("scrolling", "no")
	iframe.SetAttribute("title", "Spa Booking Chatbot")
	iframe.SetStyle("width", "100%")
	iframe.SetStyle("height", "100%")
	iframe.SetStyle("border", "none")
	iframe.SetStyle("pointer-events", "auto")

	shadowBox.AppendChild(iframe)
	shadowRoot.AppendChild(shadowBox)

	// Directly under the body, never inside another container, so no host
	// stacking or overflow context applies.
	l.doc.Body.AppendChild(container)

	l.container = container
	l.shadowBox = shadowBox
	l.iframe = iframe

	l.reconciler = NewReconciler(l.doc, container, l.logger)
	l.reconciler.Start()
}

// OnFrameError renders the inline unavailable placeholder inside the shadow
// subtree instead of leaving a broken region.
func (l *Loader) OnFrameError() {
	if l.shadowBox == nil || l.iframe == nil {
		return
	}
	l.logger.Error("widget iframe failed to load", "src", l.iframe.Attribute("src"))

	l.shadowBox.RemoveChild(l.iframe)

	placeholder := l.doc.CreateElement("div")
	placeholder.SetAttribute("id", "spa-bot-unavailable")
	placeholder.SetAttribute("data-message", "Chatbot temporarily unavailable")
	placeholder.SetStyle("background", "white")
	placeholder.SetStyle("text-align", "center")
	l.shadowBox.AppendChild(placeholder)
}

// Descriptor returns the diagnostic global once ready.
func (l *Loader) Descriptor() Descriptor {
	return l.descriptor
}

// Container returns the mounted host element, nil before bootstrap.
func (l *Loader) Container() *Element {
	return l.container
}

// Reconciler returns the self-healing loop, nil before bootstrap.
func (l *Loader) Reconciler() *Reconciler {
	return l.reconciler
}

// Ready reports whether bootstrap completed.
func (l *Loader) Ready() bool {
	return l.state.Load() == stateReady
}

// Shutdown stops the self-healing loop. Only used on teardown; on a real
// page the loop runs for the page's lifetime.
func (l *Loader) Shutdown() {
	if l.reconciler != nil {
		l.reconciler.Stop()
	}
}
