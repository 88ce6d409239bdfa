package embed

import (
	"strings"
	"sync"
)

// This file models the small slice of a browser document the loader touches:
// elements with attributes and inline styles, a body to mount into, mutation
// observers, and capture-phase event listeners. Host page interference is
// simulated by mutating the document the same way a hostile script would.

// MutationType classifies a document change.
type MutationType string

const (
	MutationChildList  MutationType = "childList"
	MutationAttributes MutationType = "attributes"
)

// Mutation is one observed document change.
type Mutation struct {
	Type   MutationType
	Target *Element
	// Attr names the changed attribute for attribute mutations; inline
	// style writes report "style".
	Attr string
	// Removed holds nodes detached by a childList mutation.
	Removed []*Element
}

// MutationFunc receives mutations for a subscribed target.
type MutationFunc func(Mutation)

// EventFunc receives dispatched page events (scroll, resize, ...).
type EventFunc func(event string)

// Element is a DOM node. All access goes through its owning Document's lock.
type Element struct {
	Tag string

	doc      *Document
	parent   *Element
	children []*Element
	attrs    map[string]string
	styles   map[string]string
	shadow   *Element
}

// Document is an in-memory page: a body, globals, observers, and listeners.
type Document struct {
	mu sync.Mutex

	Body   *Element
	origin string

	globals   map[string]any
	observers []*observer
	listeners map[string][]EventFunc
}

type observer struct {
	target     *Element
	childList  bool
	attributes bool
	attrFilter map[string]bool
	fn         MutationFunc
}

// NewDocument creates a page with an empty body.
func NewDocument(origin string) *Document {
	doc := &Document{
		origin:    strings.TrimRight(origin, "/"),
		globals:   make(map[string]any),
		listeners: make(map[string][]EventFunc),
	}
	doc.Body = doc.newElement("body")
	return doc
}

// Origin returns the page origin.
func (d *Document) Origin() string { return d.origin }

func (d *Document) newElement(tag string) *Element {
	return &Element{
		Tag:    tag,
		doc:    d,
		attrs:  make(map[string]string),
		styles: make(map[string]string),
	}
}

// CreateElement makes a detached element owned by this document.
func (d *Document) CreateElement(tag string) *Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.newElement(tag)
}

// SetGlobal sets a page global (window property).
func (d *Document) SetGlobal(name string, value any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.globals[name] = value
}

// Global reads a page global.
func (d *Document) Global(name string) (any, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.globals[name]
	return v, ok
}

// GetElementByID searches the document tree, including shadow subtrees.
func (d *Document) GetElementByID(id string) *Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	return findByID(d.Body, id)
}

func findByID(el *Element, id string) *Element {
	if el.attrs["id"] == id {
		return el
	}
	for _, child := range el.children {
		if found := findByID(child, id); found != nil {
			return found
		}
	}
	if el.shadow != nil {
		if found := findByID(el.shadow, id); found != nil {
			return found
		}
	}
	return nil
}

// Observe registers a mutation callback for a target. childList fires on
// child additions/removals of the target; attributes fires on attribute and
// style changes of the target itself, optionally filtered by name.
func (d *Document) Observe(target *Element, childList, attributes bool, attrFilter []string, fn MutationFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var filter map[string]bool
	if len(attrFilter) > 0 {
		filter = make(map[string]bool, len(attrFilter))
		for _, name := range attrFilter {
			filter[name] = true
		}
	}
	d.observers = append(d.observers, &observer{
		target:     target,
		childList:  childList,
		attributes: attributes,
		attrFilter: filter,
		fn:         fn,
	})
}

// AddEventListener registers a capture-phase listener for a page event.
func (d *Document) AddEventListener(event string, fn EventFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[event] = append(d.listeners[event], fn)
}

// DispatchEvent fires a page event (scroll, resize, touchmove, wheel).
func (d *Document) DispatchEvent(event string) {
	d.mu.Lock()
	fns := append([]EventFunc(nil), d.listeners[event]...)
	d.mu.Unlock()

	for _, fn := range fns {
		fn(event)
	}
}

// notify fires matching observers outside the document lock, which the caller
// must not hold. Healing callbacks mutate the document again; gating writes
// on actual drift keeps that recursion finite.
func (d *Document) notify(m Mutation) {
	d.mu.Lock()
	var fns []MutationFunc
	for _, o := range d.observers {
		if o.target != m.Target {
			continue
		}
		switch m.Type {
		case MutationChildList:
			if o.childList {
				fns = append(fns, o.fn)
			}
		case MutationAttributes:
			if o.attributes && (o.attrFilter == nil || o.attrFilter[m.Attr]) {
				fns = append(fns, o.fn)
			}
		}
	}
	d.mu.Unlock()

	for _, fn := range fns {
		fn(m)
	}
}

// ID returns the element's id attribute.
func (e *Element) ID() string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return e.attrs["id"]
}

// SetAttribute sets an attribute, firing attribute observers on change.
func (e *Element) SetAttribute(name, value string) {
	e.doc.mu.Lock()
	changed := e.attrs[name] != value
	e.attrs[name] = value
	e.doc.mu.Unlock()

	if changed {
		e.doc.notify(Mutation{Type: MutationAttributes, Target: e, Attr: name})
	}
}

// Attribute reads an attribute.
func (e *Element) Attribute(name string) string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return e.attrs[name]
}

// RemoveAttribute deletes an attribute.
func (e *Element) RemoveAttribute(name string) {
	e.doc.mu.Lock()
	_, existed := e.attrs[name]
	delete(e.attrs, name)
	e.doc.mu.Unlock()

	if existed {
		e.doc.notify(Mutation{Type: MutationAttributes, Target: e, Attr: name})
	}
}

// SetStyle sets an inline style property. A no-op write (same value) fires no
// observers, so idempotent re-assertions are free.
func (e *Element) SetStyle(prop, value string) {
	e.doc.mu.Lock()
	changed := e.styles[prop] != value
	e.styles[prop] = value
	e.doc.mu.Unlock()

	if changed {
		e.doc.notify(Mutation{Type: MutationAttributes, Target: e, Attr: "style"})
	}
}

// Style reads an inline style property.
func (e *Element) Style(prop string) string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return e.styles[prop]
}

// AppendChild attaches child to e, detaching it from any previous parent
// first. Fires childList observers on e (and on the old parent if any).
func (e *Element) AppendChild(child *Element) {
	e.doc.mu.Lock()
	oldParent := child.parent
	if oldParent != nil {
		oldParent.removeChildLocked(child)
	}
	child.parent = e
	e.children = append(e.children, child)
	e.doc.mu.Unlock()

	if oldParent != nil && oldParent != e {
		e.doc.notify(Mutation{Type: MutationChildList, Target: oldParent, Removed: []*Element{child}})
	}
	e.doc.notify(Mutation{Type: MutationChildList, Target: e})
}

// RemoveChild detaches child from e. Unrelated nodes are a no-op.
func (e *Element) RemoveChild(child *Element) {
	e.doc.mu.Lock()
	removed := e.removeChildLocked(child)
	e.doc.mu.Unlock()

	if removed {
		e.doc.notify(Mutation{Type: MutationChildList, Target: e, Removed: []*Element{child}})
	}
}

func (e *Element) removeChildLocked(child *Element) bool {
	for i, c := range e.children {
		if c == child {
			e.children = append(e.children[:i], e.children[i+1:]...)
			child.parent = nil
			return true
		}
	}
	return false
}

// Parent returns the element's current parent.
func (e *Element) Parent() *Element {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return e.parent
}

// Children returns a copy of the element's child list.
func (e *Element) Children() []*Element {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return append([]*Element(nil), e.children...)
}

// AttachShadow creates (or returns) the element's isolated subtree root.
func (e *Element) AttachShadow() *Element {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	if e.shadow == nil {
		e.shadow = e.doc.newElement("#shadow-root")
	}
	return e.shadow
}

// ShadowRoot returns the shadow subtree root, or nil.
func (e *Element) ShadowRoot() *Element {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return e.shadow
}
