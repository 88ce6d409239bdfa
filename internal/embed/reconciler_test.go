package embed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowbot/spa-widget-platform/pkg/logging"
)

// mountWithoutTimers builds a mounted container with observer and event
// triggers wired but no background timers, for deterministic trigger tests.
func mountWithoutTimers(t *testing.T) (*Document, *Element, *Reconciler) {
	t.Helper()
	doc, _ := pageWithScript(t, "https://widget.example.com/bot.js?spa=serenity-spa", nil)
	loader := newLoader(t, doc)
	require.NoError(t, loader.Bootstrap())

	rec := loader.Reconciler()
	rec.Stop()
	return doc, loader.Container(), rec
}

func TestObserverHealsDetachedContainer(t *testing.T) {
	doc, container, _ := mountWithoutTimers(t)

	doc.Body.RemoveChild(container)

	// The body childList observer reattaches synchronously.
	assert.Same(t, doc.Body, container.Parent(), "detached container is re-added")
}

func TestObserverHealsClobberedStyles(t *testing.T) {
	_, container, rec := mountWithoutTimers(t)
	before := rec.Heals()

	container.SetStyle("display", "none")
	assert.Equal(t, "block", container.Style("display"))

	container.SetStyle("z-index", "1")
	assert.Equal(t, "2147483647", container.Style("z-index"))

	container.SetAttribute("id", "something-else")
	assert.Equal(t, ContainerID, container.Attribute("id"))

	assert.Greater(t, rec.Heals(), before)
}

func TestAttributeObserverHonorsFilter(t *testing.T) {
	_, container, rec := mountWithoutTimers(t)

	before := rec.Runs()
	container.SetAttribute("data-theme", "dark")
	assert.Equal(t, before, rec.Runs(), "attributes outside the filter never trigger a pass")

	container.SetAttribute("class", "resized")
	assert.Greater(t, rec.Runs(), before, "filtered attributes still trigger")
}

func TestCaptureEventsTriggerReconcile(t *testing.T) {
	doc, _, rec := mountWithoutTimers(t)

	before := rec.Runs()
	for _, event := range []string{"scroll", "resize", "touchmove", "wheel"} {
		doc.DispatchEvent(event)
	}
	assert.GreaterOrEqual(t, rec.Runs(), before+4, "each capture event runs a reconcile pass")
}

func TestReconcileIsDriftGated(t *testing.T) {
	_, _, rec := mountWithoutTimers(t)

	healed := rec.Heals()
	for i := 0; i < 50; i++ {
		rec.Reconcile()
	}
	assert.Equal(t, healed, rec.Heals(), "reconciling a healthy container writes nothing")
}

func TestFastPhaseTerminates(t *testing.T) {
	doc, _ := pageWithScript(t, "https://widget.example.com/bot.js?spa=serenity-spa", nil)
	container := doc.CreateElement("div")
	container.SetAttribute("id", ContainerID)
	doc.Body.AppendChild(container)

	rec := NewReconcilerWithOptions(doc, container, ReconcilerOptions{
		FastInterval: time.Millisecond,
		FastWindow:   20 * time.Millisecond,
		SlowInterval: 5 * time.Millisecond,
	}, logging.New("error"))
	go rec.fastLoop()
	t.Cleanup(rec.Stop)

	require.Eventually(t, func() bool {
		return container.Style("position") == "fixed"
	}, 2*time.Second, time.Millisecond, "fast phase applies the critical styles")

	// Wait out the window, then verify the loop stopped healing.
	time.Sleep(40 * time.Millisecond)
	container.SetStyle("position", "static")
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, "static", container.Style("position"), "fast loop must terminate after its window")
}

func TestDurableTimerPersists(t *testing.T) {
	doc, _ := pageWithScript(t, "https://widget.example.com/bot.js?spa=serenity-spa", nil)
	container := doc.CreateElement("div")
	container.SetAttribute("id", ContainerID)
	doc.Body.AppendChild(container)

	rec := NewReconcilerWithOptions(doc, container, ReconcilerOptions{
		FastInterval: time.Millisecond,
		FastWindow:   5 * time.Millisecond,
		SlowInterval: 5 * time.Millisecond,
	}, logging.New("error"))
	go rec.slowLoop()
	t.Cleanup(rec.Stop)

	// Long after the fast window would have elapsed, the slow timer still
	// heals drift.
	time.Sleep(30 * time.Millisecond)
	doc.Body.RemoveChild(container)

	require.Eventually(t, func() bool {
		return container.Parent() == doc.Body
	}, 2*time.Second, time.Millisecond, "durable timer keeps healing for the page lifetime")
}
