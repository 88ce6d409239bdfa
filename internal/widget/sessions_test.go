package widget

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowbot/spa-widget-platform/pkg/logging"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore(time.Minute, logging.New("error"))
	conv := newTestConversation(t, nil)

	session := store.Create("serenity-spa", conv)
	require.NotEmpty(t, session.ID)
	assert.Equal(t, 1, store.Len())

	got, err := store.Get(session.ID)
	require.NoError(t, err)
	assert.Same(t, conv, got.Conversation)

	_, err = store.Get("unknown")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	store.Delete(session.ID)
	assert.Equal(t, 0, store.Len())
	_, err = store.Get(session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// Deleting again is a no-op.
	store.Delete(session.ID)
}

func TestSessionStoreDeleteClosesConversation(t *testing.T) {
	store := NewSessionStore(time.Minute, logging.New("error"))
	conv := newTestConversation(t, nil)
	openBookingForm(t, conv)
	conv.UpdateDraft(BookingDraft{Name: "Asha"})

	session := store.Create("serenity-spa", conv)
	store.Delete(session.ID)

	snap := conv.Snapshot()
	assert.Equal(t, ViewWelcome, snap.View)
	assert.Equal(t, BookingDraft{}, snap.Draft)
}

func TestSessionStoreReapsIdleSessions(t *testing.T) {
	store := NewSessionStore(10*time.Millisecond, logging.New("error"))
	conv := newTestConversation(t, nil)
	store.Create("serenity-spa", conv)

	time.Sleep(25 * time.Millisecond)
	store.reap()
	assert.Equal(t, 0, store.Len())
}

func TestSessionStoreGetRefreshesIdleClock(t *testing.T) {
	store := NewSessionStore(40*time.Millisecond, logging.New("error"))
	conv := newTestConversation(t, nil)
	session := store.Create("serenity-spa", conv)

	for i := 0; i < 4; i++ {
		time.Sleep(15 * time.Millisecond)
		_, err := store.Get(session.ID)
		require.NoError(t, err)
	}

	store.reap()
	assert.Equal(t, 1, store.Len(), "an actively polled session must not expire")
}

func TestSessionStoreJanitor(t *testing.T) {
	store := NewSessionStore(10*time.Millisecond, logging.New("error"))
	conv := newTestConversation(t, nil)
	store.Create("serenity-spa", conv)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store.StartJanitor(ctx, 5*time.Millisecond)

	require.Eventually(t, func() bool { return store.Len() == 0 }, 2*time.Second, 5*time.Millisecond)
}
