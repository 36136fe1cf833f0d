package calls

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gupta-labs/khata-sahayak/internal/domain"
	"github.com/gupta-labs/khata-sahayak/pkg/logger"
)

func newTestStore(ttl time.Duration) *Store {
	return NewStore(ttl, logger.New(logger.Config{Env: "test", Level: "error"}))
}

func TestStorePutAndGet(t *testing.T) {
	store := newTestStore(time.Minute)
	store.Put(&Session{CallID: "call-1", ActorID: "actor", SupplierName: "Supplier A"})

	session, err := store.Get("call-1")
	require.NoError(t, err)
	assert.Equal(t, StateGreeting, session.State)
	assert.Equal(t, "Supplier A", session.SupplierName)
}

func TestStoreGetUnknownCall(t *testing.T) {
	store := newTestStore(time.Minute)
	_, err := store.Get("nope")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestStoreExpiry(t *testing.T) {
	store := newTestStore(time.Nanosecond)
	store.Put(&Session{CallID: "call-1"})
	time.Sleep(time.Millisecond)

	_, err := store.Get("call-1")
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
}

func TestAdvanceFollowsTransitionTable(t *testing.T) {
	store := newTestStore(time.Minute)
	store.Put(&Session{CallID: "call-1"})

	session, err := store.Advance("call-1", StateAwaitingResponse)
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingResponse, session.State)

	session, err = store.Advance("call-1", StateConfirmingDelivery)
	require.NoError(t, err)
	assert.Equal(t, StateConfirmingDelivery, session.State)

	session, err = store.Advance("call-1", StateTerminal)
	require.NoError(t, err)
	assert.Equal(t, StateTerminal, session.State)
}

func TestAdvanceRejectsIllegalTransitions(t *testing.T) {
	store := newTestStore(time.Minute)
	store.Put(&Session{CallID: "call-1"})

	// greeting cannot jump straight to confirming delivery
	_, err := store.Advance("call-1", StateConfirmingDelivery)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// a terminal session accepts nothing further
	_, err = store.Advance("call-1", StateTerminal)
	require.NoError(t, err)
	_, err = store.Advance("call-1", StateAwaitingResponse)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPurgeDropsTerminalSessions(t *testing.T) {
	store := newTestStore(time.Minute)
	store.Put(&Session{CallID: "done"})
	store.Put(&Session{CallID: "live"})

	_, err := store.Advance("done", StateTerminal)
	require.NoError(t, err)
	store.purge()

	_, err = store.Get("done")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	_, err = store.Get("live")
	assert.NoError(t, err)
}
