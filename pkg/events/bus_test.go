package events

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublish_NoSubscribers(t *testing.T) {
	b := New()
	assert.Equal(t, 0, Publish(b, QuestSelected{ID: 1}))
	assert.Zero(t, b.Dropped())
}

func TestPublish_Typed(t *testing.T) {
	b := New()
	selected, unsubSelected := Subscribe[QuestSelected](b, 1)
	defer unsubSelected()
	journal, unsubJournal := Subscribe[JournalRequested](b, 1)
	defer unsubJournal()

	assert.Equal(t, 1, Publish(b, QuestSelected{ID: 42}))

	select {
	case ev := <-selected:
		assert.Equal(t, uint32(42), ev.ID)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("selection not delivered")
	}
	select {
	case ev := <-journal:
		t.Fatalf("unexpected journal event %v", ev)
	default:
	}
}

func TestPublish_NonBlocking(t *testing.T) {
	b := New()
	ch, unsub := Subscribe[QuestSelected](b, 1)
	defer unsub()

	assert.Equal(t, 1, Publish(b, QuestSelected{ID: 1}))
	assert.Equal(t, 0, Publish(b, QuestSelected{ID: 2}), "full buffer drops")
	assert.Equal(t, int64(1), b.Dropped())

	ev := <-ch
	assert.Equal(t, uint32(1), ev.ID)
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	ch, unsub := Subscribe[QuestSelected](b, 0)
	unsub()
	unsub()

	_, ok := <-ch
	assert.False(t, ok, "channel is closed")
	assert.Equal(t, 0, Publish(b, QuestSelected{ID: 1}))

	b.mu.RLock()
	assert.Empty(t, b.listeners)
	b.mu.RUnlock()
}

func TestPublish_Concurrent(t *testing.T) {
	b := New()
	ch, unsub := Subscribe[QuestSelected](b, 1000)
	defer unsub()

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 50 {
				Publish(b, QuestSelected{ID: uint32(i*50 + j)})
			}
		}()
	}
	wg.Wait()
	require.Len(t, ch, 500)
}
