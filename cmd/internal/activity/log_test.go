package activity

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() func() time.Time {
	t := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}

func TestRecord_SequentialIDs(t *testing.T) {
	l := New(WithClock(fixedClock()))

	for i := 1; i <= 3; i++ {
		e := l.Record(1, ActionView, fmt.Sprintf("view %d", i))
		assert.Equal(t, int64(i), e.ID)
		assert.Equal(t, ActionView, e.Action)
	}
	assert.Equal(t, 3, l.Count())
}

func TestQuery_FiltersAndKeepsOrder(t *testing.T) {
	l := New()
	l.Record(1, ActionCreate, "a")
	l.Record(2, ActionCreate, "b")
	l.Record(1, ActionLogin, "c")
	l.Record(SystemUserID, ActionList, "d")
	l.Record(1, ActionUpdate, "e")

	all := l.Query(1, 10)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"a", "c", "e"}, details(all))

	last2 := l.Query(1, 2)
	assert.Equal(t, []string{"c", "e"}, details(last2))

	assert.Empty(t, l.Query(1, 0))
	assert.Empty(t, l.Query(42, 10))
	assert.Len(t, l.Query(SystemUserID, 10), 1)
}

func TestReset(t *testing.T) {
	l := New()
	l.Record(1, ActionCreate, "a")
	l.Reset()

	assert.Equal(t, 0, l.Count())
	assert.Equal(t, int64(1), l.Record(1, ActionCreate, "b").ID)
}

func TestRecord_Concurrent(t *testing.T) {
	l := New()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Record(1, ActionView, "x")
		}()
	}
	wg.Wait()

	got := l.Query(1, n)
	require.Len(t, got, n)
	for i, e := range got {
		assert.Equal(t, int64(i+1), e.ID)
	}
}

func TestSubscribe(t *testing.T) {
	l := New(WithSubscriberQueue(1))
	ch, cancel := l.Subscribe(7)
	assert.Equal(t, 1, l.Subscribers())

	l.Record(8, ActionView, "other user")
	l.Record(7, ActionView, "first")
	// Queue is full: dropped, writer does not block.
	l.Record(7, ActionView, "second")

	select {
	case e := <-ch:
		assert.Equal(t, "first", e.Details)
	case <-time.After(time.Second):
		t.Fatal("expected an entry")
	}

	select {
	case e := <-ch:
		t.Fatalf("unexpected entry %+v", e)
	default:
	}

	cancel()
	cancel()
	assert.Equal(t, 0, l.Subscribers())
	_, open := <-ch
	assert.False(t, open)

	// Recording after cancel must not panic.
	l.Record(7, ActionView, "third")
}

func details(es []Entry) []string {
	out := make([]string, 0, len(es))
	for _, e := range es {
		out = append(out, e.Details)
	}
	return out
}
