package services

import (
	"sync/atomic"
	"testing"
	"time"
)

// slowFeedConn records writes and flags any two that overlap in time.
type slowFeedConn struct {
	inFlight int32
	overlap  int32
	writes   int32
}

func (c *slowFeedConn) WriteJSON(v interface{}) error {
	if atomic.AddInt32(&c.inFlight, 1) > 1 {
		atomic.StoreInt32(&c.overlap, 1)
	}
	time.Sleep(2 * time.Millisecond)
	atomic.AddInt32(&c.inFlight, -1)
	atomic.AddInt32(&c.writes, 1)
	return nil
}

func (c *slowFeedConn) Close() error { return nil }

func TestFanOutSerializesWritesPerConnection(t *testing.T) {
	conn := &slowFeedConn{}
	RegisterTherapistFeed("t-serial", []string{"c1"}, conn)
	t.Cleanup(func() { UnregisterTherapistFeed("t-serial") })

	const events = 20
	for i := 0; i < events; i++ {
		fanOutEntryEvent(EntryEvent{Type: "entry_created", ClientID: "c1", EntryID: "e1"})
	}

	waitFor(t, func() bool { return atomic.LoadInt32(&conn.writes) == events })

	if atomic.LoadInt32(&conn.overlap) != 0 {
		t.Fatal("observed overlapping writes on a single feed connection")
	}
}

func TestFanOutSkipsConnectionsNotWatchingClient(t *testing.T) {
	watching := &slowFeedConn{}
	other := &slowFeedConn{}
	RegisterTherapistFeed("t-watching", []string{"c1"}, watching)
	RegisterTherapistFeed("t-other", []string{"c2"}, other)
	t.Cleanup(func() {
		UnregisterTherapistFeed("t-watching")
		UnregisterTherapistFeed("t-other")
	})

	fanOutEntryEvent(EntryEvent{Type: "entry_created", ClientID: "c1", EntryID: "e1"})

	waitFor(t, func() bool { return atomic.LoadInt32(&watching.writes) == 1 })

	if got := atomic.LoadInt32(&other.writes); got != 0 {
		t.Fatalf("connection not watching the client received %d writes", got)
	}
}
