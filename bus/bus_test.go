package bus

import (
	"testing"
	"time"
)

func expectPayload(t *testing.T, sub *Subscription, want any) {
	t.Helper()
	select {
	case got := <-sub.Channel():
		if got.Payload != want {
			t.Errorf("expected payload %v, got %v", want, got.Payload)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("timeout waiting for %v", want)
	}
}

func expectNoMessage(t *testing.T, sub *Subscription) {
	t.Helper()
	select {
	case got := <-sub.Channel():
		t.Errorf("unexpected message %v", got.Payload)
	default:
	}
}

func TestBasicPubSub(t *testing.T) {
	b := NewBus(4)
	conn := b.NewConnection("test")

	sub := conn.Subscribe(T("monitor", "stats"))
	conn.Publish(conn.NewMessage(T("monitor", "stats"), "hello", false))

	expectPayload(t, sub, "hello")
}

func TestRetainedMessage(t *testing.T) {
	b := NewBus(2)
	conn := b.NewConnection("test")

	conn.Publish(conn.NewMessage(T("monitor", "stats"), "persist", true))
	sub := conn.Subscribe(T("monitor", "stats"))

	expectPayload(t, sub, "persist")
}

func TestRetainedCleared(t *testing.T) {
	b := NewBus(2)
	conn := b.NewConnection("test")

	conn.Publish(conn.NewMessage(T("a"), "v", true))
	conn.Publish(conn.NewMessage(T("a"), nil, true))
	sub := conn.Subscribe(T("a"))

	expectNoMessage(t, sub)
}

func TestWildcardSingleLevel(t *testing.T) {
	b := NewBus(16)
	c := b.NewConnection("test")

	s1 := c.Subscribe(T("a", "+", "c"))
	s2 := c.Subscribe(T("a", "+", "+"))
	sNo := c.Subscribe(T("a", "+", "d"))

	c.Publish(c.NewMessage(T("a", "b", "c"), "m1", false))
	expectPayload(t, s1, "m1")
	expectPayload(t, s2, "m1")
	expectNoMessage(t, sNo)

	c.Publish(c.NewMessage(T("a", "x", "y"), "m2", false))
	expectPayload(t, s2, "m2")
	expectNoMessage(t, s1)

	// Too-short topics never match a 3-token pattern.
	c.Publish(c.NewMessage(T("a", "c"), "m3", false))
	expectNoMessage(t, s1)
	expectNoMessage(t, s2)
}

func TestWildcardMultiLevel(t *testing.T) {
	b := NewBus(16)
	c := b.NewConnection("test")

	sAHash := c.Subscribe(T("a", "#"))
	sHash := c.Subscribe(T("#"))

	c.Publish(c.NewMessage(T("a", "b", "c"), "p1", false))
	expectPayload(t, sAHash, "p1")
	expectPayload(t, sHash, "p1")

	c.Publish(c.NewMessage(T("z"), "p2", false))
	expectPayload(t, sHash, "p2")
	expectNoMessage(t, sAHash)
}

func TestRetainedReplayThroughWildcard(t *testing.T) {
	b := NewBus(16)
	c := b.NewConnection("test")

	c.Publish(c.NewMessage(T("hw", "fan"), "50", true))
	c.Publish(c.NewMessage(T("hw", "mux"), "main", true))

	sub := c.Subscribe(T("hw", "+"))
	got := map[any]bool{}
	for i := 0; i < 2; i++ {
		select {
		case m := <-sub.Channel():
			got[m.Payload] = true
		case <-time.After(100 * time.Millisecond):
			t.Fatal("timeout waiting for retained replay")
		}
	}
	if !got["50"] || !got["main"] {
		t.Errorf("retained replay incomplete: %v", got)
	}
}

func TestReply(t *testing.T) {
	b := NewBus(4)
	c := b.NewConnection("test")

	replies := c.Subscribe(T("replies", "1"))
	req := &Message{Topic: T("svc", "do"), ReplyTo: T("replies", "1")}
	c.Reply(req, "done")

	expectPayload(t, replies, "done")
}

func TestDropOldestWhenFull(t *testing.T) {
	b := NewBus(1)
	c := b.NewConnection("test")

	sub := c.Subscribe(T("a"))
	c.Publish(c.NewMessage(T("a"), "first", false))
	c.Publish(c.NewMessage(T("a"), "second", false))

	expectPayload(t, sub, "second")
}

func TestDisconnectClosesSubscriptions(t *testing.T) {
	b := NewBus(4)
	c := b.NewConnection("test")
	sub := c.Subscribe(T("a"))

	c.Disconnect()

	if _, ok := <-sub.Channel(); ok {
		t.Error("expected closed channel after disconnect")
	}
}
