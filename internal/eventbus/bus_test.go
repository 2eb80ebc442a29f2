package eventbus

import "testing"

func TestPublishReachesAllSubscribers(t *testing.T) {
	b := New[int]()
	a := b.Subscribe()
	c := b.Subscribe()

	b.Publish(7)

	if got := <-a; got != 7 {
		t.Errorf("subscriber a got %d, want 7", got)
	}
	if got := <-c; got != 7 {
		t.Errorf("subscriber c got %d, want 7", got)
	}
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	b := New[int]()
	ch := b.Subscribe()

	// Overfill the buffer; Publish must never block.
	for i := 0; i < defaultBuffer+10; i++ {
		b.Publish(i)
	}

	if len(ch) != defaultBuffer {
		t.Errorf("expected full buffer of %d, got %d", defaultBuffer, len(ch))
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := New[string]()
	ch := b.Subscribe()
	b.Unsubscribe(ch)

	if _, ok := <-ch; ok {
		t.Error("expected closed channel after Unsubscribe")
	}

	// Publishing after unsubscribe must not panic.
	b.Publish("x")
}

func TestSubscribeAfterCloseReturnsClosedChannel(t *testing.T) {
	b := New[int]()
	b.Close()

	ch := b.Subscribe()
	if _, ok := <-ch; ok {
		t.Error("expected closed channel from Subscribe after Close")
	}
}
