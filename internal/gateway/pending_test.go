package gateway

import (
	"testing"
	"time"

	"github.com/clawlink/clawlink/internal/protocol"
)

func TestPendingResolveDeliversOnce(t *testing.T) {
	tbl := newPendingTable()
	ch, ok := tbl.add("id-1")
	if !ok {
		t.Fatal("add failed on open table")
	}

	resp := &protocol.Frame{Type: protocol.FrameTypeResponse, ID: "id-1", OK: true}
	if !tbl.resolve(resp) {
		t.Fatal("resolve did not find pending entry")
	}
	if got := <-ch; got.ID != "id-1" {
		t.Errorf("wrong frame delivered: %+v", got)
	}

	// The entry is gone: a second response for the same id is an orphan.
	if tbl.resolve(resp) {
		t.Error("second resolve for same id should be an orphan")
	}
	if tbl.size() != 0 {
		t.Errorf("expected empty table, got %d entries", tbl.size())
	}
}

func TestPendingOrphanAfterRemove(t *testing.T) {
	tbl := newPendingTable()
	if _, ok := tbl.add("id-2"); !ok {
		t.Fatal("add failed")
	}
	tbl.remove("id-2")

	late := &protocol.Frame{Type: protocol.FrameTypeResponse, ID: "id-2"}
	if tbl.resolve(late) {
		t.Error("late response should be dropped as orphan")
	}
}

func TestPendingFailAllClearsAndRejects(t *testing.T) {
	tbl := newPendingTable()
	tbl.add("a")
	tbl.add("b")

	tbl.failAll()

	if tbl.size() != 0 {
		t.Errorf("expected cleared table, got %d entries", tbl.size())
	}
	if _, ok := tbl.add("c"); ok {
		t.Error("add after failAll should be rejected")
	}
	if tbl.resolve(&protocol.Frame{ID: "a"}) {
		t.Error("resolve after failAll should be an orphan")
	}
}

func TestBackoffDelay(t *testing.T) {
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, time.Duration(350 * 1.7 * float64(time.Millisecond))},
		{2, time.Duration(350 * 1.7 * 1.7 * float64(time.Millisecond))},
		{10, 8 * time.Second},
		{100, 8 * time.Second},
	}
	for _, tc := range cases {
		got := backoffDelay(tc.attempt)
		if got != tc.want {
			t.Errorf("backoffDelay(%d) = %v, want %v", tc.attempt, got, tc.want)
		}
	}
}

func TestBackoffDelayNeverExceedsCap(t *testing.T) {
	for n := 1; n <= 50; n++ {
		if d := backoffDelay(n); d > 8*time.Second {
			t.Fatalf("backoffDelay(%d) = %v exceeds cap", n, d)
		}
	}
}
