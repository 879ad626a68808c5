package notify

import (
	"testing"
	"time"
)

func TestBuffer_PushAndDrain(t *testing.T) {
	b := NewBuffer(10)
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return fixed }

	b.Success("created")
	b.Error("boom")

	if b.Len() != 2 {
		t.Fatalf("Len = %d; want 2", b.Len())
	}
	got := b.Drain()
	if len(got) != 2 {
		t.Fatalf("Drain returned %d notices", len(got))
	}
	if got[0].Level != LevelSuccess || got[0].Message != "created" || !got[0].At.Equal(fixed) {
		t.Fatalf("first notice = %+v", got[0])
	}
	if got[1].Level != LevelError || got[1].Message != "boom" {
		t.Fatalf("second notice = %+v", got[1])
	}
	// Drained notices are gone.
	if b.Len() != 0 {
		t.Fatalf("Len after drain = %d", b.Len())
	}
	if again := b.Drain(); len(again) != 0 {
		t.Fatalf("second drain returned %d notices", len(again))
	}
}

func TestBuffer_DropsOldestWhenFull(t *testing.T) {
	b := NewBuffer(2)
	b.Success("one")
	b.Success("two")
	b.Error("three")

	got := b.Drain()
	if len(got) != 2 {
		t.Fatalf("expected 2 notices, got %d", len(got))
	}
	if got[0].Message != "two" || got[1].Message != "three" {
		t.Fatalf("expected oldest dropped, got %+v", got)
	}
}

func TestBuffer_DefaultSize(t *testing.T) {
	b := NewBuffer(0)
	if b.max != DefaultBufferSize {
		t.Fatalf("max = %d; want %d", b.max, DefaultBufferSize)
	}
}

func TestMulti_FansOut(t *testing.T) {
	a, b := NewBuffer(5), NewBuffer(5)
	m := Multi{a, b}
	m.Success("ok")
	m.Error("bad")

	for i, buf := range []*Buffer{a, b} {
		if buf.Len() != 2 {
			t.Errorf("sink %d received %d notices; want 2", i, buf.Len())
		}
	}
}
