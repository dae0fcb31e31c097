package scheduler

import (
	"sync"
	"testing"
	"time"

	"github.com/sandeepkv93/eventd/internal/model"
	"github.com/sandeepkv93/eventd/internal/store"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func newStandupStore(t *testing.T) (*store.Store, model.Date) {
	t.Helper()
	d := model.Date{Year: 2024, Month: time.January, Day: 10}
	ev, err := model.NewEvent("Standup", d.At(9, 0, 0), "", []int{60, 0})
	if err != nil {
		t.Fatalf("new event: %v", err)
	}
	s := store.New()
	s.Add(d, ev)
	return s, d
}

func TestSweepFiresEachOffsetOnce(t *testing.T) {
	s, d := newStandupStore(t)
	clock := &fakeClock{}

	var got []int
	engine, err := NewEngine(s, func(due store.Due) {
		got = append(got, due.OffsetMinutes)
	}, Options{Now: clock.Now})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	steps := []struct {
		at   time.Time
		want int
	}{
		{d.At(7, 59, 0), 0},
		{d.At(8, 0, 0), 1},
		{d.At(8, 30, 0), 0},
		{d.At(9, 0, 0), 1},
		{d.At(9, 5, 0), 0},
		{d.At(9, 5, 30), 0},
	}
	for _, step := range steps {
		clock.Set(step.at)
		if n := engine.Sweep(); n != step.want {
			t.Fatalf("sweep at %s delivered %d, want %d", step.at.Format("15:04:05"), n, step.want)
		}
	}
	if len(got) != 2 || got[0] != 60 || got[1] != 0 {
		t.Fatalf("unexpected delivered offsets: %v", got)
	}
	st := engine.Stats()
	if st.Sweeps != uint64(len(steps)) || st.Delivered != 2 {
		t.Fatalf("unexpected stats: %+v", st)
	}
}

func TestEngineLoopDeliversAndStops(t *testing.T) {
	s, d := newStandupStore(t)
	clock := &fakeClock{now: d.At(10, 0, 0)}

	delivered := make(chan store.Due, 4)
	engine, err := NewEngine(s, func(due store.Due) { delivered <- due }, Options{
		Interval: time.Hour,
		Now:      clock.Now,
	})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	engine.Start()
	engine.Start()

	for i := 0; i < 2; i++ {
		select {
		case <-delivered:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for reminder %d", i)
		}
	}

	engine.Stop()
	engine.Stop()

	later, err := model.NewEvent("Late", d.At(10, 0, 0), "", []int{0})
	if err != nil {
		t.Fatalf("new event: %v", err)
	}
	s.Add(d, later)
	engine.Kick()
	if n := engine.Sweep(); n != 0 {
		t.Fatalf("stopped engine delivered %d reminders", n)
	}
	select {
	case due := <-delivered:
		t.Fatalf("unexpected delivery after stop: %+v", due)
	default:
	}
}

func TestKickTriggersImmediateSweep(t *testing.T) {
	s := store.New()
	d := model.Date{Year: 2024, Month: time.January, Day: 10}
	clock := &fakeClock{now: d.At(12, 0, 0)}

	delivered := make(chan store.Due, 1)
	engine, err := NewEngine(s, func(due store.Due) { delivered <- due }, Options{
		Interval: time.Hour,
		Now:      clock.Now,
	})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	engine.Start()
	defer engine.Stop()

	ev, _ := model.NewEvent("Lunch", d.At(12, 0, 0), "", []int{0})
	s.Add(d, ev)
	engine.Kick()

	select {
	case due := <-delivered:
		if due.Event.Title != "Lunch" {
			t.Fatalf("unexpected event: %s", due.Event.Title)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("kick did not trigger a sweep")
	}
}

func TestMaxLatenessCountsSkipped(t *testing.T) {
	s, d := newStandupStore(t)
	clock := &fakeClock{now: d.At(18, 0, 0)}
	engine, err := NewEngine(s, nil, Options{Now: clock.Now, MaxLateness: 15 * time.Minute})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if n := engine.Sweep(); n != 0 {
		t.Fatalf("expected stale reminders to be suppressed, delivered %d", n)
	}
	if st := engine.Stats(); st.Skipped != 2 {
		t.Fatalf("expected 2 skipped, got %+v", st)
	}
}

func TestNewEngineValidatesInterval(t *testing.T) {
	if _, err := NewEngine(store.New(), nil, Options{Interval: -time.Second}); err != ErrInvalidInterval {
		t.Fatalf("expected ErrInvalidInterval, got %v", err)
	}
	engine, err := NewEngine(store.New(), nil, Options{})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if engine.Interval() != DefaultInterval {
		t.Fatalf("expected default interval, got %s", engine.Interval())
	}
}
