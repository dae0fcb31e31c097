package scheduler

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sandeepkv93/eventd/internal/model"
	"github.com/sandeepkv93/eventd/internal/store"
)

func TestEngineStressConcurrentEdits(t *testing.T) {
	s := store.New()
	d := model.Date{Year: 2024, Month: time.January, Day: 10}
	clock := &fakeClock{now: d.At(9, 0, 0)}

	var mu sync.Mutex
	seen := make(map[string]int)
	var delivered int64
	onDue := func(due store.Due) {
		mu.Lock()
		seen[fmt.Sprintf("%s#%d", due.Event.Title, due.Index)]++
		mu.Unlock()
		atomic.AddInt64(&delivered, 1)
	}

	engine, err := NewEngine(s, onDue, Options{Interval: time.Millisecond, Now: clock.Now})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	engine.Start()

	const workers = 8
	const perWorker = 100
	var wg sync.WaitGroup
	wg.Add(workers + 1)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				ev, err := model.NewEvent(fmt.Sprintf("w%d-%d", w, i), d.At(9, 0, 0), "", []int{0, 5})
				if err != nil {
					t.Errorf("new event: %v", err)
					return
				}
				s.Add(d, ev)
			}
		}()
	}
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			engine.Sweep()
		}
	}()
	wg.Wait()

	engine.Sweep()
	engine.Stop()

	total := workers * perWorker * 2
	if got := atomic.LoadInt64(&delivered); got != int64(total) {
		t.Fatalf("unexpected delivered count: got=%d want=%d", got, total)
	}
	for key, n := range seen {
		if n != 1 {
			t.Fatalf("reminder %s delivered %d times", key, n)
		}
	}
}
