package importer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/eventd/internal/codec"
	"github.com/sandeepkv93/eventd/internal/model"
	"github.com/sandeepkv93/eventd/internal/store"
)

func fill(t *testing.T, n int, title string) []codec.Entry {
	t.Helper()
	d := model.Date{Year: 2024, Month: time.February, Day: 1}
	out := make([]codec.Entry, 0, n)
	for i := 0; i < n; i++ {
		day := d.AddDays(i % 3)
		ev, err := model.NewEvent(title, day.At(10, 0, 0), "", []int{15})
		require.NoError(t, err)
		out = append(out, codec.Entry{Date: day, Event: ev})
	}
	return out
}

func storeWith(entries []codec.Entry) *store.Store {
	s := store.New()
	for _, e := range entries {
		s.Add(e.Date, e.Event)
	}
	return s
}

func TestMergeIsAdditive(t *testing.T) {
	existing := fill(t, 4, "existing")
	s := storeWith(existing)

	n := Merge(s, codec.Result{Entries: fill(t, 5, "incoming")}.Seq())
	assert.Equal(t, 5, n)
	assert.Equal(t, 9, s.Len())

	n = Merge(s, codec.Result{Entries: existing}.Seq())
	assert.Equal(t, 4, n)
	assert.Equal(t, 13, s.Len(), "identical events are not deduplicated")
}

func TestReplaceIsTotal(t *testing.T) {
	s := storeWith(fill(t, 7, "existing"))

	n := Replace(s, codec.Result{Entries: fill(t, 2, "incoming")}.Seq())
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, s.Len())
	for _, ev := range s.All() {
		assert.Equal(t, "incoming", ev.Title)
	}

	assert.Zero(t, Replace(s, codec.Result{}.Seq()))
	assert.Zero(t, s.Len())
	assert.Empty(t, s.Dates())
}

func TestApplyAndParseMode(t *testing.T) {
	m, err := ParseMode(" Replace ")
	require.NoError(t, err)
	assert.Equal(t, ModeReplace, m)

	_, err = ParseMode("append")
	assert.Error(t, err)

	s := storeWith(fill(t, 1, "x"))
	n, err := Apply(ModeMerge, s, codec.Result{Entries: fill(t, 1, "y")}.Seq())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 2, s.Len())

	_, err = Apply(Mode("bogus"), s, codec.Result{}.Seq())
	assert.Error(t, err)
}
