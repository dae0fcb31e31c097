package codec

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/eventd/internal/model"
	"github.com/sandeepkv93/eventd/internal/store"
)

func mustEvent(t *testing.T, title string, at time.Time, desc string, offsets ...int) model.Event {
	t.Helper()
	ev, err := model.NewEvent(title, at, desc, offsets)
	require.NoError(t, err)
	return ev
}

func sampleStore(t *testing.T) *store.Store {
	t.Helper()
	d1 := model.Date{Year: 2024, Month: time.January, Day: 10}
	d2 := model.Date{Year: 2024, Month: time.January, Day: 12}
	s := store.New()
	s.Add(d1, mustEvent(t, "Standup", d1.At(9, 0, 0), "daily sync", 60, 0))
	s.Add(d1, mustEvent(t, "Pipes | and\nnewlines", d1.At(13, 30, 15), ""))
	s.Add(d2, mustEvent(t, "Dentist", d2.At(8, 15, 0), "bring card|insurance", 1440, 60, 30, 10, 0))
	return s
}

func TestEncodeStoreGolden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeStore(&buf, sampleStore(t)))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "encode_store", buf.Bytes())
}

func TestRoundTripResetsDelivery(t *testing.T) {
	s := sampleStore(t)
	d := model.Date{Year: 2024, Month: time.January, Day: 10}
	due, _ := s.CollectDue(d.At(9, 0, 0), 0)
	require.NotEmpty(t, due)

	data, err := Marshal(s)
	require.NoError(t, err)
	res, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Empty(t, res.Skipped)

	var want []Entry
	for date, ev := range s.All() {
		want = append(want, Entry{Date: date, Event: ev})
	}
	require.Len(t, res.Entries, len(want))
	for i, got := range res.Entries {
		assert.Equal(t, want[i].Date, got.Date)
		assert.True(t, want[i].Event.Equal(got.Event), "entry %d: %v != %v", i, want[i].Event, got.Event)
		for _, r := range got.Event.Reminders {
			assert.False(t, r.Fired, "decoded reminders must start pending")
		}
	}
}

func TestEscapeRoundTrip(t *testing.T) {
	for _, in := range []string{"a|b", "line1\nline2", "|\n|", "&#124; literal", "", "a\rb", "x\r\ny", "trailing\r"} {
		enc := Escape(in)
		assert.NotContains(t, enc, "|")
		assert.NotContains(t, enc, "\n")
		assert.NotContains(t, enc, "\r")
		if !strings.Contains(in, "&#124;") {
			assert.Equal(t, in, Unescape(enc))
		}
	}
}

func TestCarriageReturnsSurviveRoundTrip(t *testing.T) {
	at := time.Date(2024, 1, 10, 9, 0, 0, 0, time.Local)
	ev := mustEvent(t, "a\rb", at, "x\r\ny\r")

	entry, err := DecodeLine(EncodeLine(model.DateOf(at), ev))
	require.NoError(t, err)
	assert.Equal(t, "a\rb", entry.Event.Title)
	assert.Equal(t, "x\r\ny\r", entry.Event.Description)
}

func TestDecodeLongLine(t *testing.T) {
	at := time.Date(2024, 1, 10, 9, 0, 0, 0, time.Local)
	s := store.New()
	s.Add(model.DateOf(at), mustEvent(t, "Standup", at, ""))
	long := strings.Repeat("x", 5*1024*1024)
	s.Add(model.DateOf(at), mustEvent(t, "Notes", at, long, 10))

	var buf bytes.Buffer
	require.NoError(t, EncodeStore(&buf, s))

	res, err := Decode(&buf)
	require.NoError(t, err)
	assert.Empty(t, res.Skipped)
	require.Len(t, res.Entries, 2)
	assert.Equal(t, long, res.Entries[1].Event.Description)
	assert.Equal(t, []int{10}, res.Entries[1].Event.Offsets())
}

func TestDecodeLastLineWithoutNewline(t *testing.T) {
	res, err := Decode(strings.NewReader("2024-01-10|Standup|09:00||\r\n2024-01-11|Retro|16:00||30"))
	require.NoError(t, err)
	require.Len(t, res.Entries, 2)
	assert.Equal(t, []int{30}, res.Entries[1].Event.Offsets())
}

func TestDecodeSkipsMalformedLines(t *testing.T) {
	input := "2024-01-10|Standup|09:00||60,0\n2024-01-11|Broken|10:00\n"
	res, err := Decode(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "Standup", res.Entries[0].Event.Title)
	assert.Equal(t, []int{60, 0}, res.Entries[0].Event.Offsets())

	require.Len(t, res.Skipped, 1)
	assert.Equal(t, 2, res.Skipped[0].Line)
	assert.Equal(t, "2024-01-11|Broken|10:00", res.Skipped[0].Text)
}

func TestReadFileMixedFixture(t *testing.T) {
	res, err := ReadFile(filepath.Join("testdata", "mixed.dat"))
	require.NoError(t, err)

	titles := make([]string, 0, len(res.Entries))
	for _, e := range res.Entries {
		titles = append(titles, e.Event.Title)
	}
	assert.Equal(t, []string{"Standup", "Extra fields"}, titles)

	lines := make([]int, 0, len(res.Skipped))
	for _, p := range res.Skipped {
		lines = append(lines, p.Line)
	}
	assert.Equal(t, []int{2, 4, 5}, lines)
}

func TestDecodeLineSecondsAndEmptyTitle(t *testing.T) {
	e, err := DecodeLine("2024-03-01|Call|14:30:15||")
	require.NoError(t, err)
	assert.Equal(t, 15, e.Event.OccursAt.Second())
	assert.Empty(t, e.Event.Reminders)

	_, err = DecodeLine("2024-03-01||14:30||")
	assert.True(t, errors.Is(err, model.ErrEmptyTitle))

	_, err = DecodeLine("2024-03-01|Call|14:30||-5")
	assert.True(t, errors.Is(err, model.ErrNegativeOffset))
}

func TestReadFileMissingIsEmpty(t *testing.T) {
	res, err := ReadFile(filepath.Join(t.TempDir(), "nope.dat"))
	require.NoError(t, err)
	assert.Empty(t, res.Entries)
	assert.Empty(t, res.Skipped)
}

func TestReadFileDirectoryIsStorageUnavailable(t *testing.T) {
	_, err := ReadFile(t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorageUnavailable)

	var se *StorageError
	require.ErrorAs(t, err, &se)
}

func TestWriteFileAtomicReplace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "calendar_events.dat")
	require.NoError(t, WriteFile(path, []byte("old\n")))
	require.NoError(t, WriteFile(path, []byte("new\n")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new\n", string(got))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestWriteFileUnavailable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	err := WriteFile(filepath.Join(blocker, "events.dat"), []byte("data"))
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestFormatOffsets(t *testing.T) {
	assert.Equal(t, "", FormatOffsets(nil))
	assert.Equal(t, "1440,60,30,10,0", FormatOffsets(model.ReminderPresets))

	back, err := ParseOffsets(FormatOffsets([]int{60, 0}))
	require.NoError(t, err)
	assert.Equal(t, []int{60, 0}, back)
}
