// Package codec reads and writes the pipe-delimited events file.
//
// Each line holds one event:
//
//	DATE|TITLE|TIME|DESCRIPTION|REMINDERS
//
// TITLE and DESCRIPTION escape "|" as "&#124;", newlines as "&#10;" and
// carriage returns as "&#13;".
// REMINDERS is a comma-separated list of minute offsets, possibly empty.
package codec

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"

	"github.com/sandeepkv93/eventd/internal/model"
	"github.com/sandeepkv93/eventd/internal/store"
)

const (
	fieldCount = 5
	separator  = "|"

	timeLayout        = "15:04"
	timeLayoutSeconds = "15:04:05"
)

var (
	escaper   = strings.NewReplacer("|", "&#124;", "\n", "&#10;", "\r", "&#13;")
	unescaper = strings.NewReplacer("&#124;", "|", "&#10;", "\n", "&#13;", "\r")
)

func Escape(s string) string {
	return escaper.Replace(s)
}

func Unescape(s string) string {
	return unescaper.Replace(s)
}

// Entry is one decoded line.
type Entry struct {
	Date  model.Date
	Event model.Event
}

// Result is the outcome of decoding a file. Skipped lines never abort a
// decode; they are reported here instead.
type Result struct {
	Entries []Entry
	Skipped []*ParseError
}

// Seq yields the decoded entries in file order.
func (r Result) Seq() iter.Seq2[model.Date, model.Event] {
	return func(yield func(model.Date, model.Event) bool) {
		for _, e := range r.Entries {
			if !yield(e.Date, e.Event.Clone()) {
				return
			}
		}
	}
}

// EncodeLine renders a single event.
func EncodeLine(date model.Date, ev model.Event) string {
	layout := timeLayout
	if ev.OccursAt.Second() != 0 {
		layout = timeLayoutSeconds
	}
	return strings.Join([]string{
		date.String(),
		Escape(ev.Title),
		ev.OccursAt.Format(layout),
		Escape(ev.Description),
		FormatOffsets(ev.Offsets()),
	}, separator)
}

// FormatOffsets is the inverse of ParseOffsets.
func FormatOffsets(offsets []int) string {
	parts := make([]string, 0, len(offsets))
	for _, off := range offsets {
		parts = append(parts, strconv.Itoa(off))
	}
	return strings.Join(parts, ",")
}

// Encode writes one newline-terminated line per entry, in iteration order.
func Encode(w io.Writer, entries iter.Seq2[model.Date, model.Event]) error {
	bw := bufio.NewWriter(w)
	for date, ev := range entries {
		if _, err := bw.WriteString(EncodeLine(date, ev) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// EncodeStore writes every event of s from one consistent snapshot.
func EncodeStore(w io.Writer, s *store.Store) error {
	return Encode(w, s.Snapshot().Entries())
}

// Decode parses r line by line. Lines have no length limit. Malformed lines
// are skipped and reported in Result.Skipped; only a failure of r itself is
// returned as an error.
func Decode(r io.Reader) (Result, error) {
	var res Result
	br := bufio.NewReader(r)
	lineNo := 0
	for {
		raw, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return res, err
		}
		if raw != "" {
			lineNo++
			res.add(lineNo, strings.TrimSuffix(strings.TrimSuffix(raw, "\n"), "\r"))
		}
		if err != nil {
			return res, nil
		}
	}
}

func (r *Result) add(lineNo int, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	entry, err := DecodeLine(text)
	if err != nil {
		r.Skipped = append(r.Skipped, &ParseError{Line: lineNo, Text: text, Reason: err})
		return
	}
	r.Entries = append(r.Entries, entry)
}

// DecodeLine parses one line. Fields beyond the fifth are ignored.
func DecodeLine(line string) (Entry, error) {
	parts := strings.Split(line, separator)
	if len(parts) < fieldCount {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", fieldCount, len(parts))
	}
	date, err := model.ParseDate(parts[0])
	if err != nil {
		return Entry{}, err
	}
	occursAt, err := date.ParseClock(parts[2])
	if err != nil {
		return Entry{}, err
	}
	offsets, err := ParseOffsets(parts[4])
	if err != nil {
		return Entry{}, err
	}
	ev, err := model.NewEvent(Unescape(parts[1]), occursAt, Unescape(parts[3]), offsets)
	if err != nil {
		return Entry{}, err
	}
	return Entry{Date: date, Event: ev}, nil
}

// ParseOffsets reads a comma-separated reminder list. An empty string means
// no reminders.
func ParseOffsets(raw string) ([]int, error) {
	if raw == "" {
		return nil, nil
	}
	tokens := strings.Split(raw, ",")
	out := make([]int, 0, len(tokens))
	for _, tok := range tokens {
		n, err := strconv.Atoi(strings.TrimSpace(tok))
		if err != nil {
			return nil, fmt.Errorf("invalid reminder %q", tok)
		}
		if n < 0 {
			return nil, fmt.Errorf("%w: %d", model.ErrNegativeOffset, n)
		}
		out = append(out, n)
	}
	return out, nil
}
