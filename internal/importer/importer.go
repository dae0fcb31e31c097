// Package importer reconciles an externally loaded event set with a store.
package importer

import (
	"fmt"
	"iter"
	"strings"

	"github.com/sandeepkv93/eventd/internal/model"
	"github.com/sandeepkv93/eventd/internal/store"
)

type Mode string

const (
	ModeMerge   Mode = "merge"
	ModeReplace Mode = "replace"
)

func ParseMode(raw string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(raw))); m {
	case ModeMerge, ModeReplace:
		return m, nil
	default:
		return "", fmt.Errorf("importer: unknown mode %q", raw)
	}
}

// Merge appends every incoming event to s. Nothing is deduplicated, so
// importing the same file twice doubles its events.
func Merge(s *store.Store, incoming iter.Seq2[model.Date, model.Event]) int {
	return s.AddAll(incoming)
}

// Replace discards the contents of s and appends every incoming event. The
// swap is atomic with respect to a concurrent sweep.
func Replace(s *store.Store, incoming iter.Seq2[model.Date, model.Event]) int {
	return s.ReplaceAll(incoming)
}

// Apply dispatches to Merge or Replace.
func Apply(mode Mode, s *store.Store, incoming iter.Seq2[model.Date, model.Event]) (int, error) {
	switch mode {
	case ModeMerge:
		return Merge(s, incoming), nil
	case ModeReplace:
		return Replace(s, incoming), nil
	default:
		return 0, fmt.Errorf("importer: unknown mode %q", mode)
	}
}
