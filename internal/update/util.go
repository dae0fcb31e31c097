package update

import (
	"strings"

	"github.com/sandeepkv93/eventd/internal/codec"
	"github.com/sandeepkv93/eventd/internal/model"
	"github.com/sandeepkv93/eventd/internal/views"
)

func reminderSummary(ev model.Event) string {
	if len(ev.Reminders) == 0 {
		return "no reminders"
	}
	labels := make([]string, 0, len(ev.Reminders))
	for _, r := range ev.Reminders {
		label := r.Label()
		if r.Fired {
			label += " (sent)"
		}
		labels = append(labels, label)
	}
	return strings.Join(labels, ", ")
}

func renderDescription(md string, width int) string {
	return views.RenderMarkdown(md, width)
}

// offsetsArg renders offsets in the palette's r= form.
func offsetsArg(offsets []int) string {
	if len(offsets) == 0 {
		return ""
	}
	return "r=" + codec.FormatOffsets(offsets)
}
