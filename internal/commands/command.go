package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sandeepkv93/eventd/internal/codec"
	"github.com/sandeepkv93/eventd/internal/importer"
	"github.com/sandeepkv93/eventd/internal/model"
)

type Type string

const (
	TypeAdd    Type = "add"
	TypeEdit   Type = "edit"
	TypeDelete Type = "delete"
	TypeGoto   Type = "goto"
	TypeImport Type = "import"
	TypeExport Type = "export"
	TypeICS    Type = "ics"
	TypeSave   Type = "save"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func invalid(format string, args ...any) error {
	return &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// EventArgs is the event form shared by add and edit.
type EventArgs struct {
	Date        model.Date
	Clock       string
	Title       string
	Offsets     []int
	Description string
}

// Event validates the form and builds the event it describes.
func (a EventArgs) Event() (model.Event, error) {
	occursAt, err := a.Date.ParseClock(a.Clock)
	if err != nil {
		return model.Event{}, err
	}
	return model.NewEvent(a.Title, occursAt, a.Description, a.Offsets)
}

type AddArgs struct {
	EventArgs
}

// EditArgs targets an event of the selected day. Index is zero-based; the
// palette accepts the one-based numbers shown in the agenda.
type EditArgs struct {
	Index int
	EventArgs
}

type DeleteArgs struct {
	Index int
}

type GotoArgs struct {
	Date model.Date
}

type ImportArgs struct {
	Mode importer.Mode
	Path string
}

type PathArgs struct {
	Path string
}

type Command struct {
	Type   Type
	Raw    string
	Add    *AddArgs
	Edit   *EditArgs
	Delete *DeleteArgs
	Goto   *GotoArgs
	Import *ImportArgs
	Export *PathArgs
	ICS    *PathArgs
}

// Parse reads one palette line. Relative dates such as "today" or "+3"
// resolve against today.
//
//	add DATE TIME TITLE... [r=60,0] [-- description]
//	edit N DATE TIME TITLE... [r=...] [-- description]
//	delete N
//	goto DATE
//	import merge|replace PATH
//	export PATH
//	ics PATH
//	save
func Parse(input string, today model.Date) (Command, error) {
	raw := strings.TrimSpace(input)
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeAdd:
		form, err := parseEventForm(args, today)
		if err != nil {
			return Command{}, err
		}
		return Command{Type: TypeAdd, Raw: input, Add: &AddArgs{EventArgs: form}}, nil
	case TypeEdit:
		if len(args) == 0 {
			return Command{}, invalid("edit requires an event number")
		}
		idx, err := parseIndex(args[0])
		if err != nil {
			return Command{}, err
		}
		form, err := parseEventForm(args[1:], today)
		if err != nil {
			return Command{}, err
		}
		return Command{Type: TypeEdit, Raw: input, Edit: &EditArgs{Index: idx, EventArgs: form}}, nil
	case TypeDelete:
		if len(args) != 1 {
			return Command{}, invalid("delete requires exactly one event number")
		}
		idx, err := parseIndex(args[0])
		if err != nil {
			return Command{}, err
		}
		return Command{Type: TypeDelete, Raw: input, Delete: &DeleteArgs{Index: idx}}, nil
	case TypeGoto:
		if len(args) != 1 {
			return Command{}, invalid("goto requires a date")
		}
		d, err := ResolveDate(args[0], today)
		if err != nil {
			return Command{}, err
		}
		return Command{Type: TypeGoto, Raw: input, Goto: &GotoArgs{Date: d}}, nil
	case TypeImport:
		if len(args) < 2 {
			return Command{}, invalid("import requires merge|replace and a path")
		}
		mode, err := importer.ParseMode(args[0])
		if err != nil {
			return Command{}, invalid("%v", err)
		}
		return Command{Type: TypeImport, Raw: input, Import: &ImportArgs{Mode: mode, Path: pathArg(raw, 2)}}, nil
	case TypeExport, TypeICS:
		if len(args) == 0 {
			return Command{}, invalid("%s requires a path", head)
		}
		p := &PathArgs{Path: pathArg(raw, 1)}
		if Type(head) == TypeExport {
			return Command{Type: TypeExport, Raw: input, Export: p}, nil
		}
		return Command{Type: TypeICS, Raw: input, ICS: p}, nil
	case TypeSave:
		return Command{Type: TypeSave, Raw: input}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseEventForm(args []string, today model.Date) (EventArgs, error) {
	if len(args) < 3 {
		return EventArgs{}, invalid("expected DATE TIME TITLE")
	}
	date, err := ResolveDate(args[0], today)
	if err != nil {
		return EventArgs{}, err
	}
	if _, err := date.ParseClock(args[1]); err != nil {
		return EventArgs{}, invalid("invalid time %q", args[1])
	}
	form := EventArgs{Date: date, Clock: args[1]}

	var title []string
	rest := args[2:]
	for i, tok := range rest {
		if tok == "--" {
			form.Description = strings.Join(rest[i+1:], " ")
			break
		}
		if v, ok := strings.CutPrefix(strings.ToLower(tok), "r="); ok {
			offsets, err := codec.ParseOffsets(v)
			if err != nil {
				return EventArgs{}, invalid("invalid reminders %q", v)
			}
			form.Offsets = offsets
			continue
		}
		title = append(title, tok)
	}
	form.Title = strings.Join(title, " ")
	if form.Title == "" {
		return EventArgs{}, invalid("title is required")
	}
	return form, nil
}

// ResolveDate accepts YYYY-MM-DD, today, tomorrow, yesterday or a signed day
// offset such as +3.
func ResolveDate(raw string, today model.Date) (model.Date, error) {
	switch strings.ToLower(raw) {
	case "today":
		return today, nil
	case "tomorrow":
		return today.AddDays(1), nil
	case "yesterday":
		return today.AddDays(-1), nil
	}
	if strings.HasPrefix(raw, "+") || strings.HasPrefix(raw, "-") {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return model.Date{}, invalid("invalid day offset %q", raw)
		}
		return today.AddDays(n), nil
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		return model.Date{}, invalid("invalid date %q", raw)
	}
	return d, nil
}

func parseIndex(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, invalid("invalid event number %q", raw)
	}
	return n - 1, nil
}

// pathArg returns everything after the first n words so paths may contain
// spaces.
func pathArg(raw string, n int) string {
	rest := raw
	for i := 0; i < n; i++ {
		rest = strings.TrimSpace(rest)
		if j := strings.IndexFunc(rest, isSpace); j >= 0 {
			rest = rest[j:]
		} else {
			return ""
		}
	}
	return strings.TrimSpace(rest)
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t'
}
