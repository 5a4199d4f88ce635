package protocol

import (
	"errors"
	"strings"
)

// ErrInvalidCommandFormat is a command-format error, not a codec error: the
// connection stays open and the caller replies with an Error value.
var ErrInvalidCommandFormat = errors.New("invalid command format")

// Command is a parsed top-level request: a name and its typed arguments.
type Command struct {
	Name string
	Args []Value
}

// ExtractCommand interprets a parsed top-level Value as a command: element 0
// is the command name (BulkString or SimpleString, upper-cased), the
// remainder are arguments in their original typed form. Non-array top-level
// frames, empty arrays, and a non-string element 0 are rejected with
// ErrInvalidCommandFormat.
func ExtractCommand(v Value) (Command, error) {
	if v.Kind != KindArray || v.Array == nil || len(v.Array) == 0 {
		return Command{}, ErrInvalidCommandFormat
	}

	head := v.Array[0]
	var name string
	switch head.Kind {
	case KindBulkString:
		if head.Bulk == nil {
			return Command{}, ErrInvalidCommandFormat
		}
		name = string(head.Bulk)
	case KindSimpleString:
		name = head.Str
	default:
		return Command{}, ErrInvalidCommandFormat
	}

	return Command{
		Name: strings.ToUpper(name),
		Args: v.Array[1:],
	}, nil
}
