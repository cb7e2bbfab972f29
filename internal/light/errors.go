package light

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownCommand is reported when the keyword after the prefix is
	// missing or not in the schema.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrWrongArity is reported when the argument count differs from the
	// command's arity.
	ErrWrongArity = errors.New("wrong number of arguments")
	// ErrUnparsableArgument is reported when an argument token does not parse
	// as the type the command expects.
	ErrUnparsableArgument = errors.New("unparsable argument")
)

// ValidationError marks a rejected argument list. It never carries partial
// results; Err is ErrWrongArity or wraps ErrUnparsableArgument.
type ValidationError struct {
	Command string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }
