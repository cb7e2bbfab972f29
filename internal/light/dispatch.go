// Package light turns chat messages into bulb instructions. A message that
// starts with the command prefix is looked up in a Schema, its arguments are
// validated, and either one device.Instruction is sent or one usage line is
// replied.
package light

import (
	"context"
	"fmt"
	"strings"

	"github.com/keshon/chatlight/internal/device"
	"go.uber.org/zap"
)

// DefaultPrefix is the reserved first token of a command message.
const DefaultPrefix = "!light"

// Outcome is the terminal state of one dispatch pass.
type Outcome int

const (
	// OutcomeIgnored means the message was not a command.
	OutcomeIgnored Outcome = iota
	// OutcomeUnknownCommand means the keyword was missing or unknown.
	OutcomeUnknownCommand
	// OutcomeInvalidArguments means the keyword was known but its arguments
	// failed validation.
	OutcomeInvalidArguments
	// OutcomeDispatched means one instruction was handed to the device.
	OutcomeDispatched
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeUnknownCommand:
		return "unknown_command"
	case OutcomeInvalidArguments:
		return "invalid_arguments"
	case OutcomeDispatched:
		return "dispatched"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Message is one incoming chat message.
type Message struct {
	ChannelID string
	Author    string
	Text      string
}

// Replier sends a text reply to a chat channel.
type Replier interface {
	Reply(ctx context.Context, channelID, text string) error
}

// ReplierFunc adapts a function to Replier.
type ReplierFunc func(ctx context.Context, channelID, text string) error

func (f ReplierFunc) Reply(ctx context.Context, channelID, text string) error {
	return f(ctx, channelID, text)
}

// Result is what Resolve decided for a message, without any side effects.
type Result struct {
	Outcome     Outcome
	Command     string // canonical name, empty unless the keyword was found
	Instruction device.Instruction
	Usage       string // set for the two usage outcomes
	Err         error  // validation cause for the two usage outcomes
}

// Dispatcher routes chat messages to the device. It holds no mutable state and
// is safe for concurrent use if its collaborators are.
type Dispatcher struct {
	schema *Schema
	prefix string
	device device.Sender
	chat   Replier
	logger *zap.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithPrefix overrides DefaultPrefix.
func WithPrefix(prefix string) Option {
	return func(d *Dispatcher) {
		if prefix != "" {
			d.prefix = prefix
		}
	}
}

// WithLogger sets the logger used for outcome tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDispatcher returns a Dispatcher over schema that sends instructions to
// sender and usage lines to chat. Dispatch needs both collaborators; Resolve
// uses neither.
func NewDispatcher(schema *Schema, sender device.Sender, chat Replier, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		schema: schema,
		prefix: DefaultPrefix,
		device: sender,
		chat:   chat,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Prefix returns the reserved command prefix.
func (d *Dispatcher) Prefix() string { return d.prefix }

// Schema returns the command table the dispatcher routes against.
func (d *Dispatcher) Schema() *Schema { return d.schema }

// Resolve tokenizes text and decides its outcome. Usage lines are rendered
// only on the failure branches.
func (d *Dispatcher) Resolve(text string) Result {
	fields := strings.Fields(text)
	if len(fields) == 0 || fields[0] != d.prefix {
		return Result{Outcome: OutcomeIgnored}
	}

	if len(fields) < 2 {
		return Result{
			Outcome: OutcomeUnknownCommand,
			Usage:   TopLevelUsage(d.prefix, d.schema),
			Err:     ErrUnknownCommand,
		}
	}

	def, ok := d.schema.Lookup(fields[1])
	if !ok {
		return Result{
			Outcome: OutcomeUnknownCommand,
			Usage:   TopLevelUsage(d.prefix, d.schema),
			Err:     fmt.Errorf("%w: %q", ErrUnknownCommand, fields[1]),
		}
	}

	args, err := Validate(def, fields[2:])
	if err != nil {
		return Result{
			Outcome: OutcomeInvalidArguments,
			Command: def.Name,
			Usage:   Usage(d.prefix, def),
			Err:     err,
		}
	}

	return Result{
		Outcome: OutcomeDispatched,
		Command: def.Name,
		Instruction: device.Instruction{
			Method: def.Method,
			Params: def.Params(args),
		},
	}
}

// Dispatch resolves msg and performs its single effect: one device send on
// success, one usage reply on a rejected command, nothing otherwise. The
// returned error is non-nil only when that effect failed.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) (Outcome, error) {
	res := d.Resolve(msg.Text)

	switch res.Outcome {
	case OutcomeIgnored:
		return res.Outcome, nil

	case OutcomeDispatched:
		d.logger.Debug("dispatching command",
			zap.String("command", res.Command),
			zap.String("channel", msg.ChannelID),
			zap.String("author", msg.Author))
		if err := d.device.Send(ctx, res.Instruction); err != nil {
			return res.Outcome, fmt.Errorf("send %s: %w", res.Instruction.Method, err)
		}
		return res.Outcome, nil

	default:
		d.logger.Debug("rejected command",
			zap.Stringer("outcome", res.Outcome),
			zap.String("channel", msg.ChannelID),
			zap.String("author", msg.Author),
			zap.Error(res.Err))
		if err := d.chat.Reply(ctx, msg.ChannelID, res.Usage); err != nil {
			return res.Outcome, fmt.Errorf("reply usage: %w", err)
		}
		return res.Outcome, nil
	}
}
