// Package device is the bulb side of chatlight: the Instruction type the
// dispatcher produces, the Sender contract, sender middleware, and a line
// oriented JSON connection to the bulb.
package device

import (
	"context"

	"go.uber.org/zap"
)

// Instruction is one remote call: a method name and its ordered parameters.
type Instruction struct {
	Method string `json:"method"`
	Params []any  `json:"params"`
}

// Sender delivers an instruction to the bulb. Delivery is fire-and-forget;
// a nil error means the instruction was accepted, not that the bulb applied it.
type Sender interface {
	Send(ctx context.Context, in Instruction) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, in Instruction) error

func (f SenderFunc) Send(ctx context.Context, in Instruction) error {
	return f(ctx, in)
}

// Middleware wraps a sender (logging, metrics, filtering).
type Middleware func(Sender) Sender

// Apply applies middlewares in order; the first in the list is the outermost.
func Apply(s Sender, mws ...Middleware) Sender {
	for i := len(mws) - 1; i >= 0; i-- {
		s = mws[i](s)
	}
	return s
}

// WithLogging logs every instruction before handing it on.
func WithLogging(logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next Sender) Sender {
		return SenderFunc(func(ctx context.Context, in Instruction) error {
			logger.Info("device instruction",
				zap.String("method", in.Method),
				zap.Any("params", in.Params))
			err := next.Send(ctx, in)
			if err != nil {
				logger.Warn("device instruction not accepted",
					zap.String("method", in.Method),
					zap.Error(err))
			}
			return err
		})
	}
}
