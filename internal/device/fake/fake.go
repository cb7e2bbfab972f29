// Package fake provides in-memory collaborators for exercising the
// dispatcher without a bulb or a chat network.
package fake

import (
	"context"
	"sync"

	"github.com/keshon/chatlight/internal/device"
)

// Sender records every instruction it is given.
type Sender struct {
	mu   sync.Mutex
	sent []device.Instruction

	// Err, when set, is returned by Send after recording the instruction.
	Err error
}

// NewSender returns an empty recording sender.
func NewSender() *Sender {
	return &Sender{}
}

// Send records in.
func (s *Sender) Send(ctx context.Context, in device.Instruction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, in)
	return s.Err
}

// Sent returns a copy of the recorded instructions.
func (s *Sender) Sent() []device.Instruction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]device.Instruction, len(s.sent))
	copy(out, s.sent)
	return out
}

// Reply is one recorded chat reply.
type Reply struct {
	ChannelID string
	Text      string
}

// Replier records every chat reply it is given.
type Replier struct {
	mu      sync.Mutex
	replies []Reply

	// Err, when set, is returned by Reply after recording the reply.
	Err error
}

// NewReplier returns an empty recording replier.
func NewReplier() *Replier {
	return &Replier{}
}

// Reply records text for channelID.
func (r *Replier) Reply(ctx context.Context, channelID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies = append(r.replies, Reply{ChannelID: channelID, Text: text})
	return r.Err
}

// Replies returns a copy of the recorded replies.
func (r *Replier) Replies() []Reply {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Reply, len(r.replies))
	copy(out, r.replies)
	return out
}
