package device

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/keshon/chatlight/pkg/retrylimit"
	"go.uber.org/zap"
)

var (
	// ErrClosed is returned by Send once the connection stopped accepting
	// instructions.
	ErrClosed = errors.New("device connection closed")
	// ErrQueueFull is returned by Send when the outbound queue is full.
	ErrQueueFull = errors.New("device queue full")
)

const (
	defaultQueue = 16
	lineEnd      = "\r\n"
)

// Update is a property change notification pushed by the bulb.
type Update struct {
	Props map[string]any
}

// Options configures a Conn.
type Options struct {
	Queue   int                         // outbound buffer, default 16
	Limiter *retrylimit.AdaptiveLimiter // optional send throttle
	Logger  *zap.Logger
}

// Conn is a connection to one bulb. Send only enqueues; Run owns the socket,
// writes queued instructions and reads results and notifications.
type Conn struct {
	nc      net.Conn
	queue   chan Instruction
	updates chan Update
	limiter *retrylimit.AdaptiveLimiter
	logger  *zap.Logger

	started   atomic.Bool
	draining  chan struct{}
	drainOnce sync.Once
	done      chan struct{}
}

// NewConn wraps an established connection. Call Run to start traffic.
func NewConn(nc net.Conn, opts Options) *Conn {
	if opts.Queue <= 0 {
		opts.Queue = defaultQueue
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Conn{
		nc:       nc,
		queue:    make(chan Instruction, opts.Queue),
		updates:  make(chan Update, opts.Queue),
		limiter:  opts.Limiter,
		logger:   opts.Logger,
		draining: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// DialOptions configures Dial.
type DialOptions struct {
	Options
	Timeout time.Duration // per attempt
	Retry   retrylimit.RetryConfig
}

// Dial connects to addr, retrying according to opts.Retry.
func Dial(ctx context.Context, addr string, opts DialOptions) (*Conn, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	retry := opts.Retry
	if retry.OnRetry == nil {
		retry.OnRetry = func(attempt int, err error) {
			opts.Logger.Warn("device dial failed, retrying",
				zap.String("addr", addr),
				zap.Int("attempt", attempt),
				zap.Error(err))
		}
	}

	var nc net.Conn
	err := retrylimit.Do(ctx, retry, func(ctx context.Context) error {
		d := net.Dialer{Timeout: opts.Timeout}
		c, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return err
		}
		nc = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("dial device %s: %w", addr, err)
	}

	opts.Logger.Info("device connected", zap.String("addr", addr))
	return NewConn(nc, opts.Options), nil
}

// Send enqueues in without waiting for the bulb.
func (c *Conn) Send(ctx context.Context, in Instruction) error {
	select {
	case <-c.draining:
		return ErrClosed
	case <-c.done:
		return ErrClosed
	default:
	}

	select {
	case c.queue <- in:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

// Updates delivers bulb notifications. It is closed when Run returns.
func (c *Conn) Updates() <-chan Update {
	return c.updates
}

// Close stops accepting instructions. Run writes whatever is still queued and
// then returns.
func (c *Conn) Close() error {
	c.drainOnce.Do(func() { close(c.draining) })
	return nil
}

// Run moves traffic until ctx is done, the socket fails, or Close has been
// called and the queue is flushed. It may be called once.
func (c *Conn) Run(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return errors.New("device connection already running")
	}

	readErr := make(chan error, 1)
	writeErr := make(chan error, 1)
	go func() { readErr <- c.readLoop() }()
	go func() { writeErr <- c.writeLoop(ctx) }()

	var err error
	writerDone := false
	select {
	case <-ctx.Done():
	case err = <-readErr:
		readErr = nil
	case err = <-writeErr:
		writerDone = true
	}

	close(c.done)
	_ = c.nc.Close()

	if !writerDone {
		if werr := <-writeErr; err == nil {
			err = werr
		}
	}
	if readErr != nil {
		<-readErr
	}
	close(c.updates)
	return err
}

func (c *Conn) writeLoop(ctx context.Context) error {
	id := 0
	write := func(in Instruction) error {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil
			}
		}
		id++
		line, err := encodeLine(id, in)
		if err != nil {
			c.logger.Warn("dropping unencodable instruction",
				zap.String("method", in.Method),
				zap.Error(err))
			return nil
		}
		if _, err := c.nc.Write(line); err != nil {
			return fmt.Errorf("write instruction: %w", err)
		}
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-c.done:
			return nil
		case <-c.draining:
			for {
				select {
				case in := <-c.queue:
					if err := write(in); err != nil {
						return err
					}
				default:
					return nil
				}
			}
		case in := <-c.queue:
			if err := write(in); err != nil {
				return err
			}
		}
	}
}

// frame is any line the bulb sends: a result, an error, or a notification.
type frame struct {
	ID     int             `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
	Result json.RawMessage `json:"result"`
	Error  *frameError     `json:"error"`
}

type frameError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (c *Conn) readLoop() error {
	sc := bufio.NewScanner(c.nc)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var f frame
		if err := json.Unmarshal([]byte(line), &f); err != nil {
			c.logger.Warn("unreadable device frame", zap.String("line", line), zap.Error(err))
			continue
		}
		c.handleFrame(f)
	}

	select {
	case <-c.done:
		return nil
	default:
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read device: %w", err)
	}
	return errors.New("device closed the connection")
}

func (c *Conn) handleFrame(f frame) {
	switch {
	case f.Error != nil:
		c.logger.Warn("device rejected instruction",
			zap.Int("id", f.ID),
			zap.Int("code", f.Error.Code),
			zap.String("message", f.Error.Message))
		if c.limiter != nil && isQuotaError(f.Error) {
			c.limiter.Throttled()
		}

	case f.Result != nil:
		if c.limiter != nil {
			c.limiter.Success()
		}

	case f.Method == "props":
		var props map[string]any
		if err := json.Unmarshal(f.Params, &props); err != nil {
			c.logger.Warn("unreadable props notification", zap.Error(err))
			return
		}
		select {
		case c.updates <- Update{Props: props}:
		case <-c.done:
		}
	}
}

func isQuotaError(e *frameError) bool {
	return strings.Contains(strings.ToLower(e.Message), "quota")
}

func encodeLine(id int, in Instruction) ([]byte, error) {
	params := in.Params
	if params == nil {
		params = []any{}
	}
	b, err := json.Marshal(struct {
		ID     int    `json:"id"`
		Method string `json:"method"`
		Params []any  `json:"params"`
	}{id, in.Method, params})
	if err != nil {
		return nil, err
	}
	return append(b, lineEnd...), nil
}
