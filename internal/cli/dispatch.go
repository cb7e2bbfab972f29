package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/keshon/chatlight/internal/device"
	"github.com/keshon/chatlight/internal/light"
	"github.com/keshon/chatlight/pkg/retrylimit"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

func newDispatchCmd(st *state) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "dispatch [--dry-run] <message...>",
		Short: "Run one chat message through the dispatcher",
		Long: `Run one chat message through the dispatcher. The words after the flags
form the message, e.g.

  chatlight dispatch --dry-run !light rgb 999 -5 10

With --dry-run the resulting instruction is printed instead of sent.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			out := cmd.OutOrStdout()
			if dryRun {
				return dryDispatch(out, light.NewDispatcher(light.DefaultSchema(), nil, nil, st.dispatcherOptions()...), text)
			}
			return liveDispatch(cmd.Context(), out, st, text)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the instruction instead of sending it")
	// Arguments like "-5" belong to the message, not to cobra.
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func dryDispatch(out io.Writer, d *light.Dispatcher, text string) error {
	res := d.Resolve(text)
	fmt.Fprintf(out, "outcome: %s\n", res.Outcome)

	switch res.Outcome {
	case light.OutcomeDispatched:
		b, err := json.Marshal(res.Instruction)
		if err != nil {
			return fmt.Errorf("encode instruction: %w", err)
		}
		fmt.Fprintln(out, string(b))
	case light.OutcomeUnknownCommand, light.OutcomeInvalidArguments:
		fmt.Fprintln(out, res.Usage)
	}
	return nil
}

func liveDispatch(ctx context.Context, out io.Writer, st *state, text string) error {
	if err := st.cfg.RequireDevice(); err != nil {
		return err
	}

	limits := retrylimit.DefaultLimiterConfig()
	limits.Initial = rate.Limit(st.cfg.Device.Rate)
	limits.Max = rate.Limit(st.cfg.Device.RateMax)
	retry := retrylimit.DefaultRetryConfig()
	retry.MaxAttempts = st.cfg.Device.DialAttempts
	conn, err := device.Dial(ctx, st.cfg.Device.Addr(), device.DialOptions{
		Options: device.Options{
			Queue:   st.cfg.Device.Queue,
			Limiter: retrylimit.NewAdaptiveLimiter(limits),
			Logger:  st.logger,
		},
		Timeout: st.cfg.Device.DialTimeout,
		Retry:   retry,
	})
	if err != nil {
		return err
	}

	runErr := make(chan error, 1)
	go func() { runErr <- conn.Run(ctx) }()

	replier := light.ReplierFunc(func(ctx context.Context, channelID, text string) error {
		_, err := fmt.Fprintln(out, text)
		return err
	})
	d := light.NewDispatcher(light.DefaultSchema(),
		device.Apply(conn, device.WithLogging(st.logger)),
		replier,
		st.dispatcherOptions()...)

	outcome, err := d.Dispatch(ctx, light.Message{ChannelID: "cli", Author: "cli", Text: text})
	_ = conn.Close()
	if rerr := <-runErr; err == nil {
		err = rerr
	}
	fmt.Fprintf(out, "outcome: %s\n", outcome)
	return err
}
