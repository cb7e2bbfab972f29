// Package cli implements the chatlight command-line interface.
package cli

import (
	"fmt"

	"github.com/keshon/chatlight/internal/config"
	"github.com/keshon/chatlight/internal/light"
	"github.com/keshon/chatlight/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// state is shared by the subcommands of one root command.
type state struct {
	verbose bool
	cfg     *config.Config
	logger  *zap.Logger
}

func (st *state) dispatcherOptions() []light.Option {
	return []light.Option{
		light.WithPrefix(st.cfg.Prefix),
		light.WithLogger(st.logger),
	}
}

// NewRootCmd builds the chatlight command tree.
func NewRootCmd() *cobra.Command {
	st := &state{}

	root := &cobra.Command{
		Use:   "chatlight",
		Short: "Drive a smart bulb with chat commands",
		Long: `chatlight turns chat messages such as "!light rgb 255 0 10" into bulb
instructions. This tool runs single messages through the same dispatcher the
Discord bot uses, either as a dry run or against a real bulb.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadDotEnv()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			st.cfg = cfg

			level := cfg.LogLevel
			if st.verbose {
				level = "debug"
			}
			st.logger, err = logging.New(level, cfg.LogDev)
			if err != nil {
				return err
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if st.logger != nil {
				_ = st.logger.Sync()
			}
		},
	}
	root.PersistentFlags().BoolVarP(&st.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newDispatchCmd(st),
		newUsageCmd(st),
		newCommandsCmd(st),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
