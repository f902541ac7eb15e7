package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/inputguard/pkg/config"
	"github.com/dmitrymomot/inputguard/pkg/guard"
	"github.com/dmitrymomot/inputguard/pkg/logger"
)

// Exit codes returned by Execute.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitRejected = 2
)

type rootOptions struct {
	maxSize   int64
	logFormat string
	logLevel  string
}

// NewRootCmd builds the guardctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "guardctl",
		Short: "Run one guarded operation over a file or stdin",
		Long: `guardctl runs untrusted input through the same size, depth, deadline and
allowlist checks as the guardd HTTP service.

Limits come from the GUARD_* environment variables and can be narrowed with
flags. The exit code is 0 when the input is accepted, 2 when it is rejected
and 1 on any other failure.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().Int64Var(&opts.maxSize, "max-size", guard.DefaultMaxSizeBytes, "Maximum input size in bytes (negative disables the check)")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "Log format: text or json (default: text on a terminal, json otherwise)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn or error")

	root.AddCommand(
		newPatternCmd(opts),
		newParseCmd(opts),
		newRenderCmd(opts),
		newIngestCmd(opts),
	)
	return root
}

// Execute runs guardctl with os.Args and returns the process exit code.
func Execute() int {
	root := NewRootCmd()
	err := root.Execute()
	if err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "guardctl:", describe(err))
	}
	return ExitCode(err)
}

// ExitCode maps a command error to ExitOK, ExitRejected or ExitFailure.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var rej *guard.Rejection
	if errors.As(err, &rej) && !rej.Internal() {
		return ExitRejected
	}
	return ExitFailure
}

func describe(err error) string {
	var rej *guard.Rejection
	if errors.As(err, &rej) {
		return fmt.Sprintf("rejected (%s): %s", rej.Reason, rej.Message)
	}
	return err.Error()
}

// newGuard builds a Guard from the environment and the persistent flags.
func (o *rootOptions) newGuard(cmd *cobra.Command, adjust ...func(guard.Limits) guard.Limits) (*guard.Guard, guard.Limits, error) {
	cfg, err := config.Parse[guard.Config]()
	if err != nil {
		return nil, guard.Limits{}, err
	}
	limits := guard.LimitsFromConfig(cfg)
	if cmd.Flags().Changed("max-size") {
		limits = limits.WithMaxSizeBytes(o.maxSize)
	}
	for _, fn := range adjust {
		limits = fn(limits)
	}

	log, err := o.logger(cmd.ErrOrStderr())
	if err != nil {
		return nil, guard.Limits{}, err
	}
	return guard.New(guard.WithLogger(log), guard.WithLimits(limits)), limits, nil
}

func (o *rootOptions) logger(out io.Writer) (*slog.Logger, error) {
	level, err := logger.ParseLevel(o.logLevel)
	if err != nil {
		return nil, err
	}
	opts := []logger.Option{logger.WithLevel(level)}

	switch o.logFormat {
	case "":
		if f, ok := out.(*os.File); ok {
			opts = append(opts, logger.WithTerminalFormat(f))
		} else {
			opts = append(opts, logger.WithOutput(out))
		}
	case string(logger.FormatText), string(logger.FormatJSON):
		opts = append(opts, logger.WithOutput(out), logger.WithFormat(logger.Format(o.logFormat)))
	default:
		return nil, fmt.Errorf("invalid --log-format %q: must be text or json", o.logFormat)
	}
	return logger.New(opts...), nil
}
