// Package commands implements the pricetrack command line client.
package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/pricetrack/internal/adapters/tracker"
	"github.com/okian/pricetrack/internal/config"
	"github.com/okian/pricetrack/internal/tracking"
	"github.com/okian/pricetrack/pkg/logger"
)

// env is the state shared by subcommands, built once flags are parsed.
type env struct {
	cfg     *config.Config
	email   string
	backend *tracker.Client
	sync    *tracking.Synchronizer
}

type rootFlags struct {
	backendURL string
	email      string
	timeout    time.Duration
	nameLimit  int
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}
	e := &env{}

	root := &cobra.Command{
		Use:           "pricetrack",
		Short:         "pricetrack is a CLI for the marketplace price tracking service.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.init(cmd, flags)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.backendURL, "backend", "", "base URL of the tracking service (default from config)")
	pf.StringVar(&flags.email, "email", os.Getenv("PRICETRACK_EMAIL"), "email of the user to act as")
	pf.DurationVar(&flags.timeout, "timeout", 0, "per-request timeout (default from config)")
	pf.IntVar(&flags.nameLimit, "name-limit", 0, "characters of item names to show (default from config)")

	root.AddCommand(
		newNormalizeCmd(),
		newListCmd(e),
		newAddCmd(e),
		newDeleteCmd(e),
		newFakeBackendCmd(),
	)
	return root
}

func (e *env) init(cmd *cobra.Command, flags *rootFlags) error {
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return err
	}
	if flags.backendURL != "" {
		cfg.TrackerBaseURL = flags.backendURL
	}
	if flags.timeout > 0 {
		cfg.TrackerTimeoutMS = int(flags.timeout / time.Millisecond)
	}
	if flags.nameLimit > 0 {
		cfg.NameDisplayLimit = flags.nameLimit
	}

	if err := logger.InitWith(cmd.ErrOrStderr(), cfg.LogFormat); err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		_ = logger.SetLevelString("warn")
	}

	e.cfg = cfg
	e.email = flags.email
	e.backend = tracker.New(cfg.TrackerBaseURL,
		tracker.WithTimeout(time.Duration(cfg.TrackerTimeoutMS)*time.Millisecond),
		tracker.WithUserAgent(cfg.UserAgent),
		tracker.WithLogger(logger.Named("tracker")),
	)
	e.sync = tracking.New(e.backend, tracking.WithLogger(logger.Named("tracking")))
	return nil
}

// userError reduces err to the message a user should see.
func userError(err error) error {
	if err == nil {
		return nil
	}
	return errors.New(tracking.UserMessage(err))
}

// ExecuteContext runs the CLI and exits non-zero on failure.
func ExecuteContext(ctx context.Context) {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
