package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/pricetrack/internal/adapters/testbackend"
	"github.com/okian/pricetrack/pkg/logger"
)

func newFakeBackendCmd() *cobra.Command {
	var (
		addr  string
		users []string
	)
	cmd := &cobra.Command{
		Use:   "fake-backend",
		Short: "Runs an in-memory tracking service for local development.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := []testbackend.Option{testbackend.WithUsers(users...)}
			if len(users) == 0 {
				opts = append(opts, testbackend.WithAutoRegister(true))
			}
			fake := testbackend.New(opts...)
			fake.SetLogger(logger.Named("testbackend"))

			fmt.Fprintln(cmd.OutOrStdout(), "fake tracking service listening on", addr)
			return fake.Serve(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:9090", "listen address")
	cmd.Flags().StringSliceVar(&users, "user", nil, "registered user email (repeatable); none means any email is accepted")
	return cmd
}
