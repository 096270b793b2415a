package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/pricetrack/internal/domain/model"
	"github.com/okian/pricetrack/internal/tracking"
)

func (e *env) requireEmail() error {
	if e.email == "" {
		return errNoEmail
	}
	return nil
}

func newListCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Lists the tracked items of the user.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.requireEmail(); err != nil {
				return err
			}
			items, err := e.sync.ListItems(cmd.Context(), e.email)
			if err != nil {
				return userError(err)
			}
			renderItems(cmd.OutOrStdout(), items, time.Now(), e.cfg.NameDisplayLimit)
			return nil
		},
	}
}

func newAddCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "add URL",
		Short: "Starts tracking an Amazon or eBay product.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.requireEmail(); err != nil {
				return err
			}
			out, err := e.sync.AddItem(cmd.Context(), args[0], e.email)
			if err != nil {
				return userError(err)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, out.Message)
			fmt.Fprintln(w, "Canonical URL:", out.Ref.CanonicalURL)
			if out.RefreshErr != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", userError(out.RefreshErr))
				return nil
			}
			renderItems(w, e.sync.Items(cmd.Context()), time.Now(), e.cfg.NameDisplayLimit)
			return nil
		},
	}
}

func newDeleteCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Stops tracking an item.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.requireEmail(); err != nil {
				return err
			}
			// Load the collection so the id goes back in the form it was listed in.
			if _, err := e.sync.ListItems(cmd.Context(), e.email); err != nil {
				return userError(err)
			}
			if err := e.sync.DeleteItem(cmd.Context(), model.ItemID(args[0]), e.email); err != nil {
				return userError(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), tracking.MsgDeleted)
			return nil
		},
	}
}
