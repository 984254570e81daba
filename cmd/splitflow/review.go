package main

import (
	"fmt"

	"github.com/Veraticus/splitflow/internal/common"
	"github.com/Veraticus/splitflow/internal/tui"
	"github.com/spf13/cobra"
)

func reviewCmd() *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "review [tab]",
		Short: "Interactively approve and apply split MIS IDs",
		Long: `Run split planning for a sheet tab and open the interactive review UI.
Type an MIS ID for each step, approve it, then apply it to write the ID back
to the sheet through the backend.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			tab, err := resolveTab(ctx, store, args)
			if err != nil {
				return err
			}

			client, err := newBackendClient(ctx, store)
			if err != nil {
				return err
			}

			session, _, err := loadSession(cmd, client, store, tab, offline)
			if err != nil {
				return fmt.Errorf("%s", common.UserMessage(err))
			}

			return tui.Run(ctx, tui.Config{
				Session: session,
				Client:  client,
				Storage: store,
			})
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "review the last snapshotted plan without refetching")
	return cmd
}
