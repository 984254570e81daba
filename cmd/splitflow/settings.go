package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/Veraticus/splitflow/internal/cli"
	"github.com/spf13/cobra"
)

func settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage the local settings cache",
		Long: `List, set, and unset cached settings such as the backend URL override
(backend_url) and the default sheet tab (default_tab).`,
	}

	cmd.AddCommand(listSettingsCmd())
	cmd.AddCommand(setSettingCmd())
	cmd.AddCommand(unsetSettingCmd())

	return cmd
}

func listSettingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all cached settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			settings, err := store.ListSettings(ctx)
			if err != nil {
				return fmt.Errorf("failed to list settings: %w", err)
			}

			if len(settings) == 0 {
				fmt.Println(cli.InfoStyle.Render("No settings cached. Use 'splitflow settings set' to add one."))
				return nil
			}

			keys := make([]string, 0, len(settings))
			for key := range settings {
				keys = append(keys, key)
			}
			sort.Strings(keys)

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintf(w, "%s\t%s\n",
				cli.TableHeaderStyle.Render("Key"),
				cli.TableHeaderStyle.Render("Value"))
			for _, key := range keys {
				fmt.Fprintf(w, "%s\t%s\n", key, settings[key])
			}
			return nil
		},
	}
}

func setSettingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a cached setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.SetSetting(ctx, args[0], args[1]); err != nil {
				return fmt.Errorf("failed to set %s: %w", args[0], err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Set %s = %s", args[0], args[1])))
			return nil
		},
	}
}

func unsetSettingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unset <key>",
		Short: "Remove a cached setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.DeleteSetting(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to unset %s: %w", args[0], err)
			}

			fmt.Println(cli.FormatSuccess("Unset " + args[0]))
			return nil
		},
	}
}
