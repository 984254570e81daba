package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/splitflow/internal/cli"
	"github.com/Veraticus/splitflow/internal/common"
	"github.com/Veraticus/splitflow/internal/config"
	"github.com/Veraticus/splitflow/internal/sheets"
	"github.com/spf13/cobra"
)

func tabsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tabs",
		Short: "List the tabs of the promotions spreadsheet",
		Long: `Read the promotions spreadsheet directly and list its tab names. Useful
for finding the tab argument to pass to plan, review, and breakdown.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			sheetsConfig, err := config.LoadSheetsConfig()
			if err != nil {
				return fmt.Errorf("%s", common.UserMessage(err))
			}

			reader, err := sheets.NewReader(ctx, *sheetsConfig, slog.Default())
			if err != nil {
				return fmt.Errorf("failed to connect to Google Sheets: %w", err)
			}

			tabs, err := reader.ListTabs(ctx)
			if err != nil {
				return fmt.Errorf("failed to list tabs: %w", err)
			}

			fmt.Println(cli.FormatTitle(fmt.Sprintf("%s Spreadsheet tabs", cli.SheetIcon)))
			for _, tab := range tabs {
				fmt.Println("  " + tab)
			}
			return nil
		},
	}
}
