package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/splitflow/internal/api"
	"github.com/Veraticus/splitflow/internal/cli"
	"github.com/Veraticus/splitflow/internal/common"
	"github.com/Veraticus/splitflow/internal/config"
	"github.com/Veraticus/splitflow/internal/sheets"
	"github.com/spf13/cobra"
)

func automateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "automate",
		Short: "Drive the backend's MIS automation endpoints",
		Long: `Ask the backend automation layer to create a MIS entry for a split step
or to shorten an existing entry's end date, instead of entering the ID by hand.`,
	}

	cmd.AddCommand(autoCreateCmd())
	cmd.AddCommand(autoEndDateCmd())

	return cmd
}

func autoCreateCmd() *cobra.Command {
	var (
		row       int
		startDate string
		endDate   string
		section   string
		tab       string
		withSheet bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a MIS entry for a split step",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if row < 2 || startDate == "" || endDate == "" {
				return fmt.Errorf("--row (>= 2), --start and --end are required")
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			client, err := newBackendClient(ctx, store)
			if err != nil {
				return err
			}

			req := api.AutoCreateRequest{
				GoogleRow:   row,
				StartDate:   startDate,
				EndDate:     endDate,
				SectionType: section,
			}

			// The automation layer fills MIS form fields from the sheet row
			// when we send it along.
			if withSheet {
				if tab == "" {
					tab, err = resolveTab(ctx, store, nil)
					if err != nil {
						return err
					}
				}
				sheetsConfig, err := config.LoadSheetsConfig()
				if err != nil {
					return fmt.Errorf("%s", common.UserMessage(err))
				}
				reader, err := sheets.NewReader(ctx, *sheetsConfig, slog.Default())
				if err != nil {
					return fmt.Errorf("failed to connect to Google Sheets: %w", err)
				}
				req.SheetData, err = reader.RowData(ctx, tab, row)
				if err != nil {
					return fmt.Errorf("failed to read row %d from %q: %w", row, tab, err)
				}
			}

			resp, err := client.AutoCreate(ctx, req)
			if err != nil {
				return err
			}
			if resp.Failed() {
				return fmt.Errorf("%s", resp.ErrorMessage())
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Automation started: create %s entry for row %d (%s to %s)",
				section, row, startDate, endDate)))
			return nil
		},
	}

	cmd.Flags().IntVar(&row, "row", 0, "sheet row number of the deal")
	cmd.Flags().StringVar(&startDate, "start", "", "entry start date (MM/DD)")
	cmd.Flags().StringVar(&endDate, "end", "", "entry end date (MM/DD)")
	cmd.Flags().StringVar(&section, "section", "weekly", "section type (weekly, monthly, sale)")
	cmd.Flags().StringVar(&tab, "tab", "", "sheet tab for --with-sheet-data (default: default_tab setting)")
	cmd.Flags().BoolVar(&withSheet, "with-sheet-data", false, "read the sheet row and send it with the request")
	return cmd
}

func autoEndDateCmd() *cobra.Command {
	var (
		misID   string
		row     int
		endDate string
	)

	cmd := &cobra.Command{
		Use:   "end-date",
		Short: "Shorten an existing MIS entry's end date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if misID == "" || endDate == "" {
				return fmt.Errorf("--id and --end are required")
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			client, err := newBackendClient(ctx, store)
			if err != nil {
				return err
			}

			resp, err := client.AutoEndDate(ctx, api.AutoEndDateRequest{
				MISID:      misID,
				NewEndDate: endDate,
				GoogleRow:  row,
			})
			if err != nil {
				return err
			}
			if resp.Failed() {
				return fmt.Errorf("%s", resp.ErrorMessage())
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Automation started: end %s on %s", misID, endDate)))
			return nil
		},
	}

	cmd.Flags().StringVar(&misID, "id", "", "MIS ID of the entry to shorten")
	cmd.Flags().IntVar(&row, "row", 0, "sheet row number of the deal")
	cmd.Flags().StringVar(&endDate, "end", "", "new end date (MM/DD)")
	return cmd
}
