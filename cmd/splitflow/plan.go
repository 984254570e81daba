package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/Veraticus/splitflow/internal/cli"
	"github.com/Veraticus/splitflow/internal/common"
	"github.com/Veraticus/splitflow/internal/model"
	"github.com/Veraticus/splitflow/internal/plan"
	"github.com/spf13/cobra"
)

func planCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "plan [tab]",
		Short: "Analyze a sheet tab for required splits",
		Long: `Run split planning for a sheet tab and print the summary and the splits
table. The plan is snapshotted locally so breakdown and review can reuse it.`,
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

			session, result, err := fetchPlan(ctx, client, store, tab)
			if err != nil {
				return fmt.Errorf("%s", common.UserMessage(err))
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(session.Plan())
			}

			printPlanSummary(tab, result)
			printSplitsTable(session.Plan().SplitsRequired)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw plan as JSON")
	return cmd
}

func printPlanSummary(tab string, result plan.IngestResult) {
	fmt.Println(cli.FormatTitle(fmt.Sprintf("Split planning: %s", tab)))
	if result.DateContext != "" {
		fmt.Println(cli.SubtleStyle.Render(result.DateContext))
	}
	fmt.Printf("  Weekly: %d  Monthly: %d  Sale: %d\n",
		result.Summary.WeeklyCount, result.Summary.MonthlyCount, result.Summary.SaleCount)
	fmt.Printf("  Splits required: %s  No conflict: %d\n\n",
		cli.WarningStyle.Render(fmt.Sprintf("%d", result.SplitsRequired)), result.NoConflict)
}

func printSplitsTable(splits []model.SplitItem) {
	if len(splits) == 0 {
		fmt.Println(cli.FormatSuccess("No splits required for this tab."))
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
		cli.TableHeaderStyle.Render("Row"),
		cli.TableHeaderStyle.Render("Brand"),
		cli.TableHeaderStyle.Render("Weekday"),
		cli.TableHeaderStyle.Render("Conflict"),
		cli.TableHeaderStyle.Render("Interrupted by"),
		cli.TableHeaderStyle.Render("Steps"))

	for _, item := range splits {
		interrupting := ""
		if item.InterruptingDeal != nil {
			interrupting = item.InterruptingDeal.Brand
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			item.GoogleRow,
			item.Brand,
			item.Weekday,
			string(item.ConflictType),
			interrupting,
			stepActions(item.Plan))
	}
}

func stepActions(steps []model.PlanStep) string {
	actions := make([]string, 0, len(steps))
	for _, step := range steps {
		actions = append(actions, string(step.Action))
	}
	return strings.Join(actions, " → ")
}
