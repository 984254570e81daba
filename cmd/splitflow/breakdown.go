package main

import (
	"errors"
	"fmt"

	"github.com/Veraticus/splitflow/internal/bucket"
	"github.com/Veraticus/splitflow/internal/cli"
	"github.com/Veraticus/splitflow/internal/common"
	"github.com/Veraticus/splitflow/internal/model"
	"github.com/Veraticus/splitflow/internal/tui/viewmodel"
	"github.com/spf13/cobra"
)

func breakdownCmd() *cobra.Command {
	var (
		full    bool
		offline bool
	)

	cmd := &cobra.Command{
		Use:   "breakdown [tab]",
		Short: "Print the weekday breakdown for a sheet tab",
		Long: `Group the tab's weekly deals by weekday, Monday first. Deals spanning
several weekdays appear in full under their first weekday and as reference
entries under the others. --full prints the flat list instead.`,
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

			rows := rowsFromPlan(session.Plan())
			if full {
				printFullList(tab, rows)
				return nil
			}

			breakdown, err := bucket.Build(rows)
			if err != nil {
				var buildErr *bucket.BuildError
				if errors.As(err, &buildErr) {
					for _, problem := range buildErr.Problems {
						fmt.Println(cli.FormatError(problem))
					}
				}
				return fmt.Errorf("weekday breakdown failed")
			}

			printBreakdown(tab, viewmodel.BuildBreakdownView(breakdown))
			return nil
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "print the flat full list instead of weekday buckets")
	cmd.Flags().BoolVar(&offline, "offline", false, "use the last snapshotted plan without refetching")
	return cmd
}

// rowsFromPlan flattens the plan's deals into bucketizer rows. Splits and
// clean weekly deals both belong to the weekly section; monthly and sale
// deals pass through to the tail. Brand links from the plan become row
// groups so multi-weekday deals get reference entries.
func rowsFromPlan(p *model.SplitPlan) []bucket.Row {
	if p == nil {
		return nil
	}

	rows := make([]bucket.Row, 0, len(p.SplitsRequired)+len(p.NoConflict))
	for _, item := range p.SplitsRequired {
		rows = append(rows, bucket.Row{
			Section:       model.SectionWeekly,
			Weekday:       item.Weekday,
			Brand:         item.Brand,
			Discount:      item.Discount,
			VendorContrib: item.VendorContrib,
			Locations:     item.Locations,
		})
	}
	for _, deal := range p.NoConflict {
		section := deal.Section
		if section == "" {
			section = model.SectionWeekly
		}
		rows = append(rows, bucket.Row{
			Section:       section,
			Weekday:       deal.Weekday,
			Brand:         deal.Brand,
			Discount:      deal.Discount,
			VendorContrib: deal.VendorContrib,
			Locations:     deal.Locations,
			MISID:         deal.MISID,
		})
	}
	return groupLinkedRows(rows, p.BrandLinkedMap)
}

// groupLinkedRows turns the plan's brand links into row groups. Every brand
// in a link chain resolves to its anchor brand; when an anchor spans two or
// more weekly rows that all carry usable weekdays, those rows become one
// group under a synthesized header. Anything else passes through ungrouped.
func groupLinkedRows(rows []bucket.Row, linked map[string]string) []bucket.Row {
	if len(linked) == 0 {
		return rows
	}

	anchors := make(map[string]bool, len(linked))
	for _, target := range linked {
		anchors[target] = true
	}
	keyFor := func(brand string) string {
		if target := linked[brand]; target != "" {
			return target
		}
		if anchors[brand] {
			return brand
		}
		return ""
	}

	members := make(map[string][]bucket.Row)
	for _, row := range rows {
		if row.Section != model.SectionWeekly {
			continue
		}
		if key := keyFor(row.Brand); key != "" {
			members[key] = append(members[key], row)
		}
	}

	grouped := make(map[string]bool)
	for key, group := range members {
		if len(group) < 2 {
			continue
		}
		usable := true
		for _, member := range group {
			if _, ok := model.NormalizeWeekday(member.Weekday); !ok {
				usable = false
				break
			}
		}
		grouped[key] = usable
	}

	out := make([]bucket.Row, 0, len(rows)+len(grouped))
	emitted := make(map[string]bool)
	for _, row := range rows {
		key := ""
		if row.Section == model.SectionWeekly {
			key = keyFor(row.Brand)
		}
		if key == "" || !grouped[key] {
			out = append(out, row)
			continue
		}
		if emitted[key] {
			continue
		}
		emitted[key] = true

		out = append(out, groupHeader(key, members[key]))
		for _, member := range members[key] {
			member.GroupID = key
			out = append(out, member)
		}
	}
	return out
}

// groupHeader synthesizes the header row for a link group, preferring the
// anchor brand's own row for the shared discount and vendor fields.
func groupHeader(key string, group []bucket.Row) bucket.Row {
	base := group[0]
	for _, member := range group {
		if member.Brand == key {
			base = member
			break
		}
	}
	base.GroupID = key
	base.IsGroupHeader = true
	base.MISID = ""
	return base
}

func printBreakdown(tab string, view viewmodel.BreakdownView) {
	fmt.Println(cli.FormatTitle(fmt.Sprintf("%s Weekday breakdown: %s", cli.CalendarIcon, tab)))

	for _, day := range view.Days {
		if day.Empty() {
			continue
		}
		fmt.Println(cli.BoldStyle.Render(day.Day))
		for _, note := range day.Notes {
			fmt.Println("  " + cli.InfoStyle.Render(note))
		}
		for _, entry := range day.Entries {
			printEntry(entry)
		}
	}

	if len(view.Unscheduled) > 0 {
		fmt.Println(cli.WarningStyle.Render("No weekday"))
		for _, entry := range view.Unscheduled {
			printEntry(entry)
		}
	}
	if len(view.Tail) > 0 {
		fmt.Println(cli.BoldStyle.Render("Monthly & sale"))
		for _, entry := range view.Tail {
			printEntry(entry)
		}
	}
}

func printEntry(entry viewmodel.EntryView) {
	line := "  " + entry.Label
	if entry.Reference {
		line = "  " + cli.SubtleStyle.Render(entry.Label+"  ("+entry.Annotation()+")")
	}
	fmt.Println(line)
}

func printFullList(tab string, rows []bucket.Row) {
	fmt.Println(cli.FormatTitle(fmt.Sprintf("Full list: %s", tab)))
	for _, row := range rows {
		label := row.Brand
		if row.Weekday != "" {
			label += "  " + row.Weekday
		}
		if row.Discount != "" {
			label += "  " + row.Discount
		}
		for _, badge := range viewmodel.MISIDBadges(row.MISID) {
			label += "  " + cli.BadgeStyle.Render("["+badge+"]")
		}
		fmt.Printf("  %-8s %s\n", string(row.Section), label)
	}
}
